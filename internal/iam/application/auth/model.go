package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
)

type AcessToken struct {
	UserUUID *uuid.UUID `gorm:"type:uuid;index"`
	Token    string     `gorm:"type:text;not null;unique"`
	Expiry   time.Time  `gorm:"type:timestamp;not null;column:expire_date"`
}

type Login struct {
	User       user.User
	AcessToken AcessToken
}

func (AcessToken) TableName() string {
	return "users_acess_tokens"
}

// Active informa se o token ainda não expirou nem foi revogado.
func (a AcessToken) Active(now time.Time) bool {
	return now.Before(a.Expiry)
}
