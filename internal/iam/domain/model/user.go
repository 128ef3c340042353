package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
)

type User struct {
	UUID     uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name     string      `gorm:"type:varchar(255);not null"`
	Email    string      `gorm:"type:varchar(255);not null;unique"`
	Password string      `gorm:"column:password_hash;type:varchar(255);not null"`
	Tier     access.Tier `gorm:"type:varchar(20);not null;default:'free'"`
	Live     bool        `gorm:"not null;default:true"`
	CreateAt time.Time   `gorm:"column:create_at;not null;autoCreateTime"`
	UpdateAt time.Time   `gorm:"column:update_at;not null;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// AccessTier satisfaz access.Subject. Um ponteiro nulo não possui tier.
func (u *User) AccessTier() access.Tier {
	if u == nil {
		return access.TierNone
	}
	return u.Tier
}
