package middleware

import (
	"time"

	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
)

type AcessToken struct {
	UserUUID *uuid.UUID
	Token    string
	Expiry   time.Time
}

// Login é o usuário autenticado anexado ao contexto do gin.
type Login struct {
	User       model.User
	AcessToken AcessToken
}
