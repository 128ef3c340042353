package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
)

var ErrLoginNotFound = errors.New("access token not found")

type Repository interface {
	GetLogin(ctx context.Context, token string) (*Login, error)
}

// LoginLoader adapta uma função ao Repository (usado nos testes).
type LoginLoader func(ctx context.Context, token string) (*Login, error)

func (f LoginLoader) GetLogin(ctx context.Context, token string) (*Login, error) {
	return f(ctx, token)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type loginQueryResult struct {
	Token            string      `gorm:"column:token"`
	Expiry           time.Time   `gorm:"column:expire_date"`
	UserUUID         uuid.UUID   `gorm:"column:user_uuid"`
	UserName         string      `gorm:"column:user_name"`
	UserEmail        string      `gorm:"column:user_email"`
	UserPasswordHash string      `gorm:"column:password_hash"`
	UserTier         access.Tier `gorm:"column:tier"`
	UserLive         bool        `gorm:"column:live"`
	UserCreateAt     time.Time   `gorm:"column:create_at"`
	UserUpdateAt     time.Time   `gorm:"column:update_at"`
}

const loginQuery = `
SELECT
        at.token,
        at.expire_date,
        at.user_uuid,
        u.name AS user_name,
        u.email AS user_email,
        u.password_hash,
        u.tier,
        u.live,
        u.create_at,
        u.update_at
FROM users_acess_tokens AS at
INNER JOIN users AS u ON u.uuid = at.user_uuid
WHERE at.token = ?
LIMIT 1`

func (r *repositoryImpl) GetLogin(ctx context.Context, token string) (*Login, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	var result loginQueryResult
	query := r.db.WithContext(ctx).Raw(loginQuery, token).Scan(&result)
	if query.Error != nil {
		return nil, query.Error
	}
	if query.RowsAffected == 0 {
		return nil, ErrLoginNotFound
	}

	return &Login{
		User: model.User{
			UUID:     result.UserUUID,
			Name:     result.UserName,
			Email:    result.UserEmail,
			Password: result.UserPasswordHash,
			Tier:     result.UserTier,
			Live:     result.UserLive,
			CreateAt: result.UserCreateAt,
			UpdateAt: result.UserUpdateAt,
		},
		AcessToken: AcessToken{
			UserUUID: &result.UserUUID,
			Token:    result.Token,
			Expiry:   result.Expiry,
		},
	}, nil
}
