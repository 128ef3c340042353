package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	Read(ctx context.Context, user User) (User, error)
	List(ctx context.Context, page, pageSize int) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{
		db: db,
	}
}

func (r *repositoryImpl) Create(ctx context.Context, user User) (User, error) {
	result := r.db.WithContext(ctx).Create(&user)
	if result.Error == nil {
		return user, nil
	}
	var pgErr *pgconn.PgError

	if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "users_email_key" {
			return User{}, ErrEmailDuplicated
		}
	}
	return User{}, result.Error
}

// Read busca pelo UUID ou, na ausência dele, pelo email.
func (r *repositoryImpl) Read(ctx context.Context, user User) (User, error) {
	query := r.db.WithContext(ctx)
	var found User
	switch {
	case user.UUID != uuid.Nil:
		query = query.Where("uuid = ?", user.UUID).First(&found)
	case user.Email != "":
		query = query.Where("email = ?", user.Email).First(&found)
	default:
		return User{}, ErrInvalidInput
	}
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, query.Error
	}
	return found, nil
}

func (r *repositoryImpl) List(ctx context.Context, page, pageSize int) ([]User, error) {
	var users []User
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize
	result := r.db.WithContext(ctx).
		Model(&User{}).
		Order("create_at ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&users)
	if result.Error != nil {
		return users, result.Error
	}
	return users, nil
}

func (r *repositoryImpl) Update(ctx context.Context, user User) (User, error) {
	updateFields := make(map[string]interface{})

	// Monta apenas os campos enviados
	if user.Name != "" {
		updateFields["name"] = user.Name
	}
	if user.Email != "" {
		updateFields["email"] = user.Email
	}
	if user.Password != "" {
		updateFields["password_hash"] = user.Password
	}
	if user.Tier != "" {
		updateFields["tier"] = user.Tier
	}
	if !user.UpdateAt.IsZero() {
		updateFields["update_at"] = user.UpdateAt
	}

	if len(updateFields) == 0 {
		return User{}, ErrInvalidInput
	}

	query := r.db.WithContext(ctx).
		Model(&User{}).
		Where("uuid = ?", user.UUID).
		Updates(updateFields)

	if query.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(query.Error, &pgErr) {
			switch pgErr.Code {
			case "23505": // Unique violation
				if pgErr.ConstraintName == "users_email_key" {
					return User{}, ErrEmailDuplicated
				}
				return User{}, fmt.Errorf("violação de unicidade (%s): %w", pgErr.ConstraintName, query.Error)
			case "23514": // Check violation (users_tier_check)
				return User{}, ErrInvalidTier
			default:
				return User{}, fmt.Errorf("erro do banco (%s): %w", pgErr.Code, query.Error)
			}
		}
		return User{}, query.Error
	}

	if query.RowsAffected == 0 {
		return User{}, ErrNotFound
	}

	return r.Read(ctx, User{UUID: user.UUID})
}

const maxPageSize = 100

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
