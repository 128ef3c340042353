package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	CreateAcessToken(ctx context.Context, m AcessToken) error
	RevokeAcessToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID string) error
	GetAcessToken(ctx context.Context, token string) (AcessToken, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{
		db: db,
	}
}

func (r *repositoryImpl) CreateAcessToken(ctx context.Context, m AcessToken) error {
	query := r.db.WithContext(ctx).Create(&m)

	if query.Error == nil {
		return nil
	}
	var pgErr *pgconn.PgError

	if errors.As(query.Error, &pgErr) {
		if pgErr.Code == "23505" || pgErr.Code == "23503" {
			return ErrTokenDuplicated
		}
		return pgErr
	}
	return query.Error
}

func (r *repositoryImpl) RevokeAcessToken(ctx context.Context, token string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&AcessToken{}).
		Where("token = ?", token).
		Update("expire_date", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *repositoryImpl) RevokeAllUserTokens(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&AcessToken{}).
		Where("user_uuid = ? AND expire_date > ?", userID, now).
		Update("expire_date", now)
	return result.Error
}

func (r *repositoryImpl) GetAcessToken(ctx context.Context, token string) (AcessToken, error) {
	var m AcessToken
	result := r.db.WithContext(ctx).First(&m, "token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AcessToken{}, ErrTokenNotFound
		}
		return AcessToken{}, result.Error
	}
	return m, nil
}

// InMemoryRepository guarda tokens em memória (testes).
type InMemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]AcessToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]AcessToken)}
}

func (r *InMemoryRepository) CreateAcessToken(_ context.Context, m AcessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[m.Token]; ok {
		return ErrTokenDuplicated
	}
	r.tokens[m.Token] = m
	return nil
}

func (r *InMemoryRepository) RevokeAcessToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.tokens[token]
	if !ok {
		return ErrTokenNotFound
	}
	m.Expiry = time.Now().UTC()
	r.tokens[token] = m
	return nil
}

func (r *InMemoryRepository) RevokeAllUserTokens(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for k, m := range r.tokens {
		if m.UserUUID != nil && m.UserUUID.String() == userID && m.Expiry.After(now) {
			m.Expiry = now
			r.tokens[k] = m
		}
	}
	return nil
}

func (r *InMemoryRepository) GetAcessToken(_ context.Context, token string) (AcessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.tokens[token]
	if !ok {
		return AcessToken{}, ErrTokenNotFound
	}
	return m, nil
}
