package acess_log

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

type Repository interface {
	Save(ctx context.Context, entry AccessLog) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Save(ctx context.Context, entry AccessLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

// InMemoryRepository guarda as entradas em memória; usado em testes.
type InMemoryRepository struct {
	mu      sync.Mutex
	entries []AccessLog
}

func (r *InMemoryRepository) Save(_ context.Context, entry AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *InMemoryRepository) Entries() []AccessLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AccessLog, len(r.entries))
	copy(out, r.entries)
	return out
}
