package auditoria_log

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

type Repository interface {
	Save(ctx context.Context, entry AuditLog) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Save(ctx context.Context, entry AuditLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

// InMemoryRepository guarda as entradas em memória; usado em testes.
type InMemoryRepository struct {
	mu      sync.Mutex
	entries []AuditLog
}

func (r *InMemoryRepository) Save(_ context.Context, entry AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, entry)
	return nil
}

func (r *InMemoryRepository) Entries() []AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditLog, len(r.entries))
	copy(out, r.entries)
	return out
}
