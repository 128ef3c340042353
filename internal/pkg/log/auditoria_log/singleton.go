package auditoria_log

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

var (
	instance *Service
	once     sync.Once
	mu       sync.RWMutex
	initErr  error
)

// Config usada somente no New()
type Config struct {
	Enabled bool
}

// New inicializa apenas 1x (se Enabled=true)
func New(repo Repository, cfg Config) (*Service, error) {
	once.Do(func() {
		if !cfg.Enabled {
			initErr = errors.New("audit logger disabled in config")
			return
		}
		if repo == nil {
			initErr = errors.New("repository required for audit log")
			return
		}

		mu.Lock()
		instance = NewService(repo)
		mu.Unlock()
	})

	return instance, initErr
}

// MustUse simplesmente retorna a instância (pode ser nil)
func MustUse() *Service {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// LogAsync registra auditoria em goroutine destacada. Sem instância é no-op.
func LogAsync(ctx context.Context, entry AuditLog) {
	svc := MustUse()
	if svc == nil {
		return
	}

	if entry.RequestID == "" {
		entry.RequestID = logger.RequestIDFromContext(ctx)
	}

	ctxDetached := context.WithoutCancel(ctx)
	go func() {
		if err := svc.Log(ctxDetached, entry); err != nil {
			logger.Named("audit").Warn(ctxDetached, "erro ao gravar audit log", zap.Error(err))
		}
	}()
}

// reset descarta a instância; usado em testes.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
	initErr = nil
}
