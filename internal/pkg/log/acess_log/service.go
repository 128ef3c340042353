package acess_log

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

// Identity extrai o usuário autenticado do contexto gin, se houver.
type Identity func(c *gin.Context) (userID uuid.UUID, tier string, ok bool)

type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Named("access")}
}

func (s *Service) Log(ctx context.Context, entry AccessLog) error {
	return s.repo.Save(ctx, entry)
}

// Middleware grava uma entrada por requisição depois que o handler responde.
// A gravação não bloqueia a resposta.
func (s *Service) Middleware(identity Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := AccessLog{
			RequestID:   logger.RequestIDFromContext(c.Request.Context()),
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			StatusCode:  c.Writer.Status(),
			IP:          c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
			Referer:     c.Request.Referer(),
			RequestTime: start.UTC(),
			LatencyMs:   float64(time.Since(start).Microseconds()) / 1000,
		}
		if identity != nil {
			if id, tier, ok := identity(c); ok {
				entry.UserUUID = &id
				entry.UserTier = tier
			}
		}

		ctx := context.WithoutCancel(c.Request.Context())
		go func() {
			if err := s.Log(ctx, entry); err != nil {
				s.log.Warn(ctx, "erro ao gravar access log", zap.Error(err))
			}
		}()
	}
}
