package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength acompanha as colunas request_id de audit_log e access_log.
	maxRequestIDLength = 100
)

// RequestID propaga ou gera o id da requisição e o coloca no contexto de log.
// Ids recebidos fora do formato aceito são substituídos por um UUID novo.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// validRequestID aceita até 100 caracteres ASCII imprimíveis, sem espaços.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
