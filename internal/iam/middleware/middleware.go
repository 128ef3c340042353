package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/jwt"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/rest_err"
)

// TokenParser é implementado por jwt.TokenGenerator.
type TokenParser interface {
	ParseAccessToken(token string) (*jwt.AccessTokenClaims, error)
}

type Middleware interface {
	SetContextAutorization() gin.HandlerFunc
	AuthorizeTier(required access.Tier) gin.HandlerFunc
}

type impl struct {
	repository Repository
	parser     TokenParser
	now        func() time.Time
}

func NewMiddleware(repository Repository, parser TokenParser) Middleware {
	return &impl{
		repository: repository,
		parser:     parser,
		now:        time.Now,
	}
}

func (mw *impl) SetContextAutorization() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))

		if token == "" {
			err := rest_err.NewForbiddenError("Token ausente ou inválido.")
			c.AbortWithStatusJSON(err.Code, err)
			return
		}

		claims, err := mw.parser.ParseAccessToken(token)
		if err != nil {
			e := rest_err.NewForbiddenError("Token de acesso inválido.")
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		login, err := mw.repository.GetLogin(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrLoginNotFound) {
				e := rest_err.NewForbiddenError("Token de acesso não encontrado.")
				c.AbortWithStatusJSON(e.Code, e)
				return
			}
			// Falha de infraestrutura não invalida a sessão do cliente.
			e := rest_err.NewInternalServerError("Falha ao validar token de acesso.", nil)
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		if login.AcessToken.UserUUID == nil || *login.AcessToken.UserUUID == uuid.Nil ||
			login.AcessToken.UserUUID.String() != claims.Subject {
			e := rest_err.NewForbiddenError("Token não associado a nenhum usuário válido.")
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		if !mw.now().UTC().Before(login.AcessToken.Expiry) {
			e := rest_err.NewForbiddenError("Token expirado. Efetue login novamente.")
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		if !login.User.Live {
			e := rest_err.NewForbiddenError("Usuário inativo.")
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		SetAuthenticatedUser(c, login)
		c.Next()
	}
}

// AuthorizeTier exige que o usuário autenticado possua ao menos o tier informado.
// O tier vem do banco (não do claim), então rebaixamentos valem imediatamente.
func (mw *impl) AuthorizeTier(required access.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		lUser, ok := GetAuthenticatedUser(c)

		if !ok {
			e := rest_err.NewForbiddenError("Usuário não autenticado.")
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		if !access.Satisfies(lUser.User.Tier, required) {
			e := rest_err.NewTierRequiredError(required.String())
			c.AbortWithStatusJSON(e.Code, e)
			return
		}

		c.Next()
	}
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
