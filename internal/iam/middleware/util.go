package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

const UserContextKey = "AuthenticatedUserKey"

// SetAuthenticatedUser anexa o login ao gin e o UUID do usuário ao contexto da
// requisição, para que os logs carreguem user_id.
func SetAuthenticatedUser(c *gin.Context, userLogin *Login) {
	if userLogin == nil {
		return
	}
	c.Set(UserContextKey, userLogin)
	c.Request = c.Request.WithContext(
		logger.ContextWithUserID(c.Request.Context(), userLogin.User.UUID.String()),
	)
}

func GetAuthenticatedUser(c *gin.Context) (*Login, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	userLogin, ok := value.(*Login)
	return userLogin, ok
}
