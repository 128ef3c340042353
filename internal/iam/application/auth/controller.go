package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/middleware"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/log/auditoria_log"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/rest_err"
)

type Controller interface {
	Routes(routes gin.IRouter, authenticated gin.HandlerFunc)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type controllerImpl struct {
	Service Service
}

func NewController(service Service) Controller {
	return &controllerImpl{
		Service: service,
	}
}

// Routes registra as rotas de autenticação
func (ctrl *controllerImpl) Routes(routes gin.IRouter, authenticated gin.HandlerFunc) {
	authGroup := routes.Group("/auth")
	{
		authGroup.POST("/login", ctrl.Login)
		authGroup.POST("/logout", authenticated, ctrl.Logout)
		authGroup.GET("/me", authenticated, ctrl.Me)
	}
}

// @Summary Efetua o login do usuário
// @Description Recebe email e senha, autentica o usuário e retorna o token de acesso com o tier.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credenciais do Usuário (Email e Senha)"
// @Success 200 {object} LoginResponse "Login bem-sucedido"
// @Failure 400 {object} rest_err.RestErr "Requisição inválida"
// @Failure 401 {object} rest_err.RestErr "Credenciais inválidas"
// @Failure 403 {object} rest_err.RestErr "Muitas tentativas"
// @Router /api/auth/login [post]
func (ctrl *controllerImpl) Login(c *gin.Context) {
	log := logger.Named("auth")
	ctx := c.Request.Context()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		restErr := rest_err.NewBadRequestError("invalid json body")
		c.JSON(restErr.Code, restErr)
		return
	}

	uLogin, err := ctrl.Service.Login(ctx, req.Email, req.Password)
	if err != nil {
		var restError *rest_err.RestErr
		switch {
		case errors.Is(err, ErrPwdWrong):
			restError = rest_err.NewUnauthorizedError(err.Error())
		case errors.Is(err, ErrTooManyAttempts):
			restError = rest_err.NewForbiddenError(err.Error())
		case errors.Is(err, ErrTokenDuplicated):
			restError = rest_err.NewConflictValidationError(err.Error(), nil)
		default:
			log.Error(ctx, "falha no login", zap.Error(err))
			restError = rest_err.NewInternalServerError("internal server error", nil)
		}
		log.Info(ctx, "login recusado", zap.String("email", req.Email), zap.Int("code", restError.Code))
		auditoria_log.LogAsync(ctx, auditoria_log.AuditLog{
			Identifier: req.Email,
			Domain:     auditoria_log.DomainAuth,
			Action:     auditoria_log.ActionLogin,
			Success:    false,
			OutputData: auditoria_log.SerializeData(restError),
		})
		c.JSON(restError.Code, restError)
		return
	}

	log.Info(ctx, "login efetuado",
		zap.String("user_uuid", uLogin.User.UUID.String()),
		zap.String("tier", uLogin.User.Tier.String()),
	)

	userUUID := uLogin.User.UUID
	auditoria_log.LogAsync(ctx, auditoria_log.AuditLog{
		UserUUID:   &userUUID,
		Identifier: uLogin.User.Email,
		Domain:     auditoria_log.DomainAuth,
		Action:     auditoria_log.ActionLogin,
		Success:    true,
		OutputData: auditoria_log.SerializeData(map[string]string{"tier": uLogin.User.Tier.String()}),
	})

	c.JSON(http.StatusOK, LoginResponse{
		User:   user.ToResponse(uLogin.User),
		Token:  uLogin.AcessToken.Token,
		Expire: uLogin.AcessToken.Expiry,
	})
}

// @Summary Revoga o token de acesso
// @Description Invalida o token de acesso usado na requisição.
// @Tags Auth
// @Security BearerAuth
// @Success 202 "Token revogado com sucesso"
// @Failure 403 {object} rest_err.RestErr "Não autorizado"
// @Router /api/auth/logout [post]
func (ctrl *controllerImpl) Logout(c *gin.Context) {
	lUser, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		restErr := rest_err.NewForbiddenError("user not authorized")
		c.JSON(restErr.Code, restErr)
		return
	}
	if err := ctrl.Service.RevokeAcessToken(c.Request.Context(), lUser.AcessToken.Token); err != nil {
		restErr := rest_err.NewForbiddenError("user not authorized")
		c.JSON(restErr.Code, restErr)
		return
	}
	c.Status(http.StatusAccepted)
}

// @Summary Retorna o usuário da sessão
// @Description Retorna os dados do usuário logado, incluindo o tier, se o token for válido.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LoginResponse "Dados do usuário logado"
// @Failure 403 {object} rest_err.RestErr "Não autorizado"
// @Router /api/auth/me [get]
func (ctrl *controllerImpl) Me(c *gin.Context) {
	lUser, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		restErr := rest_err.NewForbiddenError("user not authorized")
		c.JSON(restErr.Code, restErr)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:          user.ToResponse(lUser.User),
		Token:         lUser.AcessToken.Token,
		SystemTimeUTC: time.Now().UTC(),
		Expire:        lUser.AcessToken.Expiry,
	})
}
