package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/middleware"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/log/auditoria_log"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/mailer"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/rest_err"
)

type Controller interface {
	Routes(routes gin.IRouter, guards ...gin.HandlerFunc)
	Read(c *gin.Context)
	List(c *gin.Context)
	ChangeTier(c *gin.Context)
}

type controllerImpl struct {
	Service Service
}

func NewController(service Service) Controller {
	return &controllerImpl{
		Service: service,
	}
}

// Routes registra as rotas administrativas de usuário. Os guards recebidos
// (autenticação + tier admin) valem para o grupo inteiro.
func (ctrl *controllerImpl) Routes(routes gin.IRouter, guards ...gin.HandlerFunc) {
	userGroup := routes.Group("/user", guards...)
	{
		userGroup.GET("/list", ctrl.List)
		userGroup.GET("/:identifier", ctrl.Read)
		userGroup.PATCH("/:identifier/tier", ctrl.ChangeTier)
	}
}

// @Summary      Busca um Usuário
// @Description  Busca um usuário pelo UUID.
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        identifier  path  string  true  "UUID do usuário"
// @Success      200  {object}  UserResponseDto
// @Failure      400  {object}  rest_err.RestErr
// @Failure      404  {object}  rest_err.RestErr
// @Router       /api/user/{identifier} [get]
func (ctrl *controllerImpl) Read(c *gin.Context) {
	userUUID, restError := parseIdentifier(c)
	if restError != nil {
		c.JSON(restError.Code, restError)
		return
	}

	userFound, err := ctrl.Service.Read(c.Request.Context(), User{UUID: userUUID})
	if err != nil {
		restError := mapError(err)
		c.JSON(restError.Code, restError)
		return
	}

	c.JSON(http.StatusOK, ToResponse(userFound))
}

// @Summary      Lista Usuários
// @Description  Retorna uma lista paginada de usuários.
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Número da página (padrão 1)"
// @Param        size  query  int  false  "Tamanho da página (padrão 10)"
// @Success      200  {object}  UserListResponseDto
// @Failure      500  {object}  rest_err.RestErr
// @Router       /api/user/list [get]
func (ctrl *controllerImpl) List(c *gin.Context) {
	var req ListUserRequestDto
	if err := c.ShouldBindQuery(&req); err != nil {
		restError := rest_err.NewBadRequestError("invalid query parameters")
		c.JSON(restError.Code, restError)
		return
	}
	page, size := normalizePage(req.Page, req.PageSize)

	users, err := ctrl.Service.List(c.Request.Context(), page, size)
	if err != nil {
		restError := rest_err.NewInternalServerError("internal server error", nil)
		c.JSON(restError.Code, restError)
		return
	}

	response := UserListResponseDto{
		Users: make([]UserResponseDto, 0, len(users)),
		Page:  page,
		Size:  size,
	}
	for _, u := range users {
		response.Users = append(response.Users, ToResponse(u))
	}
	c.JSON(http.StatusOK, response)
}

// @Summary      Altera o tier de um Usuário
// @Description  Define o tier de assinatura (free, pro, premium, admin).
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        identifier  path  string               true  "UUID do usuário"
// @Param        request     body  ChangeTierRequestDto  true  "Novo tier"
// @Success      200  {object}  UserResponseDto
// @Failure      400  {object}  rest_err.RestErr
// @Failure      404  {object}  rest_err.RestErr
// @Router       /api/user/{identifier}/tier [patch]
func (ctrl *controllerImpl) ChangeTier(c *gin.Context) {
	userUUID, restError := parseIdentifier(c)
	if restError != nil {
		c.JSON(restError.Code, restError)
		return
	}

	var req ChangeTierRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		restError := rest_err.NewBadRequestError("invalid json body")
		c.JSON(restError.Code, restError)
		return
	}

	updated, err := ctrl.Service.ChangeTier(c.Request.Context(), User{UUID: userUUID}, req.Tier)
	entry := auditoria_log.AuditLog{
		TargetUUID: &userUUID,
		Domain:     auditoria_log.DomainUser,
		Action:     auditoria_log.ActionChangeTier,
		Success:    err == nil,
		InputData:  auditoria_log.SerializeData(req),
	}
	if actor, ok := middleware.GetAuthenticatedUser(c); ok {
		actorUUID := actor.User.UUID
		entry.UserUUID = &actorUUID
		entry.Identifier = actor.User.Email
	}
	if err != nil {
		restError := mapError(err)
		entry.OutputData = auditoria_log.SerializeData(restError)
		auditoria_log.LogAsync(c.Request.Context(), entry)
		c.JSON(restError.Code, restError)
		return
	}

	response := ToResponse(updated)
	entry.OutputData = auditoria_log.SerializeData(map[string]Tier{"tier": response.Tier})
	auditoria_log.LogAsync(c.Request.Context(), entry)
	mailer.NotifyTierChanged(c.Request.Context(), mailer.TierChanged{
		Name:  updated.Name,
		Email: updated.Email,
		Tier:  updated.Tier.String(),
	})

	c.JSON(http.StatusOK, response)
}

func parseIdentifier(c *gin.Context) (uuid.UUID, *rest_err.RestErr) {
	id, err := uuid.Parse(c.Param("identifier"))
	if err != nil {
		return uuid.Nil, rest_err.NewBadRequestError("invalid uuid")
	}
	return id, nil
}

func mapError(err error) *rest_err.RestErr {
	switch {
	case errors.Is(err, ErrNotFound):
		return rest_err.NewNotFoundError("user not found")
	case errors.Is(err, ErrInvalidTier):
		causes := []rest_err.Causes{rest_err.NewCause("tier", "must be one of free, pro, premium, admin")}
		return rest_err.NewBadRequestValidationError(err.Error(), causes)
	case errors.Is(err, ErrInvalidInput):
		return rest_err.NewBadRequestError(err.Error())
	case errors.Is(err, ErrEmailDuplicated):
		return rest_err.NewConflictValidationError(err.Error(), nil)
	default:
		return rest_err.NewInternalServerError("internal server error", nil)
	}
}
