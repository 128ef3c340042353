package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/application/auth"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/middleware"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/log/acess_log"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/web/handler"
	webMiddleware "github.com/iantech-cloud/pro-career-suite-32-sub000/internal/web/middleware"
)

// Dependencies reúne o que o roteador precisa; montado pelo bootstrap.
type Dependencies struct {
	Env         string
	Paths       access.Paths
	CORSOrigins []string

	APIGuard       middleware.Middleware
	UserController user.Controller
	AuthController auth.Controller
	AccessLog      *acess_log.Service

	Sessions webMiddleware.SessionResolver
	Web      *handler.WebHandler

	// Ping verifica as dependências externas para /healthz.
	Ping func(ctx context.Context) error
}

func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	// 1. Configuração do modo Gin
	switch deps.Env {
	case "dev", "":
		gin.SetMode(gin.DebugMode)
	case "prod":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		return nil, fmt.Errorf("invalid environment value %q: must be dev, prod or test", deps.Env)
	}

	r := gin.New()
	r.Use(gin.Recovery(), webMiddleware.RequestID())
	if deps.Env != "prod" {
		r.Use(gin.Logger())
	}

	r.GET("/healthz", healthz(deps.Ping))
	SetupApiRoutes(r, deps)
	SetupWebRoutes(r, deps)
	return r, nil
}

func SetupApiRoutes(r *gin.Engine, deps Dependencies) {
	route := r.Group("/api")
	if len(deps.CORSOrigins) > 0 {
		route.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", webMiddleware.RequestIDHeader},
			ExposeHeaders:    []string{webMiddleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if deps.AccessLog != nil {
		route.Use(deps.AccessLog.Middleware(apiIdentity))
	}

	authenticated := deps.APIGuard.SetContextAutorization()
	deps.AuthController.Routes(route, authenticated)
	deps.UserController.Routes(route, authenticated, deps.APIGuard.AuthorizeTier(access.TierAdmin))
}

func SetupWebRoutes(r *gin.Engine, deps Dependencies) {
	paths := deps.Paths.WithDefaults()
	h := deps.Web
	guard := func(opts ...webMiddleware.GuardOption) gin.HandlerFunc {
		return webMiddleware.RouteGuard(deps.Sessions, paths, opts...)
	}

	r.GET(paths.Login, h.ServeLogin)
	r.POST(paths.Login, h.HandleLogin)
	r.POST(paths.Login+"/logout", h.HandleLogout)

	r.GET("/", guard(), h.ServeRoot)
	r.GET(paths.Dashboard, guard(), h.ServeDashboard)
	r.GET(paths.Upgrade, guard(), h.ServeUpgrade)
	r.GET("/cv-builder", guard(webMiddleware.RequireTier(access.TierFree)), h.ServeCVBuilder)
	r.GET("/jobs", guard(webMiddleware.RequireTier(access.TierFree)), h.ServeJobs)
	r.GET("/social", guard(webMiddleware.RequireTier(access.TierPro)), h.ServeSocial)
	r.GET("/analytics", guard(webMiddleware.RequireTier(access.TierPremium)), h.ServeAnalytics)

	admin := r.Group(paths.Admin, guard(
		webMiddleware.RequireTier(access.TierAdmin),
		webMiddleware.RedirectTo(paths.Dashboard),
	))
	{
		admin.GET("", h.ServeAdmin)
		admin.GET("/users", h.ServeUsersTable)
		admin.PATCH("/users/:identifier/tier", h.HandleChangeTier)
	}
}

func apiIdentity(c *gin.Context) (uuid.UUID, string, bool) {
	login, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		return uuid.Nil, "", false
	}
	return login.User.UUID, login.User.Tier.String(), true
}

func healthz(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
