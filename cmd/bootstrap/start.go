package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok/v2"
	"gorm.io/gorm"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/cmd/server"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/cmd/server/routes"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/application/auth"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/middleware"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/database/admin"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/database/postgres"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/jwt"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/log/acess_log"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/log/auditoria_log"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/mailer"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/session"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/web/handler"
)

// Application armazena as dependências centrais da aplicação.
type Application struct {
	server *server.HTTPServer
	log    *logger.Logger
}

// Paths lê os destinos de navegação de routes.*
func Paths() access.Paths {
	return access.Paths{
		Login:     viper.GetString("routes.login"),
		Upgrade:   viper.GetString("routes.upgrade"),
		Dashboard: viper.GetString("routes.dashboard"),
		Admin:     viper.GetString("routes.admin"),
	}.WithDefaults()
}

func initIamDomain(db *gorm.DB, tokens *jwt.TokenGenerator) (middleware.Middleware, user.Controller, auth.Controller, error) {
	mw, err := middleware.New(middleware.NewRepository(db), tokens)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("middleware: %w", err)
	}
	userController, err := user.New(user.NewRepository(db))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("user: %w", err)
	}
	authService := auth.NewService(auth.NewRepository(db), user.MustUse().Service, tokens)
	return mw, userController, auth.NewController(authService), nil
}

func initLogs(db *gorm.DB) *acess_log.Service {
	log := logger.Named("bootstrap")
	if viper.GetBool("log.audit.enabled") {
		if _, err := auditoria_log.New(auditoria_log.NewRepository(db), auditoria_log.Config{Enabled: true}); err != nil {
			log.Warn(context.Background(), "audit log não iniciado", zap.Error(err))
		}
	}
	if viper.GetBool("log.access.enabled") {
		return acess_log.NewService(acess_log.NewRepository(db))
	}
	return nil
}

// initMailer liga o aviso de troca de tier quando mail.smtp.host está configurado.
func initMailer(ctx context.Context) {
	if viper.GetString("mail.smtp.host") == "" {
		return
	}
	_, err := mailer.New(mailer.SMTPConfig{
		Host:       viper.GetString("mail.smtp.host"),
		Port:       viper.GetString("mail.smtp.port"),
		Username:   viper.GetString("mail.smtp.username"),
		Password:   viper.GetString("mail.smtp.password"),
		Encryption: viper.GetString("mail.smtp.encryption"),
		Address:    viper.GetString("mail.smtp.address"),
	})
	if err != nil {
		logger.Named("bootstrap").Warn(ctx, "mailer não iniciado", zap.Error(err))
	}
}

// New prepara a aplicação (config, db, di) e retorna a instância.
func New(ctx context.Context) (*Application, error) {
	if err := Environment(); err != nil {
		return nil, err
	}
	logger.Init(viper.GetString("log.level"), viper.GetBool("log.json"))
	log := logger.Named("bootstrap")
	log.Info(ctx, "configuração de ambiente carregada", zap.String("env", viper.GetString("app.env")))

	if err := validate(); err != nil {
		return nil, err
	}

	err := jwt.Init(jwt.Config{
		AccessSecret: viper.GetString("security.jwt_access_secret"),
		Issuer:       viper.GetString("app.name"),
		AccessExpiry: time.Duration(viper.GetInt64("security.jwt_access_expiry_min")) * time.Minute,
	})
	if err != nil {
		// A aplicação não pode subir sem o gerador de token
		return nil, fmt.Errorf("falha ao criar gerador de token: %w", err)
	}
	tokens := jwt.Use()
	log.Info(ctx, "gerador de token inicializado")

	db, err := postgres.InitPostgres(ctx, postgres.ConfigFromViper())
	if err != nil {
		return nil, err
	}
	status, err := admin.Check(ctx, db)
	if err != nil {
		return nil, err
	}
	if !status.Healthy() {
		return nil, fmt.Errorf("tabelas ausentes %v: execute --migration-seed", status.Missing)
	}

	apiGuard, userController, authController, err := initIamDomain(db, tokens)
	if err != nil {
		return nil, err
	}
	accessLog := initLogs(db)
	initMailer(ctx)
	log.Info(ctx, "contêiner de dependências inicializado")

	port := viper.GetString("server.http.port")
	baseURL := viper.GetString("auth.base_url")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:" + port
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	authClient := session.NewAuthClient(baseURL, httpClient, session.BreakerConfig{
		MaxRequests: uint32(viper.GetUint("session.breaker.max_requests")),
		Interval:    time.Duration(viper.GetInt64("session.breaker.interval_sec")) * time.Second,
		Timeout:     time.Duration(viper.GetInt64("session.breaker.timeout_sec")) * time.Second,
		MaxFailures: uint32(viper.GetUint("session.breaker.max_failures")),
	})

	store := session.NewCookieStore(
		viper.GetString("security.session_secret"),
		viper.GetBool("session.secure_cookie"),
		int(time.Duration(viper.GetInt64("security.jwt_access_expiry_min"))*time.Minute/time.Second),
	)
	provider := session.NewProvider(store, authClient, session.Config{
		HydrateWait:  time.Duration(viper.GetInt64("session.hydrate_wait_ms")) * time.Millisecond,
		FetchTimeout: time.Duration(viper.GetInt64("session.fetch_timeout_ms")) * time.Millisecond,
		CacheTTL:     time.Duration(viper.GetInt64("session.cache_ttl_min")) * time.Minute,
	})

	paths := Paths()
	web, err := handler.NewWebHandler(provider, authClient, handler.NewUserAPIClient(baseURL, httpClient), paths)
	if err != nil {
		return nil, err
	}

	router, err := routes.SetupRouter(routes.Dependencies{
		Env:            viper.GetString("app.env"),
		Paths:          paths,
		CORSOrigins:    viper.GetStringSlice("cors.allowed_origins"),
		APIGuard:       apiGuard,
		UserController: userController,
		AuthController: authController,
		AccessLog:      accessLog,
		Sessions:       provider,
		Web:            web,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
	if err != nil {
		return nil, err
	}

	return &Application{
		server: server.NewHTTPServer(port, router),
		log:    log,
	}, nil
}

func startNgrokForward(ctx context.Context, token string, port int) error {
	log := logger.Named("ngrok")

	agent, err := ngrok.NewAgent(
		ngrok.WithAuthtoken(token),
		ngrok.WithAutoConnect(true),
	)
	if err != nil {
		return fmt.Errorf("erro criando ngrok Agent: %w", err)
	}

	upstream := ngrok.WithUpstream(fmt.Sprintf("http://127.0.0.1:%d", port))

	endpoint, err := agent.Forward(ctx, upstream)
	if err != nil {
		var ngErr ngrok.Error
		if errors.As(err, &ngErr) {
			log.Error(ctx, "erro ao criar forward", zap.String("code", ngErr.Code()), zap.Error(ngErr))
		}
		return fmt.Errorf("erro iniciando ngrok Forward: %w", err)
	}

	log.Info(ctx, "endpoint online", zap.String("url", endpoint.URL().String()))

	// Fica vivo até o ctx da aplicação ser cancelado
	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := endpoint.CloseWithContext(closeCtx); err != nil {
		return fmt.Errorf("erro ao fechar endpoint ngrok: %w", err)
	}

	if err := agent.Disconnect(); err != nil {
		return fmt.Errorf("erro ao desconectar ngrok Agent: %w", err)
	}

	return nil
}

func (a *Application) Start(ctx context.Context) error {
	a.log.Info(ctx, "iniciando servidor", zap.String("env", viper.GetString("app.env")))

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	// Túnel ngrok opcional para testes com callbacks externos
	if viper.GetBool("test.ngrok.live") {
		token := viper.GetString("test.ngrok.token")
		if token == "" {
			a.log.Warn(ctx, "test.ngrok.live=true mas test.ngrok.token está vazio; ngrok não será iniciado")
		} else {
			port := viper.GetInt("server.http.port")
			go func() {
				if err := startNgrokForward(ctx, token, port); err != nil {
					a.log.Error(ctx, "ngrok falhou", zap.Error(err))
				}
			}()
		}
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("falha ao encerrar servidor: %w", err)
		}
		return <-errCh

	case err := <-errCh:
		return err
	}
}
