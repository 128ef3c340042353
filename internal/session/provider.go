package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

const (
	SessionName    = "dashboard_session"
	SessionUserKey = "access_token"
)

type Config struct {
	// HydrateWait é quanto uma requisição espera o perfil antes de responder Loading.
	HydrateWait  time.Duration
	FetchTimeout time.Duration
	CacheTTL     time.Duration
}

func (c Config) withDefaults() Config {
	if c.HydrateWait <= 0 {
		c.HydrateWait = 300 * time.Millisecond
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 5 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	return c
}

// Provider é o contexto de autenticação da aplicação: guarda o token no cookie,
// mantém o cache de perfis e hidrata sessões sob demanda.
type Provider struct {
	store    sessions.Store
	fetcher  ProfileFetcher
	profiles *cache.Cache
	group    singleflight.Group
	cfg      Config
	log      *logger.Logger
}

func NewProvider(store sessions.Store, fetcher ProfileFetcher, cfg Config) *Provider {
	cfg = cfg.withDefaults()
	return &Provider{
		store:    store,
		fetcher:  fetcher,
		profiles: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		cfg:      cfg,
		log:      logger.Named("session"),
	}
}

// NewCookieStore cria o store de cookies usado pelo Provider.
func NewCookieStore(secret string, secure bool, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Init inicia a sessão após o login. Se o perfil já é conhecido, ele entra no
// cache e a próxima navegação não passa por Loading.
func (p *Provider) Init(c *gin.Context, token string, profile *model.User) error {
	sess, err := p.store.Get(c.Request, SessionName)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[SessionUserKey] = token
	if profile != nil {
		cached := *profile
		cached.Password = ""
		p.profiles.Set(token, &cached, cache.DefaultExpiration)
	}
	return sess.Save(c.Request, c.Writer)
}

// Teardown encerra a sessão: apaga o cookie e descarta o perfil em cache.
func (p *Provider) Teardown(c *gin.Context) error {
	sess, err := p.store.Get(c.Request, SessionName)
	if sess == nil {
		return err
	}
	if token, ok := sess.Values[SessionUserKey].(string); ok {
		p.profiles.Delete(token)
	}
	sess.Values = make(map[interface{}]interface{})
	sess.Options.MaxAge = -1
	return sess.Save(c.Request, c.Writer)
}

// Token retorna o token da sessão ou "" quando não há sessão.
func (p *Provider) Token(c *gin.Context) string {
	sess, err := p.store.Get(c.Request, SessionName)
	if err != nil || sess == nil {
		return ""
	}
	token, _ := sess.Values[SessionUserKey].(string)
	return token
}

// Resolve monta o snapshot da requisição. Sem token a sessão é anônima; com
// token e perfil desconhecido, espera no máximo HydrateWait pelo backend.
func (p *Provider) Resolve(c *gin.Context) Snapshot {
	token := p.Token(c)
	if token == "" {
		return Anonymous()
	}

	if cached, ok := p.profiles.Get(token); ok {
		return Resolved(copyUser(cached.(*model.User)), token)
	}

	ctx := c.Request.Context()
	ch := p.group.DoChan(token, func() (interface{}, error) {
		// A hidratação sobrevive ao cancelamento da requisição que a iniciou.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.FetchTimeout)
		defer cancel()

		u, err := p.fetcher.FetchProfile(fetchCtx, token)
		if err != nil {
			return nil, err
		}
		u.Password = ""
		p.profiles.Set(token, u, cache.DefaultExpiration)
		return u, nil
	})

	timer := time.NewTimer(p.cfg.HydrateWait)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err == nil {
			return Resolved(copyUser(res.Val.(*model.User)), token)
		}
		if errors.Is(res.Err, ErrUnauthorized) {
			p.log.Info(ctx, "token recusado pelo backend, sessão encerrada")
			if err := p.Teardown(c); err != nil {
				p.log.Warn(ctx, "falha ao limpar sessão", zap.Error(err))
			}
			return Anonymous()
		}
		p.log.Warn(ctx, "falha ao hidratar sessão", zap.Error(res.Err))
		return Loading(token)
	case <-timer.C:
		return Loading(token)
	case <-ctx.Done():
		return Loading(token)
	}
}

func copyUser(u *model.User) *model.User {
	cp := *u
	return &cp
}
