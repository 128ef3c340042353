package middleware

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/session"
)

const ctxUserKey = "session_user"

// SessionResolver produz o snapshot de sessão de uma requisição.
type SessionResolver interface {
	Resolve(c *gin.Context) session.Snapshot
}

type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateDenied
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateDenied:
		return "denied"
	case StateAuthorized:
		return "authorized"
	}
	return "unknown"
}

// Policy descreve o que uma página protegida exige.
type Policy struct {
	Required   access.Tier
	RedirectTo string
	Paths      access.Paths
}

// Decision é a saída do guard para a camada de navegação. Replace indica que
// o destino substitui a entrada atual do histórico.
type Decision struct {
	State   State
	Target  string
	Replace bool
}

// Decide é a máquina de estados do guard, sem efeitos colaterais.
// Enquanto a sessão hidrata nunca há redirect.
func Decide(snap session.Snapshot, policy Policy) Decision {
	paths := policy.Paths.WithDefaults()

	if snap.IsLoading {
		return Decision{State: StateLoading}
	}

	if snap.User == nil {
		target := policy.RedirectTo
		if target == "" {
			target = paths.Login
		}
		return Decision{State: StateUnauthenticated, Target: target, Replace: true}
	}

	if policy.Required != access.TierNone && !access.Satisfies(snap.User.AccessTier(), policy.Required) {
		return Decision{State: StateDenied, Target: paths.Upgrade, Replace: true}
	}

	return Decision{State: StateAuthorized}
}

type GuardOption func(*Policy)

func RequireTier(t access.Tier) GuardOption {
	return func(p *Policy) { p.Required = t }
}

func RedirectTo(path string) GuardOption {
	return func(p *Policy) { p.RedirectTo = path }
}

// RouteGuard protege páginas HTML. Usuários sem sessão vão para o login,
// usuários com tier insuficiente para a página de upgrade.
func RouteGuard(resolver SessionResolver, paths access.Paths, opts ...GuardOption) gin.HandlerFunc {
	policy := Policy{Paths: paths.WithDefaults()}
	for _, opt := range opts {
		opt(&policy)
	}
	log := logger.Named("guard")

	return func(c *gin.Context) {
		snap := resolver.Resolve(c)
		decision := Decide(snap, policy)

		switch decision.State {
		case StateLoading:
			renderLoading(c)
			c.Abort()
			return

		case StateUnauthenticated:
			target := withQuery(decision.Target, "next", nextFor(c))
			redirect(c, target, http.StatusUnauthorized)
			return

		case StateDenied:
			log.Info(c.Request.Context(), "acesso negado por tier",
				zap.String("path", c.Request.URL.Path),
				zap.String("tier", snap.User.Tier.String()),
				zap.String("required", policy.Required.String()),
			)
			target := withQuery(decision.Target, "required", policy.Required.String())
			redirect(c, target, http.StatusForbidden)
			return
		}

		c.Set(ctxUserKey, snap.User)
		c.Next()
	}
}

// redirect substitui o histórico: 302 para navegação comum, HX-Replace-Url para HTMX.
func redirect(c *gin.Context, target string, htmxStatus int) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", target)
		c.Header("HX-Replace-Url", target)
		c.AbortWithStatus(htmxStatus)
		return
	}
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// nextFor preserva o next recebido de um guard anterior (ex.: /admin redireciona
// para /dashboard?next=/admin), senão usa a própria URL. O login valida o destino.
func nextFor(c *gin.Context) string {
	if carried := c.Query("next"); carried != "" {
		return carried
	}
	return c.Request.URL.RequestURI()
}

func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// GetSessionUser retorna o usuário autorizado pelo guard.
func GetSessionUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

var loadingPage = template.Must(template.New("loading").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="1">
<title>Carregando…</title>
</head>
<body>
<main class="loading" aria-busy="true">
<p>Carregando sua sessão…</p>
</main>
</body>
</html>
`))

func renderLoading(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	if c.GetHeader("HX-Request") == "true" {
		// HTMX refaz a requisição até a sessão hidratar.
		c.Header("HX-Refresh", "true")
	}
	c.Status(http.StatusOK)
	if err := loadingPage.Execute(c.Writer, nil); err != nil {
		_ = c.Error(err)
	}
}
