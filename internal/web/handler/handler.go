package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/session"
	webMiddleware "github.com/iantech-cloud/pro-career-suite-32-sub000/internal/web/middleware"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/web/templates"
)

// SessionManager é o ciclo de vida da sessão visto pelas páginas.
type SessionManager interface {
	Resolve(c *gin.Context) session.Snapshot
	Init(c *gin.Context, token string, profile *model.User) error
	Teardown(c *gin.Context) error
	Token(c *gin.Context) string
}

// Authenticator fala com a API de autenticação.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*session.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

type WebHandler struct {
	sessions  SessionManager
	auth      Authenticator
	users     UserAdminAPI
	paths     access.Paths
	templates map[string]*template.Template
	partials  *template.Template
	log       *logger.Logger
}

// pageData é o contexto comum a todas as páginas.
type pageData struct {
	Title     string
	Active    string
	User      *model.User
	Access    access.Gate
	Paths     access.Paths
	Home      string
	Error     string
	Next      string
	Required  string
	Fragments map[string]template.HTML
}

type upgradePromptData struct {
	Feature  string
	Required access.Tier
	Upgrade  string
}

var pages = []string{
	"login.html",
	"dashboard.html",
	"cv_builder.html",
	"social.html",
	"jobs.html",
	"analytics.html",
	"admin.html",
	"upgrade.html",
}

// NewWebHandler cria uma nova instância do handler web
func NewWebHandler(sessions SessionManager, auth Authenticator, users UserAdminAPI, paths access.Paths) (*WebHandler, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"subtract": func(a, b int) int {
			return a - b
		},
	}

	// Cada página é um template isolado contendo base.html + pagina.html
	compiled := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcMap).ParseFS(templates.FS, "base.html", page)
		if err != nil {
			return nil, fmt.Errorf("error parsing template %s: %w", page, err)
		}
		compiled[page] = tmpl
	}

	partials, err := template.New("partials").Funcs(funcMap).ParseFS(templates.FS, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing partials: %w", err)
	}

	return &WebHandler{
		sessions:  sessions,
		auth:      auth,
		users:     users,
		paths:     paths.WithDefaults(),
		templates: compiled,
		partials:  partials,
		log:       logger.Named("web"),
	}, nil
}

func (h *WebHandler) newPage(c *gin.Context, title, active string) pageData {
	u := webMiddleware.GetSessionUser(c)
	data := pageData{
		Title:     title,
		Active:    active,
		User:      u,
		Access:    access.NewGate(u.AccessTier()),
		Paths:     h.paths,
		Fragments: make(map[string]template.HTML),
	}
	if u != nil {
		data.Home = access.HomeRouteForUser(u, h.paths)
	}
	return data
}

// renderTemplate helper para renderizar templates com segurança
func (h *WebHandler) renderTemplate(c *gin.Context, status int, page string, data pageData) {
	tmpl, ok := h.templates[page]
	if !ok {
		c.String(http.StatusInternalServerError, "Template not found: "+page)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		h.log.Error(c.Request.Context(), "erro ao renderizar template", zap.String("page", page), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error rendering template")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// fragment adia a renderização de um parcial até o gate decidir por ele.
func (h *WebHandler) fragment(name string, data any) func() template.HTML {
	return func() template.HTML {
		var buf bytes.Buffer
		if err := h.partials.ExecuteTemplate(&buf, name, data); err != nil {
			h.log.Error(context.Background(), "erro ao renderizar fragmento", zap.String("fragment", name), zap.Error(err))
			return ""
		}
		return template.HTML(buf.String())
	}
}

func (h *WebHandler) upgradePrompt(feature string, required access.Tier) func() template.HTML {
	target := h.paths.Upgrade + "?required=" + url.QueryEscape(required.String())
	return h.fragment("upgrade_prompt", upgradePromptData{Feature: feature, Required: required, Upgrade: target})
}

// ServeLogin exibe a página de login
func (h *WebHandler) ServeLogin(c *gin.Context) {
	snap := h.sessions.Resolve(c)
	if snap.Authenticated() {
		c.Redirect(http.StatusFound, h.landing(c.Query("next"), snap.User))
		return
	}

	data := h.newPage(c, "Login", "login")
	data.Next = c.Query("next")
	h.renderTemplate(c, http.StatusOK, "login.html", data)
}

// HandleLogin processa o formulário de login
func (h *WebHandler) HandleLogin(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	next := c.PostForm("next")

	renderError := func(status int, message string) {
		data := h.newPage(c, "Login", "login")
		data.Error = message
		data.Next = next
		h.renderTemplate(c, status, "login.html", data)
	}

	if email == "" || password == "" {
		renderError(http.StatusBadRequest, "Informe email e senha")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			renderError(http.StatusUnauthorized, "Email ou senha incorretos")
			return
		}
		h.log.Error(c.Request.Context(), "falha ao autenticar", zap.Error(err))
		renderError(http.StatusBadGateway, "Erro ao conectar com o servidor")
		return
	}

	if err := h.sessions.Init(c, result.Token, result.User); err != nil {
		h.log.Error(c.Request.Context(), "erro ao salvar sessão", zap.Error(err))
		renderError(http.StatusInternalServerError, "Erro ao salvar sessão")
		return
	}

	c.Redirect(http.StatusFound, h.landing(next, result.User))
}

// HandleLogout encerra a sessão no backend e no navegador
func (h *WebHandler) HandleLogout(c *gin.Context) {
	if token := h.sessions.Token(c); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil && !errors.Is(err, session.ErrUnauthorized) {
			h.log.Warn(c.Request.Context(), "falha ao revogar token", zap.Error(err))
		}
	}
	if err := h.sessions.Teardown(c); err != nil {
		h.log.Warn(c.Request.Context(), "falha ao limpar sessão", zap.Error(err))
	}
	c.Redirect(http.StatusFound, h.paths.Login)
}

// ServeRoot envia o usuário para a página inicial do seu tier
func (h *WebHandler) ServeRoot(c *gin.Context) {
	c.Redirect(http.StatusFound, access.HomeRouteForUser(webMiddleware.GetSessionUser(c), h.paths))
}

// ServeDashboard exibe o dashboard principal
func (h *WebHandler) ServeDashboard(c *gin.Context) {
	data := h.newPage(c, "Dashboard", "dashboard")
	tier := data.User.AccessTier()

	data.Fragments["social"] = access.ShowForTier(tier, access.TierPro,
		h.fragment("social_card", nil), h.upgradePrompt("Social", access.TierPro))
	data.Fragments["analytics"] = access.ShowForTier(tier, access.TierPremium,
		h.fragment("analytics_card", nil), h.upgradePrompt("Analytics", access.TierPremium))

	h.renderTemplate(c, http.StatusOK, "dashboard.html", data)
}

// ServeCVBuilder exibe o editor de currículo; a galeria é premium
func (h *WebHandler) ServeCVBuilder(c *gin.Context) {
	data := h.newPage(c, "CV Builder", "cv-builder")
	data.Fragments["gallery"] = access.ShowForTier(data.User.AccessTier(), access.TierPremium,
		h.fragment("premium_gallery", nil), h.upgradePrompt("Galeria premium", access.TierPremium))
	h.renderTemplate(c, http.StatusOK, "cv_builder.html", data)
}

// ServeSocial exibe o publicador social (pro)
func (h *WebHandler) ServeSocial(c *gin.Context) {
	data := h.newPage(c, "Social", "social")
	data.Fragments["analytics"] = access.ShowForTier(data.User.AccessTier(), access.TierPremium,
		h.fragment("analytics_card", nil), nil)
	h.renderTemplate(c, http.StatusOK, "social.html", data)
}

// ServeJobs exibe as vagas. A candidatura automática (pro) contém o match
// por IA (premium).
func (h *WebHandler) ServeJobs(c *gin.Context) {
	data := h.newPage(c, "Vagas", "jobs")
	tier := data.User.AccessTier()

	data.Fragments["auto_apply"] = access.ShowForTier(tier, access.TierPro,
		func() template.HTML {
			aiMatch := access.ShowForTier(tier, access.TierPremium,
				h.fragment("ai_match", nil), h.upgradePrompt("Match por IA", access.TierPremium))
			return h.fragment("auto_apply", gin.H{"AIMatch": aiMatch})()
		},
		h.upgradePrompt("Candidatura automática", access.TierPro),
	)

	h.renderTemplate(c, http.StatusOK, "jobs.html", data)
}

// ServeAnalytics exibe o painel de analytics (premium)
func (h *WebHandler) ServeAnalytics(c *gin.Context) {
	h.renderTemplate(c, http.StatusOK, "analytics.html", h.newPage(c, "Analytics", "analytics"))
}

// ServeAdmin exibe o painel administrativo
func (h *WebHandler) ServeAdmin(c *gin.Context) {
	h.renderTemplate(c, http.StatusOK, "admin.html", h.newPage(c, "Administração", "admin"))
}

// ServeUpgrade exibe a página de planos
func (h *WebHandler) ServeUpgrade(c *gin.Context) {
	data := h.newPage(c, "Upgrade", "upgrade")
	if required, err := access.ParseTier(c.Query("required")); err == nil {
		data.Required = required.String()
	}
	h.renderTemplate(c, http.StatusOK, "upgrade.html", data)
}

// landing escolhe o destino após o login: next quando é um caminho local
// seguro, senão a página inicial do tier.
func (h *WebHandler) landing(next string, u *model.User) string {
	if safe, ok := safeNext(next); ok && !strings.HasPrefix(safe, h.paths.Login) {
		return safe
	}
	return access.HomeRouteForUser(u, h.paths)
}

func safeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "", false
	}
	return u.RequestURI(), true
}
