package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/application/auth"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/middleware"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/jwt"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/session"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/web/handler"
)

type stack struct {
	srv   *httptest.Server
	users user.Service
}

func newStack(t *testing.T, ping func(ctx context.Context) error) *stack {
	t.Helper()
	tg, err := jwt.NewTokenGenerator(jwt.Config{AccessSecret: "routes-secret", Issuer: "career-test", AccessExpiry: time.Hour})
	require.NoError(t, err)

	userRepo := user.NewInMemoryRepository()
	users := user.NewService(userRepo)
	tokenRepo := auth.NewInMemoryRepository()
	authService := auth.NewService(tokenRepo, users, tg)

	loader := middleware.LoginLoader(func(ctx context.Context, token string) (*middleware.Login, error) {
		at, err := tokenRepo.GetAcessToken(ctx, token)
		if err != nil {
			return nil, middleware.ErrLoginNotFound
		}
		u, err := userRepo.Read(ctx, user.User{UUID: *at.UserUUID})
		if err != nil {
			return nil, middleware.ErrLoginNotFound
		}
		return &middleware.Login{
			User:       u,
			AcessToken: middleware.AcessToken{UserUUID: at.UserUUID, Token: at.Token, Expiry: at.Expiry},
		}, nil
	})

	var router *gin.Engine
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	authClient := session.NewAuthClient(srv.URL, srv.Client(), session.BreakerConfig{})
	provider := session.NewProvider(
		session.NewCookieStore(strings.Repeat("k", 32), false, 3600),
		authClient,
		session.Config{HydrateWait: 2 * time.Second},
	)
	paths := access.DefaultPaths()
	web, err := handler.NewWebHandler(provider, authClient, handler.NewUserAPIClient(srv.URL, srv.Client()), paths)
	require.NoError(t, err)

	router, err = SetupRouter(Dependencies{
		Env:            "test",
		Paths:          paths,
		APIGuard:       middleware.NewMiddleware(loader, tg),
		UserController: user.NewController(users),
		AuthController: auth.NewController(authService),
		Sessions:       provider,
		Web:            web,
		Ping:           ping,
	})
	require.NoError(t, err)

	return &stack{srv: srv, users: users}
}

func (s *stack) createUser(t *testing.T, email string, tier access.Tier) {
	t.Helper()
	_, err := s.users.Create(context.Background(), user.User{Name: "E2E", Email: email, Password: "s3nha", Tier: tier})
	require.NoError(t, err)
}

// browser segue cookies mas não redirects, para inspecionar cada Location.
func (s *stack) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:       jar,
		Transport: s.srv.Client().Transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *stack) get(t *testing.T, client *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(s.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *stack) login(t *testing.T, client *http.Client, email, next string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(s.srv.URL+"/auth", url.Values{"email": {email}, "password": {"s3nha"}, "next": {next}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestFreeUserJourney(t *testing.T) {
	s := newStack(t, nil)
	s.createUser(t, "free@e2e.test", access.TierFree)
	client := s.browser(t)

	resp := s.get(t, client, "/social")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth?next=%2Fsocial", resp.Header.Get("Location"))

	resp = s.login(t, client, "free@e2e.test", "/social")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/social", resp.Header.Get("Location"))

	resp = s.get(t, client, "/social")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/upgrade?required=pro", resp.Header.Get("Location"))

	resp = s.get(t, client, "/jobs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.get(t, client, "/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/upgrade?required=admin", resp.Header.Get("Location"))

	resp = s.get(t, client, "/")
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, err := client.Post(s.srv.URL+"/auth/logout", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "/auth", resp.Header.Get("Location"))

	resp = s.get(t, client, "/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth?next=%2Fdashboard", resp.Header.Get("Location"))
}

func TestAdminJourney(t *testing.T) {
	s := newStack(t, nil)
	s.createUser(t, "admin@e2e.test", access.TierAdmin)
	s.createUser(t, "member@e2e.test", access.TierPro)
	client := s.browser(t)

	// Sem sessão, a área admin manda para o dashboard, que leva ao login
	// mantendo /admin como destino.
	resp := s.get(t, client, "/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard?next=%2Fadmin", resp.Header.Get("Location"))

	resp = s.get(t, client, resp.Header.Get("Location"))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth?next=%2Fadmin", resp.Header.Get("Location"))

	resp = s.login(t, client, "admin@e2e.test", "/admin")
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = s.get(t, client, "/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.get(t, client, "/admin/users")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := new(strings.Builder)
	_, err := io.Copy(body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "member@e2e.test")

	resp = s.get(t, client, "/analytics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresAdminTier(t *testing.T) {
	s := newStack(t, nil)
	s.createUser(t, "api-pro@e2e.test", access.TierPro)

	client := session.NewAuthClient(s.srv.URL, s.srv.Client(), session.BreakerConfig{})
	res, err := client.Login(context.Background(), "api-pro@e2e.test", "s3nha")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, s.srv.URL+"/api/user/list", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	healthy := newStack(t, func(context.Context) error { return nil })
	resp := healthy.get(t, healthy.srv.Client(), "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newStack(t, func(context.Context) error { return errors.New("db down") })
	resp = down.get(t, down.srv.Client(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSetupRouterRejectsUnknownEnv(t *testing.T) {
	_, err := SetupRouter(Dependencies{Env: "staging"})
	assert.Error(t, err)
}
