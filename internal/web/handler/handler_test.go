package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/session"
	webMiddleware "github.com/iantech-cloud/pro-career-suite-32-sub000/internal/web/middleware"
)

type fakeSessions struct {
	snap      session.Snapshot
	initToken string
	tornDown  bool
}

func (f *fakeSessions) Resolve(*gin.Context) session.Snapshot { return f.snap }

func (f *fakeSessions) Init(_ *gin.Context, token string, profile *model.User) error {
	f.initToken = token
	f.snap = session.Resolved(profile, token)
	return nil
}

func (f *fakeSessions) Teardown(*gin.Context) error {
	f.tornDown = true
	f.snap = session.Anonymous()
	return nil
}

func (f *fakeSessions) Token(*gin.Context) string { return f.snap.Token }

type fakeAuth struct {
	user      *model.User
	err       error
	loggedOut string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*session.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &session.LoginResult{User: f.user, Token: "tok-" + email}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = token
	return nil
}

type fakeUserAPI struct {
	users   []AdminUser
	changed map[uuid.UUID]string
	token   string
}

func (f *fakeUserAPI) ListUsers(_ context.Context, token string, page, size int) ([]AdminUser, error) {
	f.token = token
	return f.users, nil
}

func (f *fakeUserAPI) ChangeTier(_ context.Context, token string, id uuid.UUID, tier string) error {
	if f.changed == nil {
		f.changed = make(map[uuid.UUID]string)
	}
	f.changed[id] = tier
	for i := range f.users {
		if f.users[i].UUID == id {
			f.users[i].Tier = tier
		}
	}
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func member(t access.Tier) *model.User {
	return &model.User{UUID: uuid.New(), Name: "Caio", Email: "caio@example.com", Tier: t, Live: true}
}

func newTestRouter(t *testing.T, sessions *fakeSessions, auth *fakeAuth, users *fakeUserAPI) *gin.Engine {
	t.Helper()
	h, err := NewWebHandler(sessions, auth, users, access.DefaultPaths())
	require.NoError(t, err)

	paths := access.DefaultPaths()
	guard := func(opts ...webMiddleware.GuardOption) gin.HandlerFunc {
		return webMiddleware.RouteGuard(sessions, paths, opts...)
	}

	r := gin.New()
	r.GET("/auth", h.ServeLogin)
	r.POST("/auth", h.HandleLogin)
	r.POST("/auth/logout", h.HandleLogout)
	r.GET("/", guard(), h.ServeRoot)
	r.GET("/dashboard", guard(), h.ServeDashboard)
	r.GET("/cv-builder", guard(webMiddleware.RequireTier(access.TierFree)), h.ServeCVBuilder)
	r.GET("/jobs", guard(webMiddleware.RequireTier(access.TierFree)), h.ServeJobs)
	r.GET("/social", guard(webMiddleware.RequireTier(access.TierPro)), h.ServeSocial)
	r.GET("/upgrade", guard(), h.ServeUpgrade)
	admin := r.Group("/admin", guard(webMiddleware.RequireTier(access.TierAdmin), webMiddleware.RedirectTo(paths.Dashboard)))
	admin.GET("", h.ServeAdmin)
	admin.GET("/users", h.ServeUsersTable)
	admin.PATCH("/users/:identifier/tier", h.HandleChangeTier)
	return r
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginRedirectsToHomeRoute(t *testing.T) {
	sessions := &fakeSessions{}
	auth := &fakeAuth{user: member(access.TierAdmin)}
	r := newTestRouter(t, sessions, auth, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/auth", url.Values{"email": {"a@b.com"}, "password": {"x"}}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	assert.Equal(t, "tok-a@b.com", sessions.initToken)
}

func TestLoginHonoursSafeNext(t *testing.T) {
	cases := map[string]string{
		"/jobs?tab=saved":      "/jobs?tab=saved",
		"//evil.example.com":   "/dashboard",
		"https://evil.example": "/dashboard",
		"/\\evil.example.com":  "/dashboard",
		"/auth?next=%2Fjobs":   "/dashboard",
		"":                     "/dashboard",
	}
	for next, want := range cases {
		sessions := &fakeSessions{}
		r := newTestRouter(t, sessions, &fakeAuth{user: member(access.TierPro)}, &fakeUserAPI{})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, postForm("/auth", url.Values{"email": {"a@b.com"}, "password": {"x"}, "next": {next}}))

		assert.Equal(t, want, w.Header().Get("Location"), next)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	sessions := &fakeSessions{}
	r := newTestRouter(t, sessions, &fakeAuth{err: session.ErrUnauthorized}, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/auth", url.Values{"email": {"a@b.com"}, "password": {"bad"}}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Email ou senha incorretos")
	assert.Empty(t, sessions.initToken)
}

func TestServeLoginRedirectsWhenAuthenticated(t *testing.T) {
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierFree), "tok")}
	r := newTestRouter(t, sessions, &fakeAuth{}, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestLogoutRevokesAndClears(t *testing.T) {
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierFree), "tok-9")}
	auth := &fakeAuth{}
	r := newTestRouter(t, sessions, auth, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))
	assert.Equal(t, "tok-9", auth.loggedOut)
	assert.True(t, sessions.tornDown)
}

func TestRootUsesHomeRoute(t *testing.T) {
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierAdmin), "tok")}
	r := newTestRouter(t, sessions, &fakeAuth{}, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestJobsNestedGates(t *testing.T) {
	cases := []struct {
		tier      access.Tier
		autoApply bool
		aiMatch   bool
	}{
		{access.TierFree, false, false},
		{access.TierPro, true, false},
		{access.TierPremium, true, true},
		{access.TierAdmin, true, true},
	}
	for _, tc := range cases {
		sessions := &fakeSessions{snap: session.Resolved(member(tc.tier), "tok")}
		r := newTestRouter(t, sessions, &fakeAuth{}, &fakeUserAPI{})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.Equal(t, tc.autoApply, strings.Contains(body, "Defina filtros"), tc.tier)
		assert.Equal(t, tc.aiMatch, strings.Contains(body, "Vagas ordenadas pela aderência"), tc.tier)
		if !tc.autoApply {
			assert.Contains(t, body, "/upgrade?required=pro")
			assert.NotContains(t, body, "/upgrade?required=premium")
		}
		if tc.autoApply && !tc.aiMatch {
			assert.Contains(t, body, "/upgrade?required=premium")
		}
	}
}

func TestCVBuilderGalleryFallback(t *testing.T) {
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierPro), "tok")}
	r := newTestRouter(t, sessions, &fakeAuth{}, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cv-builder", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Tech Lead")
	assert.Contains(t, w.Body.String(), "Galeria premium")
}

func TestSocialRequiresPro(t *testing.T) {
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierFree), "tok")}
	r := newTestRouter(t, sessions, &fakeAuth{}, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/social", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/upgrade?required=pro", w.Header().Get("Location"))
}

func TestUpgradeShowsRequiredTier(t *testing.T) {
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierFree), "tok")}
	r := newTestRouter(t, sessions, &fakeAuth{}, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upgrade?required=premium", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "exige o plano")
	assert.Contains(t, w.Body.String(), "premium")
}

func TestAdminAnonymousGoesToDashboard(t *testing.T) {
	r := newTestRouter(t, &fakeSessions{}, &fakeAuth{}, &fakeUserAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/dashboard?next="))
}

func TestAdminChangeTier(t *testing.T) {
	target := AdminUser{UUID: uuid.New(), Name: "Duda", Email: "duda@example.com", Tier: "free", Live: true}
	api := &fakeUserAPI{users: []AdminUser{target}}
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierAdmin), "admin-tok")}
	r := newTestRouter(t, sessions, &fakeAuth{}, api)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/users/"+target.UUID.String()+"/tier", strings.NewReader("tier=premium"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "premium", api.changed[target.UUID])
	assert.Equal(t, "admin-tok", api.token)
	assert.Contains(t, w.Body.String(), "duda@example.com")
}

func TestAdminChangeTierRejectsUnknownTier(t *testing.T) {
	api := &fakeUserAPI{}
	sessions := &fakeSessions{snap: session.Resolved(member(access.TierAdmin), "admin-tok")}
	r := newTestRouter(t, sessions, &fakeAuth{}, api)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/users/"+uuid.NewString()+"/tier", strings.NewReader("tier=gold"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.changed)
	assert.Contains(t, w.Body.String(), "Tier inválido")
}
