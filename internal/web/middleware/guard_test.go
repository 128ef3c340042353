package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/session"
)

type staticResolver struct {
	snap session.Snapshot
}

func (r staticResolver) Resolve(*gin.Context) session.Snapshot { return r.snap }

func userWithTier(t access.Tier) *model.User {
	return &model.User{UUID: uuid.New(), Name: "Bia", Email: "bia@example.com", Tier: t, Live: true}
}

func TestDecideLoadingNeverRedirects(t *testing.T) {
	users := []*model.User{nil, userWithTier(access.TierFree), userWithTier(access.TierAdmin), userWithTier("ghost")}
	for _, u := range users {
		snap := session.Snapshot{User: u, IsLoading: true}
		d := Decide(snap, Policy{Required: access.TierPremium, RedirectTo: "/somewhere"})
		assert.Equal(t, StateLoading, d.State)
		assert.Empty(t, d.Target)
	}
}

func TestDecideUnauthenticated(t *testing.T) {
	d := Decide(session.Anonymous(), Policy{})
	assert.Equal(t, StateUnauthenticated, d.State)
	assert.Equal(t, "/auth", d.Target)
	assert.True(t, d.Replace)

	d = Decide(session.Anonymous(), Policy{RedirectTo: "/dashboard", Required: access.TierAdmin})
	assert.Equal(t, "/dashboard", d.Target)
}

func TestDecideDeniedGoesToUpgrade(t *testing.T) {
	snap := session.Resolved(userWithTier(access.TierFree), "tok")
	d := Decide(snap, Policy{Required: access.TierPro, RedirectTo: "/auth"})

	assert.Equal(t, StateDenied, d.State)
	assert.Equal(t, "/upgrade", d.Target)
	assert.True(t, d.Replace)
}

func TestDecideUnknownTierIsDenied(t *testing.T) {
	snap := session.Resolved(userWithTier("gold"), "tok")
	assert.Equal(t, StateDenied, Decide(snap, Policy{Required: access.TierFree}).State)
	assert.Equal(t, StateAuthorized, Decide(snap, Policy{}).State)
}

func TestDecideAuthorized(t *testing.T) {
	snap := session.Resolved(userWithTier(access.TierAdmin), "tok")
	for _, required := range access.AllValidTiers {
		assert.Equal(t, StateAuthorized, Decide(snap, Policy{Required: access.Tier(required)}).State, required)
	}
}

func newGuardedRouter(snap session.Snapshot, opts ...GuardOption) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/social", RouteGuard(staticResolver{snap: snap}, access.DefaultPaths(), opts...), func(c *gin.Context) {
		u := GetSessionUser(c)
		c.String(http.StatusOK, "ok:"+u.Tier.String())
	})
	return r
}

func TestRouteGuardRedirectsAnonymousToLoginWithNext(t *testing.T) {
	r := newGuardedRouter(session.Anonymous(), RequireTier(access.TierPro))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/social?tab=x", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth?next=%2Fsocial%3Ftab%3Dx", w.Header().Get("Location"))
}

func TestRouteGuardCarriesNextAcrossRedirects(t *testing.T) {
	r := newGuardedRouter(session.Anonymous())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/social?next=%2Fadmin", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth?next=%2Fadmin", w.Header().Get("Location"))
}

func TestRouteGuardRedirectsUnderTieredToUpgrade(t *testing.T) {
	r := newGuardedRouter(session.Resolved(userWithTier(access.TierFree), "tok"), RequireTier(access.TierPro))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/social", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/upgrade?required=pro", w.Header().Get("Location"))
}

func TestRouteGuardHTMXUsesReplaceHeaders(t *testing.T) {
	r := newGuardedRouter(session.Resolved(userWithTier(access.TierFree), "tok"), RequireTier(access.TierPro))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/social", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/upgrade?required=pro", w.Header().Get("HX-Redirect"))
	assert.Equal(t, "/upgrade?required=pro", w.Header().Get("HX-Replace-Url"))
	assert.Empty(t, w.Header().Get("Location"))
}

func TestRouteGuardLoadingRendersNeutralPage(t *testing.T) {
	r := newGuardedRouter(session.Loading("tok"), RequireTier(access.TierPro))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/social", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), `http-equiv="refresh"`)
	assert.NotContains(t, w.Body.String(), "ok:")
}

func TestRouteGuardAuthorizedAttachesUser(t *testing.T) {
	r := newGuardedRouter(session.Resolved(userWithTier(access.TierPremium), "tok"), RequireTier(access.TierPro))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/social", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok:premium", w.Body.String())
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDRejectsOversizedOrUnprintable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	for _, id := range []string{strings.Repeat("x", 500), "com espaço", "quebra\tlinha", "ação"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, id)
		r.ServeHTTP(w, req)

		got := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(got)
		assert.NoError(t, err, id)
		assert.Equal(t, got, seen)
		assert.LessOrEqual(t, len(seen), 100)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 100))
	r.ServeHTTP(w, req)
	assert.Equal(t, strings.Repeat("a", 100), seen)
}
