package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
)

func TestFetchProfile(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"uuid": id, "email": "a@example.com", "tier": "premium", "live": true},
			"token": "tok",
		})
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL+"/", srv.Client(), BreakerConfig{})
	u, err := client.FetchProfile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, id, u.UUID)
	assert.Equal(t, access.TierPremium, u.Tier)
}

func TestFetchProfileRejectedDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, srv.Client(), BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MaxFailures: 2})
	for i := 0; i < 4; i++ {
		_, err := client.FetchProfile(context.Background(), "tok")
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.Equal(t, int32(4), calls.Load())
}

func TestFetchProfileOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, srv.Client(), BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MaxFailures: 2})
	for i := 0; i < 2; i++ {
		_, err := client.FetchProfile(context.Background(), "tok")
		assert.ErrorIs(t, err, ErrBackend)
	}

	_, err := client.FetchProfile(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoginAndLogout(t *testing.T) {
	id := uuid.New()
	expire := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "certa" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":   map[string]any{"uuid": id, "email": body["email"], "tier": "admin", "live": true},
			"token":  "novo",
			"expire": expire,
		})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer novo", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusAccepted)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewAuthClient(srv.URL, srv.Client(), BreakerConfig{})

	_, err := client.Login(context.Background(), "adm@example.com", "errada")
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := client.Login(context.Background(), "adm@example.com", "certa")
	require.NoError(t, err)
	assert.Equal(t, "novo", res.Token)
	assert.Equal(t, access.TierAdmin, res.User.Tier)
	assert.True(t, expire.Equal(res.Expire))

	assert.NoError(t, client.Logout(context.Background(), "novo"))
}

func TestBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewAuthClient(url, nil, BreakerConfig{})
	_, err := client.FetchProfile(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrBackend)
}
