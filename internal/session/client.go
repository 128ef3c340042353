package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
)

// ProfileFetcher resolve o perfil do usuário dono de um token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (*model.User, error)
}

// LoginResult é a resposta do backend ao login.
type LoginResult struct {
	User   *model.User
	Token  string
	Expire time.Time
}

// BreakerConfig controla o circuit breaker das consultas de perfil.
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: 10 * time.Second, MaxFailures: 5}
}

// AuthClient fala com a API de autenticação (/api/auth/*).
type AuthClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*model.User]
}

func NewAuthClient(baseURL string, httpClient *http.Client, cfg BreakerConfig) *AuthClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.MaxFailures == 0 {
		cfg = DefaultBreakerConfig()
	}
	breaker := gobreaker.NewCircuitBreaker[*model.User](gobreaker.Settings{
		Name:        "authBackend",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// Token recusado é resposta válida do backend, não falha de infraestrutura.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnauthorized)
		},
	})
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: breaker,
	}
}

type userPayload struct {
	UUID  uuid.UUID `json:"uuid"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Tier  string    `json:"tier"`
	Live  bool      `json:"live"`
}

type sessionPayload struct {
	User   userPayload `json:"user"`
	Token  string      `json:"token"`
	Expire time.Time   `json:"expire"`
}

func (p userPayload) toModel() *model.User {
	return &model.User{
		UUID:  p.UUID,
		Name:  p.Name,
		Email: p.Email,
		// O tier é repassado como veio; valores desconhecidos valem rank 0.
		Tier: access.Tier(p.Tier),
		Live: p.Live,
	}
}

// FetchProfile passa pelo circuit breaker; com o circuito aberto retorna
// ErrBackend sem tocar a rede.
func (c *AuthClient) FetchProfile(ctx context.Context, token string) (*model.User, error) {
	profile, err := c.breaker.Execute(func() (*model.User, error) {
		return c.fetchProfile(ctx, token)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit breaker: %v", ErrBackend, err)
	}
	return profile, err
}

func (c *AuthClient) fetchProfile(ctx context.Context, token string) (*model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var payload sessionPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return payload.User.toModel(), nil
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var payload sessionPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &LoginResult{User: payload.User.toModel(), Token: payload.Token, Expire: payload.Expire}, nil
}

func (c *AuthClient) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, nil)
}

func (c *AuthClient) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", ErrBackend, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: resposta inválida: %v", ErrBackend, err)
	}
	return nil
}
