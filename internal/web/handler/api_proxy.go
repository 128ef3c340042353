package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/session"
)

// AdminUser é a linha da tabela de usuários do painel administrativo.
type AdminUser struct {
	UUID  uuid.UUID `json:"uuid"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Tier  string    `json:"tier"`
	Live  bool      `json:"live"`
}

// UserAdminAPI é a parte da API /api/user usada pelo painel administrativo.
type UserAdminAPI interface {
	ListUsers(ctx context.Context, token string, page, size int) ([]AdminUser, error)
	ChangeTier(ctx context.Context, token string, id uuid.UUID, tier string) error
}

// UserAPIClient faz proxy das ações do painel para a API REST, adicionando
// o token da sessão.
type UserAPIClient struct {
	baseURL string
	http    *http.Client
}

func NewUserAPIClient(baseURL string, httpClient *http.Client) *UserAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &UserAPIClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (a *UserAPIClient) ListUsers(ctx context.Context, token string, page, size int) ([]AdminUser, error) {
	apiURL := fmt.Sprintf("%s/api/user/list?page=%d&size=%d", a.baseURL, page, size)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Users []AdminUser `json:"users"`
	}
	if err := a.do(req, token, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

func (a *UserAPIClient) ChangeTier(ctx context.Context, token string, id uuid.UUID, tier string) error {
	body, err := json.Marshal(map[string]string{"tier": tier})
	if err != nil {
		return err
	}
	apiURL := fmt.Sprintf("%s/api/user/%s/tier", a.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token, nil)
}

func (a *UserAPIClient) do(req *http.Request, token string, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrBackend, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrBackend, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return session.ErrUnauthorized
	case resp.StatusCode >= 300:
		var restErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &restErr)
		return &APIError{Status: resp.StatusCode, Message: restErr.Message}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// APIError carrega a mensagem de um RestErr devolvido pela API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return e.Message
}

type usersTableData struct {
	Users []AdminUser
	Page  int
	Size  int
	Tiers []string
	Error string
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// ServeUsersTable retorna HTML parcial para a tabela de usuários
func (h *WebHandler) ServeUsersTable(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)
	h.renderUsersTable(c, http.StatusOK, page, size, "")
}

// HandleChangeTier altera o tier de um usuário e devolve a tabela atualizada
func (h *WebHandler) HandleChangeTier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("identifier"))
	if err != nil {
		h.renderUsersTable(c, http.StatusBadRequest, 1, 20, "Usuário inválido")
		return
	}

	tier, err := access.ParseTier(c.PostForm("tier"))
	if err != nil {
		h.renderUsersTable(c, http.StatusBadRequest, 1, 20, "Tier inválido")
		return
	}

	token := h.sessions.Token(c)
	if err := h.users.ChangeTier(c.Request.Context(), token, id, tier.String()); err != nil {
		h.log.Warn(c.Request.Context(), "falha ao alterar tier", zap.String("user", id.String()), zap.Error(err))
		h.renderUsersTable(c, http.StatusBadGateway, 1, 20, "Não foi possível alterar o tier")
		return
	}

	h.log.Info(c.Request.Context(), "tier alterado", zap.String("user", id.String()), zap.String("tier", tier.String()))
	h.renderUsersTable(c, http.StatusOK, 1, 20, "")
}

func (h *WebHandler) renderUsersTable(c *gin.Context, status, page, size int, message string) {
	data := usersTableData{Page: page, Size: size, Tiers: access.AllValidTiers, Error: message}

	if message == "" {
		users, err := h.users.ListUsers(c.Request.Context(), h.sessions.Token(c), page, size)
		if err != nil {
			h.log.Warn(c.Request.Context(), "falha ao listar usuários", zap.Error(err))
			status = http.StatusBadGateway
			data.Error = "Não foi possível carregar os usuários"
		}
		data.Users = users
	}

	var buf bytes.Buffer
	if err := h.partials.ExecuteTemplate(&buf, "users_table", data); err != nil {
		h.log.Error(c.Request.Context(), "erro ao renderizar tabela", zap.Error(err))
		c.String(http.StatusInternalServerError, "Error rendering template")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
