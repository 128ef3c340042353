package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"sync"
	"time"
)

type impl struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	Encryption string // "tls" usa STARTTLS
	Address    string // From:
}

var (
	instance                Service
	once                    sync.Once
	mu                      sync.RWMutex
	initErr                 error
	ErrMailerNotInitialized = errors.New("mailer not initialized")
	ErrMissingConfig        = errors.New("missing required SMTP configuration")
)

// loginAuth implementa AUTH LOGIN, exigido pelo Office 365 após STARTTLS.
type loginAuth struct {
	username, password string
}

func LoginAuth(username, password string) smtp.Auth {
	return &loginAuth{username, password}
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch string(fromServer) {
	case "Username:":
		return []byte(a.username), nil
	case "Password:":
		return []byte(a.password), nil
	default:
		return nil, errors.New("unknown from server")
	}
}

// New cria a instância do mailer. Sem host configurado o envio de emails
// fica desligado e Use retorna nil.
func New(cfg SMTPConfig) (Service, error) {
	once.Do(func() {
		if cfg.Host == "" || cfg.Port == "" || cfg.Address == "" {
			initErr = ErrMissingConfig
			return
		}
		mu.Lock()
		instance = newService(cfg)
		mu.Unlock()
	})

	return Use(), initErr
}

func newService(cfg SMTPConfig) *impl {
	return &impl{cfg: cfg, send: smtp.SendMail}
}

// Use retorna a instância já inicializada (pode ser nil).
func Use() Service {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// reset descarta a instância; usado em testes.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	initErr = nil
	once = sync.Once{}
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-version: 1.0;\r\n" +
			"Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n" +
			body,
	)
}

func (m *impl) SendRaw(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(m.cfg.Address, to, subject, body)
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	if m.cfg.Encryption == "tls" {
		if err := m.sendWithStartTLS(ctx, addr, to, msg); err != nil {
			return fmt.Errorf("erro ao enviar email via %s: %w", addr, err)
		}
		return nil
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(addr, auth, m.cfg.Address, []string{to}, msg); err != nil {
		return fmt.Errorf("erro ao enviar email via %s: %w", addr, err)
	}
	return nil
}

func (m *impl) sendWithStartTLS(ctx context.Context, addr, to string, msg []byte) error {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial error: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp client error: %w", err)
	}
	defer c.Close()

	if err = c.Hello("localhost"); err != nil {
		return fmt.Errorf("smtp hello error: %w", err)
	}
	if err = c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("smtp starttls error: %w", err)
	}
	if m.cfg.Username != "" {
		if err = c.Auth(LoginAuth(m.cfg.Username, m.cfg.Password)); err != nil {
			return fmt.Errorf("smtp auth error: %w", err)
		}
	}
	if err = c.Mail(m.cfg.Address); err != nil {
		return fmt.Errorf("smtp mail error: %w", err)
	}
	if err = c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt error: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data error: %w", err)
	}
	if _, err = wc.Write(msg); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp write error: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("smtp close data error: %w", err)
	}

	// O email já foi aceito; falha no QUIT não é relevante.
	_ = c.Quit()
	return nil
}

func (m *impl) SendTemplate(ctx context.Context, to, subject, tpl string, data any) error {
	body, err := render(tpl, data)
	if err != nil {
		return err
	}
	return m.SendRaw(ctx, to, subject, body)
}

func render(tpl string, data any) (string, error) {
	t, err := template.New("email").Parse(tpl)
	if err != nil {
		return "", err
	}
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}
