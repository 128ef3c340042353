package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/application/auth/cache"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/util"
)

// MaxFailedAttempts bloqueia o email até a janela do cache expirar.
const MaxFailedAttempts = 5

// TokenIssuer é implementado por jwt.TokenGenerator.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email, tier string) (string, time.Time, error)
}

type Service interface {
	Login(ctx context.Context, email, pwd string) (Login, error)
	RevokeAcessToken(ctx context.Context, token string) error
}

type implService struct {
	Repository Repository
	Users      user.Service
	Issuer     TokenIssuer
}

func NewService(repository Repository, users user.Service, issuer TokenIssuer) Service {
	return &implService{
		Repository: repository,
		Users:      users,
		Issuer:     issuer,
	}
}

func (s *implService) Login(ctx context.Context, email, pwd string) (Login, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if cache.Failures(email) >= MaxFailedAttempts {
		return Login{}, ErrTooManyAttempts
	}

	rUser, err := s.Users.Read(ctx, user.User{Email: email})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrInvalidInput) {
			cache.RegisterFailure(email)
			return Login{}, ErrPwdWrong
		}
		return Login{}, err
	}
	if !rUser.Live {
		return Login{}, ErrPwdWrong
	}
	if err := util.UsePassword().Compare(rUser.Password, pwd); err != nil {
		cache.RegisterFailure(email)
		return Login{}, ErrPwdWrong
	}
	cache.Reset(email)

	token, expTime, err := s.Issuer.GenerateAccessToken(rUser.UUID, rUser.Email, rUser.Tier.String())
	if err != nil {
		return Login{}, err
	}
	acessToken := AcessToken{UserUUID: &rUser.UUID, Token: token, Expiry: expTime}

	// Sessão única: invalida tokens anteriores do usuário.
	if err := s.Repository.RevokeAllUserTokens(ctx, rUser.UUID.String()); err != nil {
		return Login{}, fmt.Errorf("revogar tokens anteriores: %w", err)
	}

	if err := s.Repository.CreateAcessToken(ctx, acessToken); err != nil {
		return Login{}, err
	}

	return Login{User: rUser, AcessToken: acessToken}, nil
}

func (s *implService) RevokeAcessToken(ctx context.Context, token string) error {
	return s.Repository.RevokeAcessToken(ctx, token)
}
