package user

import (
	"context"
	"strings"
	"time"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/util"
)

type Service interface {
	Create(ctx context.Context, user User) (User, error)
	Read(ctx context.Context, user User) (User, error)
	List(ctx context.Context, page, pageSize int) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	ChangeTier(ctx context.Context, user User, tier string) (User, error)
}

type serviceImpl struct {
	Repository Repository
}

func NewService(repository Repository) Service {
	return &serviceImpl{
		Repository: repository,
	}
}

func (s *serviceImpl) Create(ctx context.Context, user User) (User, error) {
	if user.Email == "" || user.Password == "" {
		return User{}, ErrInvalidInput
	}
	if user.Tier == "" {
		user.Tier = access.TierFree
	}
	if !IsValidTier(user.Tier) {
		return User{}, ErrInvalidTier
	}
	hashPwd, err := util.UsePassword().Hash(user.Password)
	if err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	newUser := User{
		Name:     user.Name,
		Email:    strings.ToLower(strings.TrimSpace(user.Email)),
		Password: hashPwd,
		Tier:     user.Tier,
		Live:     true,
		CreateAt: now,
		UpdateAt: now,
	}

	return s.Repository.Create(ctx, newUser)
}

func (s *serviceImpl) Read(ctx context.Context, user User) (User, error) {
	if user.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	}
	return s.Repository.Read(ctx, user)
}

func (s *serviceImpl) List(ctx context.Context, page, pageSize int) ([]User, error) {
	return s.Repository.List(ctx, page, pageSize)
}

func (s *serviceImpl) Update(ctx context.Context, user User) (User, error) {
	if user.Tier != "" && !IsValidTier(user.Tier) {
		return User{}, ErrInvalidTier
	}
	if user.Password != "" {
		hashPwd, err := util.UsePassword().Hash(user.Password)
		if err != nil {
			return User{}, err
		}
		user.Password = hashPwd
	}

	user.UpdateAt = time.Now().UTC()

	return s.Repository.Update(ctx, user)
}

// ChangeTier é a única operação que altera o tier de um usuário.
func (s *serviceImpl) ChangeTier(ctx context.Context, user User, tier string) (User, error) {
	parsed, err := access.ParseTier(tier)
	if err != nil {
		return User{}, ErrInvalidTier
	}
	return s.Repository.Update(ctx, User{
		UUID:     user.UUID,
		Tier:     parsed,
		UpdateAt: time.Now().UTC(),
	})
}
