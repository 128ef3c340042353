package user

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository substitui o gorm nos testes.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: make(map[uuid.UUID]User),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, ErrEmailDuplicated
		}
	}
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	r.users[user.UUID] = user
	return user, nil
}

func (r *InMemoryRepository) Read(_ context.Context, user User) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case user.UUID != uuid.Nil:
		found, ok := r.users[user.UUID]
		if !ok {
			return User{}, ErrNotFound
		}
		return found, nil
	case user.Email != "":
		for _, existing := range r.users {
			if existing.Email == user.Email {
				return existing, nil
			}
		}
		return User{}, ErrNotFound
	default:
		return User{}, ErrInvalidInput
	}
}

func (r *InMemoryRepository) List(_ context.Context, page, pageSize int) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreateAt.Equal(all[j].CreateAt) {
			return all[i].Email < all[j].Email
		}
		return all[i].CreateAt.Before(all[j].CreateAt)
	})

	page, pageSize = normalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []User{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *InMemoryRepository) Update(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.UUID]
	if !ok {
		return User{}, ErrNotFound
	}
	if user.Name != "" {
		existing.Name = user.Name
	}
	if user.Email != "" {
		existing.Email = user.Email
	}
	if user.Password != "" {
		existing.Password = user.Password
	}
	if user.Tier != "" {
		existing.Tier = user.Tier
	}
	if !user.UpdateAt.IsZero() {
		existing.UpdateAt = user.UpdateAt
	}
	r.users[user.UUID] = existing
	return existing, nil
}
