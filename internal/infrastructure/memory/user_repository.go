// Package memory provides an in-process UserRepository used by tests and
// local tooling. It enforces the same email uniqueness contract as the
// Postgres implementation.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/identitylab/identity-service/internal/domain/entity"
	"github.com/identitylab/identity-service/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string // email -> id
	order   []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[u.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	stored := *u
	r.byID[u.ID] = &stored
	r.byEmail[u.Email] = u.ID
	r.order = append(r.order, u.ID)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]entity.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, *r.byID[id])
	}
	return users, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
