package repository

import (
	"context"
	"errors"

	"github.com/identitylab/identity-service/internal/domain/entity"
)

var (
	// ErrDuplicateEmail is returned by Create when the email is already taken.
	// The unique index on users.email is the source of truth; concurrent
	// registrations race at the index and the loser gets this error.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrNotFound is returned by lookups for a user that does not exist.
	ErrNotFound = errors.New("user not found")
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create persists a new user and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
}
