package repository

import (
	"context"
	"errors"

	"github.com/edusphere/backend/models"
)

var (
	// ErrNotFound is the normal "no such account" outcome, distinct from a
	// transport failure talking to the database.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail surfaces the unique-index violation. The index is the
	// true arbiter for registration races; pre-checks are an optimization.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository is the persistent account store.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
}
