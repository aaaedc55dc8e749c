package repository

import (
	"context"
	"errors"

	"miniwiki/internal/domain"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when account creation would violate
	// username uniqueness, including under concurrent creates.
	ErrDuplicateUsername = errors.New("username already exists")
)

// AccountRepository defines persistence operations for Account entities.
// Create must be atomic with respect to the uniqueness check.
type AccountRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, account *domain.Account) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}
