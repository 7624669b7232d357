// Package repository declares the persistence contracts the services depend on.
//
// Implementations live in the sqlite and postgres subpackages. Both return
// apperror.ErrNotFound for empty lookups and apperror.ErrConflict when a
// unique constraint rejects a write; every other failure is internal.
package repository

import (
	"context"

	"github.com/sakif/daily-real/internal/model"
)

// UserRepository is the identity store.
type UserRepository interface {
	// Create inserts u and sets its ID and CreatedAt.
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AccountRepository is the account store.
type AccountRepository interface {
	// Create inserts a and its detail record in one transaction and sets
	// the generated IDs on both.
	Create(ctx context.Context, a *model.Account) error
	// ListByOwner returns the owner's accounts in creation order.
	// The result is empty, not nil, when the owner has none.
	ListByOwner(ctx context.Context, owner string) ([]*model.Account, error)
}
