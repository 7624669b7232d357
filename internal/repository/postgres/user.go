package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore persists identities in id.users.
type UserStore struct {
	pool poolIface
}

// Create inserts u. A duplicate email yields apperror.ErrConflict.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO id.users (email, name, hashed_password, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Email, u.Name, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "Email already registered")
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", u.Email).
			Wrap(err)
	}
	return nil
}

// GetByEmail returns the user with the given email or apperror.ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, hashed_password, created_at
		FROM id.users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").
			With("email", email).
			Wrap(err)
	}
	return &u, nil
}
