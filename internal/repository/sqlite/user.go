package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore persists identities in the users table.
type UserStore struct {
	db *DB
}

// Create inserts u. A duplicate email yields apperror.ErrConflict.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO users (email, name, hashed_password, created_at) VALUES (?, ?, ?, ?)`,
		u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "Email already registered")
		}
		return oops.Code("USER_CREATE_FAILED").With("email", u.Email).Wrapf(err, "sqlite: inserting user")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("email", u.Email).Wrapf(err, "sqlite: reading user id")
	}
	u.ID = id
	return nil
}

// GetByEmail returns the user with the given email or apperror.ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, hashed_password, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("email", email).Wrapf(err, "sqlite: selecting user")
	}
	return &u, nil
}
