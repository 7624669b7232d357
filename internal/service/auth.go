// Package service holds the business logic between the HTTP handlers and
// the stores.
//
//	handler (HTTP) -> AuthService / AccountService -> repository (DB)
//	                  AuthService -> auth.TokenService (JWT), auth.PasswordService (bcrypt)
//
// Services never read HTTP requests or write responses. Expected outcomes
// come back as apperror kinds; anything else is an internal failure.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/observability"
	"github.com/sakif/daily-real/internal/repository"
)

// DuplicateEmailMessage is the client-facing text for an already registered email.
const DuplicateEmailMessage = "Email already registered"

// dummyPassword is hashed once at startup so unknown emails cost a bcrypt
// comparison just like known ones.
const dummyPassword = "daily-real-timing-equalizer"

// PasswordHasher hashes and verifies passwords. *auth.PasswordService
// implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// AuthService handles registration, password login and token resolution.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  -> read/write identity records
//   - tokens     *auth.TokenService         -> issue/verify JWTs
//   - passwords  PasswordHasher             -> bcrypt hashing
//   - metrics    *observability.Metrics     -> may be nil
//   - logger     *slog.Logger
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords PasswordHasher
	metrics   *observability.Metrics
	logger    *slog.Logger

	dummyHash string
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords PasswordHasher,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *AuthService {
	dummy, err := passwords.Hash(dummyPassword)
	if err != nil {
		logger.Warn("preparing dummy password hash, unknown emails will skip bcrypt",
			slog.String("error", err.Error()))
	}

	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		metrics:   metrics,
		logger:    logger,
		dummyHash: dummy,
	}
}

// RegisterInput is a shape-validated registration request.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates a new identity with a hashed password.
//
// The email pre-check gives a fast answer in the common case; the store's
// unique constraint is what actually guarantees one identity per email, and
// losing that race yields the same conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("email", DuplicateEmailMessage)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("email", DuplicateEmailMessage)
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.metrics.UserRegistered()
	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Authenticate checks an email/password pair.
//
// It returns (nil, nil) for an unknown email or a wrong password so the
// caller can answer 401 without knowing which, and (nil, err) only when the
// store itself failed.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.Verify(s.dummyHash, password)
			s.metrics.LoginAttempt(false)
			s.logger.Warn("login failed", slog.String("reason", "unknown email"))
			return nil, nil
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !s.passwords.Verify(user.PasswordHash, password) {
		s.metrics.LoginAttempt(false)
		s.logger.Warn("login failed",
			slog.String("reason", "password mismatch"),
			slog.Int64("userID", user.ID),
		)
		return nil, nil
	}

	s.metrics.LoginAttempt(true)
	return user, nil
}

// IssueToken mints an access token whose subject is the user's email.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	if user == nil {
		return "", errors.New("service/auth: user must not be nil")
	}
	token, err := s.tokens.Issue(auth.Claims{Subject: user.Email, Name: user.Name})
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}
	return token, nil
}

// ResolveCaller verifies a bearer token and returns the identity it carries.
//
// The identity record is not re-read: a token stays good for its short
// lifetime even if the user changed in the meantime.
func (s *AuthService) ResolveCaller(token string) (*auth.Caller, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperror.Unauthorized(auth.UnauthorizedDetail)
	}
	return &auth.Caller{Email: claims.Subject, Name: claims.Name}, nil
}

var (
	_ auth.CallerResolver = (*AuthService)(nil)
	_ PasswordHasher      = (*auth.PasswordService)(nil)
)
