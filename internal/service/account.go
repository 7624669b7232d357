package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/daily-real/internal/account"
	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/observability"
	"github.com/sakif/daily-real/internal/repository"
)

// AccountService creates and lists accounts for an authenticated caller.
//
// Construction and storage are two steps: account.Build validates the draft
// and produces the record, then the repository persists it.
type AccountService struct {
	accounts repository.AccountRepository
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts repository.AccountRepository, metrics *observability.Metrics, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create builds an account owned by caller from draft and stores it.
// Rule violations come back as apperror.ErrDomain.
func (s *AccountService) Create(ctx context.Context, caller auth.Caller, draft account.Draft) (*model.Account, error) {
	if caller.Email == "" {
		return nil, apperror.Unauthorized(auth.UnauthorizedDetail)
	}

	acct, err := account.Build(draft, caller.Email, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("service/account: creating account for %s: %w", caller.Email, err)
	}

	s.metrics.AccountCreated(string(acct.Type))
	s.logger.Info("account created",
		slog.Int64("accountID", acct.ID),
		slog.String("type", string(acct.Type)),
		slog.String("owner", acct.CreatedBy),
	)
	return acct, nil
}

// ListByOwner returns the caller's accounts in creation order.
func (s *AccountService) ListByOwner(ctx context.Context, caller auth.Caller) ([]*model.Account, error) {
	if caller.Email == "" {
		return nil, apperror.Unauthorized(auth.UnauthorizedDetail)
	}

	accounts, err := s.accounts.ListByOwner(ctx, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("service/account: listing accounts for %s: %w", caller.Email, err)
	}
	return accounts, nil
}
