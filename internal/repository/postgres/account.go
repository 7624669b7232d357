package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/oops"

	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/repository"
)

var _ repository.AccountRepository = (*AccountStore)(nil)

// AccountStore persists accounts in movement.accounts and their detail tables.
type AccountStore struct {
	pool poolIface
}

// Create inserts a and its detail row in one transaction.
func (s *AccountStore) Create(ctx context.Context, a *model.Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO movement.accounts (name, type, created_by, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, a.Name, string(a.Type), a.CreatedBy, a.CreatedAt).Scan(&id); err != nil {
			return err
		}

		if b := a.BankDetail; b != nil {
			if err := tx.QueryRow(ctx, `
				INSERT INTO movement.bank_details (account_id, agency, account_number, account_type)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, id, b.Agency, b.AccountNumber, string(b.AccountType)).Scan(&b.ID); err != nil {
				return err
			}
			b.AccountID = id
		}

		if c := a.CreditDetails; c != nil {
			if err := tx.QueryRow(ctx, `
				INSERT INTO movement.credit_details (account_id, last_four_digits, billing_cycle_day, due_day)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, id, c.LastFourDigits, c.BillingCycleDay, c.DueDay).Scan(&c.ID); err != nil {
				return err
			}
			c.AccountID = id
		}
		return nil
	})
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("owner", a.CreatedBy).
			With("type", string(a.Type)).
			Wrap(err)
	}

	a.ID = id
	return nil
}

// ListByOwner returns owner's accounts in creation order with details attached.
func (s *AccountStore) ListByOwner(ctx context.Context, owner string) ([]*model.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.name, a.type, a.created_by, a.created_at,
		       b.id, b.agency, b.account_number, b.account_type,
		       c.id, c.last_four_digits, c.billing_cycle_day, c.due_day
		FROM movement.accounts a
		LEFT JOIN movement.bank_details b ON b.account_id = a.id
		LEFT JOIN movement.credit_details c ON c.account_id = a.id
		WHERE a.created_by = $1
		ORDER BY a.id
	`, owner)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("owner", owner).Wrap(err)
	}
	defer rows.Close()

	accounts := make([]*model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").With("owner", owner).Wrap(err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("owner", owner).Wrap(err)
	}
	return accounts, nil
}

func scanAccount(rows pgx.Rows) (*model.Account, error) {
	var (
		a       model.Account
		typ     string
		bankID  pgtype.Int8
		agency  pgtype.Text
		number  pgtype.Text
		kind    pgtype.Text
		credID  pgtype.Int8
		last4   pgtype.Text
		billing pgtype.Int4
		due     pgtype.Int4
	)
	if err := rows.Scan(
		&a.ID, &a.Name, &typ, &a.CreatedBy, &a.CreatedAt,
		&bankID, &agency, &number, &kind,
		&credID, &last4, &billing, &due,
	); err != nil {
		return nil, err
	}
	a.Type = model.AccountType(typ)

	if bankID.Valid {
		a.BankDetail = &model.BankDetail{
			ID:            bankID.Int64,
			AccountID:     a.ID,
			Agency:        agency.String,
			AccountNumber: number.String,
			AccountType:   model.BankAccountKind(kind.String),
		}
	}
	if credID.Valid {
		a.CreditDetails = &model.CreditDetails{
			ID:              credID.Int64,
			AccountID:       a.ID,
			LastFourDigits:  last4.String,
			BillingCycleDay: int(billing.Int32),
			DueDay:          int(due.Int32),
		}
	}
	return &a, nil
}
