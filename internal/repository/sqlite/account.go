package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/samber/oops"

	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/repository"
)

var _ repository.AccountRepository = (*AccountStore)(nil)

// AccountStore persists accounts with their bank or credit detail rows.
type AccountStore struct {
	db *DB
}

// Create inserts a and its detail row in one transaction.
func (s *AccountStore) Create(ctx context.Context, a *model.Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var accountID, bankID, creditID int64
	err := s.db.withTx(ctx, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (name, type, created_by, created_at) VALUES (?, ?, ?, ?)`,
			a.Name, string(a.Type), a.CreatedBy, a.CreatedAt,
		)
		if err != nil {
			return err
		}
		if accountID, err = res.LastInsertId(); err != nil {
			return err
		}

		if b := a.BankDetail; b != nil {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO bank_details (account_id, agency, account_number, account_type)
				 VALUES (?, ?, ?, ?)`,
				accountID, b.Agency, b.AccountNumber, string(b.AccountType),
			)
			if err != nil {
				return err
			}
			if bankID, err = res.LastInsertId(); err != nil {
				return err
			}
		}

		if c := a.CreditDetails; c != nil {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO credit_details (account_id, last_four_digits, billing_cycle_day, due_day)
				 VALUES (?, ?, ?, ?)`,
				accountID, c.LastFourDigits, c.BillingCycleDay, c.DueDay,
			)
			if err != nil {
				return err
			}
			if creditID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("owner", a.CreatedBy).
			With("type", string(a.Type)).
			Wrapf(err, "sqlite: creating account")
	}

	// IDs are only handed out once the rows are committed.
	a.ID = accountID
	if b := a.BankDetail; b != nil {
		b.ID, b.AccountID = bankID, accountID
	}
	if c := a.CreditDetails; c != nil {
		c.ID, c.AccountID = creditID, accountID
	}
	return nil
}

const listByOwnerQuery = `
	SELECT a.id, a.name, a.type, a.created_by, a.created_at,
	       b.id, b.agency, b.account_number, b.account_type,
	       c.id, c.last_four_digits, c.billing_cycle_day, c.due_day
	FROM accounts a
	LEFT JOIN bank_details b ON b.account_id = a.id
	LEFT JOIN credit_details c ON c.account_id = a.id
	WHERE a.created_by = ?
	ORDER BY a.id`

// ListByOwner returns owner's accounts in creation order with details attached.
func (s *AccountStore) ListByOwner(ctx context.Context, owner string) ([]*model.Account, error) {
	rows, err := s.db.conn.QueryContext(ctx, listByOwnerQuery, owner)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("owner", owner).Wrapf(err, "sqlite: listing accounts")
	}
	defer rows.Close()

	accounts := make([]*model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").With("owner", owner).Wrapf(err, "sqlite: scanning account")
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("owner", owner).Wrapf(err, "sqlite: iterating accounts")
	}
	return accounts, nil
}

func scanAccount(rows *sql.Rows) (*model.Account, error) {
	var (
		a       model.Account
		typ     string
		bankID  sql.NullInt64
		agency  sql.NullString
		number  sql.NullString
		kind    sql.NullString
		credID  sql.NullInt64
		last4   sql.NullString
		billing sql.NullInt64
		due     sql.NullInt64
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
			BillingCycleDay: int(billing.Int64),
			DueDay:          int(due.Int64),
		}
	}
	return &a, nil
}
