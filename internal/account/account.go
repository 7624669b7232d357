// Package account builds Account records from caller input.
//
// Build is the only way the service creates an account. It is a pure
// function: it reads no store, no clock, and no configuration, and either
// returns a fully consistent *model.Account or an apperror domain error.
//
// DECISION TABLE:
//
//	bank only    -> Bank,       bank fields checked
//	credit only  -> CreditCard, credit fields checked
//	both         -> rejected
//	neither      -> rejected
//
// The account type is always derived from the detail that is present, so a
// type/detail mismatch cannot be expressed.
package account

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/model"
)

const (
	MaxNameLength          = 32
	MaxAgencyLength        = 10
	MaxAccountNumberLength = 20
	MinDay                 = 1
	MaxDay                 = 30
)

const (
	msgNoDetail   = "Must provide either credit details or bank details for account configuration"
	msgBothDetail = "Must provide exactly one of credit details or bank details"
)

var lastFourPattern = regexp.MustCompile(`^[0-9]{4}$`)

// BankInput is the caller-supplied bank detail.
type BankInput struct {
	Agency        string
	AccountNumber string
	AccountType   string
}

// CreditInput is the caller-supplied credit card detail.
type CreditInput struct {
	LastFourDigits  string
	BillingCycleDay int
	DueDay          int
}

// Draft is everything a caller can say about a new account.
type Draft struct {
	Name   string
	Bank   *BankInput
	Credit *CreditInput
}

// Build validates d and returns the account owned by owner, stamped with now.
// ID fields are left zero for the store to assign.
func Build(d Draft, owner string, now time.Time) (*model.Account, error) {
	if err := ValidateName(d.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(owner) == "" {
		return nil, apperror.Domain("created_by: must not be empty")
	}

	acct := &model.Account{
		Name:      d.Name,
		CreatedBy: owner,
		CreatedAt: now,
	}

	switch {
	case d.Bank != nil && d.Credit != nil:
		return nil, apperror.Domain(msgBothDetail)

	case d.Bank != nil:
		detail, err := ValidateBank(*d.Bank)
		if err != nil {
			return nil, err
		}
		acct.Type = model.AccountTypeBank
		acct.BankDetail = detail

	case d.Credit != nil:
		detail, err := ValidateCredit(*d.Credit)
		if err != nil {
			return nil, err
		}
		acct.Type = model.AccountTypeCreditCard
		acct.CreditDetails = detail

	default:
		return nil, apperror.Domain(msgNoDetail)
	}

	return acct, nil
}

// ValidateName checks the account name is present and at most MaxNameLength characters.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.Domain("name: must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return apperror.Domainf("name: string should have at most %d characters", MaxNameLength)
	}
	return nil
}

// ValidateBank checks a bank detail and converts it to its stored form.
func ValidateBank(b BankInput) (*model.BankDetail, error) {
	if err := requireBounded("bank_detail.agency", b.Agency, MaxAgencyLength); err != nil {
		return nil, err
	}
	if err := requireBounded("bank_detail.account_number", b.AccountNumber, MaxAccountNumberLength); err != nil {
		return nil, err
	}

	kind := model.BankAccountKind(b.AccountType)
	switch kind {
	case model.BankAccountChecking, model.BankAccountSavings:
	case "":
		return nil, apperror.Domain("bank_detail.account_type: must not be empty")
	default:
		return nil, apperror.Domain("bank_detail.account_type: input should be 'Checking' or 'Savings'")
	}

	return &model.BankDetail{
		Agency:        b.Agency,
		AccountNumber: b.AccountNumber,
		AccountType:   kind,
	}, nil
}

// ValidateCredit checks a credit card detail and converts it to its stored form.
func ValidateCredit(c CreditInput) (*model.CreditDetails, error) {
	if !lastFourPattern.MatchString(c.LastFourDigits) {
		return nil, apperror.Domain("credit_details.last_four_digits: must be exactly 4 digits")
	}
	if err := checkDay("credit_details.billing_cycle_day", c.BillingCycleDay); err != nil {
		return nil, err
	}
	if err := checkDay("credit_details.due_day", c.DueDay); err != nil {
		return nil, err
	}

	return &model.CreditDetails{
		LastFourDigits:  c.LastFourDigits,
		BillingCycleDay: c.BillingCycleDay,
		DueDay:          c.DueDay,
	}, nil
}

func requireBounded(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Domainf("%s: must not be empty", field)
	}
	if utf8.RuneCountInString(value) > max {
		return apperror.Domainf("%s: string should have at most %d characters", field, max)
	}
	return nil
}

func checkDay(field string, day int) error {
	if day < MinDay {
		return apperror.Domainf("%s: input should be greater than or equal to %d", field, MinDay)
	}
	if day > MaxDay {
		return apperror.Domainf("%s: input should be less than or equal to %d", field, MaxDay)
	}
	return nil
}
