package model

import "time"

// AccountType tags which detail record an Account carries.
type AccountType string

const (
	AccountTypeBank       AccountType = "Bank"
	AccountTypeCreditCard AccountType = "CreditCard"
	AccountTypeCash       AccountType = "Cash"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCreditCard, AccountTypeCash:
		return true
	}
	return false
}

// BankAccountKind is the subtype of a bank account.
type BankAccountKind string

const (
	BankAccountChecking BankAccountKind = "Checking"
	BankAccountSavings  BankAccountKind = "Savings"
)

// Account is a financial account owned by one identity.
//
// CreatedBy holds the owner's email rather than a user id. At most one of
// BankDetail and CreditDetails is set, matching Type.
type Account struct {
	ID            int64
	Name          string
	Type          AccountType
	CreatedBy     string
	CreatedAt     time.Time
	BankDetail    *BankDetail
	CreditDetails *CreditDetails
}

type BankDetail struct {
	ID            int64
	AccountID     int64
	Agency        string
	AccountNumber string
	AccountType   BankAccountKind
}

type CreditDetails struct {
	ID              int64
	AccountID       int64
	LastFourDigits  string
	BillingCycleDay int
	DueDay          int
}
