package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/daily-real/internal/account"
	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/model"
)

// AccountManager is the part of service.AccountService the account routes need.
type AccountManager interface {
	Create(ctx context.Context, caller auth.Caller, draft account.Draft) (*model.Account, error)
	ListByOwner(ctx context.Context, caller auth.Caller) ([]*model.Account, error)
}

// AccountHandler serves the caller's accounts. Both routes sit behind
// auth.RequireBearer.
type AccountHandler struct {
	accounts AccountManager
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts AccountManager, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

type bankDetailRequest struct {
	Agency        string `json:"agency" validate:"required,max=10"`
	AccountNumber string `json:"account_number" validate:"required,max=20"`
	AccountType   string `json:"account_type" validate:"required,oneof=Checking Savings"`
}

type creditDetailsRequest struct {
	LastFourDigits  string `json:"last_four_digits" validate:"required,lastfour"`
	BillingCycleDay *int   `json:"billing_cycle_day" validate:"required,min=1,max=30"`
	DueDay          *int   `json:"due_day" validate:"required,min=1,max=30"`
}

type createAccountRequest struct {
	Name          string                `json:"name" validate:"required,max=32"`
	CreditDetails *creditDetailsRequest `json:"credit_details" validate:"omitempty"`
	BankDetail    *bankDetailRequest    `json:"bank_detail" validate:"omitempty"`
}

func (req createAccountRequest) draft() account.Draft {
	d := account.Draft{Name: req.Name}
	if b := req.BankDetail; b != nil {
		d.Bank = &account.BankInput{
			Agency:        b.Agency,
			AccountNumber: b.AccountNumber,
			AccountType:   b.AccountType,
		}
	}
	if c := req.CreditDetails; c != nil {
		d.Credit = &account.CreditInput{
			LastFourDigits:  c.LastFourDigits,
			BillingCycleDay: *c.BillingCycleDay,
			DueDay:          *c.DueDay,
		}
	}
	return d
}

// BankDetailResponse is the bank detail of an account.
type BankDetailResponse struct {
	Agency        string `json:"agency"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
}

// CreditDetailsResponse is the credit card detail of an account.
type CreditDetailsResponse struct {
	LastFourDigits  string `json:"last_four_digits"`
	BillingCycleDay int    `json:"billing_cycle_day"`
	DueDay          int    `json:"due_day"`
}

// AccountResponse is one account as returned by GET /account/.
// Exactly one of the detail objects is non-null for Bank and CreditCard.
type AccountResponse struct {
	ID            int64                  `json:"id"`
	Name          string                 `json:"name"`
	Type          string                 `json:"type"`
	CreatedBy     string                 `json:"created_by"`
	CreatedAt     string                 `json:"created_at"`
	CreditDetails *CreditDetailsResponse `json:"credit_details"`
	BankDetail    *BankDetailResponse    `json:"bank_detail"`
}

func newAccountResponse(a *model.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b := a.BankDetail; b != nil {
		resp.BankDetail = &BankDetailResponse{
			Agency:        b.Agency,
			AccountNumber: b.AccountNumber,
			AccountType:   string(b.AccountType),
		}
	}
	if c := a.CreditDetails; c != nil {
		resp.CreditDetails = &CreditDetailsResponse{
			LastFourDigits:  c.LastFourDigits,
			BillingCycleDay: c.BillingCycleDay,
			DueDay:          c.DueDay,
		}
	}
	return resp
}

// HandleCreate registers an account for the caller.
//
// HTTP: POST /account/
// REQUEST BODY: {"name": "...", "credit_details": {...}} or {"name": "...", "bank_detail": {...}}
// RESPONSE: 201 with Location /accounts/{id} and an empty body.
//
// Field shapes are checked here; which detail combination is allowed is
// decided by account.Build inside the service.
func (h *AccountHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w, auth.UnauthorizedDetail)
		return
	}

	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	acct, err := h.accounts.Create(r.Context(), *caller, req.draft())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/accounts/"+strconv.FormatInt(acct.ID, 10))
	w.WriteHeader(http.StatusCreated)
}

// HandleList returns the caller's accounts in creation order.
//
// HTTP: GET /account/
func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w, auth.UnauthorizedDetail)
		return
	}

	accounts, err := h.accounts.ListByOwner(r.Context(), *caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, newAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}
