package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/errutil"
	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/service"
)

// IncorrectCredentialsDetail is the 401 text for a failed password login.
const IncorrectCredentialsDetail = "Incorrect email or password"

// UserAuthenticator is the part of service.AuthService the user routes need.
type UserAuthenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	IssueToken(user *model.User) (string, error)
}

// UserHandler serves registration, password login and the caller's profile.
//
//   - HandleRegister -> POST /user/register
//   - HandleToken    -> POST /user/token
//   - HandleProfile  -> GET  /user/profile (behind auth.RequireBearer)
type UserHandler struct {
	auth   UserAuthenticator
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(authSvc UserAuthenticator, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: authSvc, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,max=128,email"`
	Name     string `json:"name" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=72"`
}

// TokenResponse is the OAuth2-style password grant answer.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ProfileResponse is the caller's identity as carried by the token.
type ProfileResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleRegister creates an identity.
//
// HTTP: POST /user/register
// REQUEST BODY: {"email": "...", "name": "...", "password": "..."}
// RESPONSE: 201 with Location /users/{id} and an empty body.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/users/"+strconv.FormatInt(user.ID, 10))
	w.WriteHeader(http.StatusCreated)
}

// HandleToken exchanges a form-encoded username (the email) and password
// for a bearer token.
//
// HTTP: POST /user/token
// REQUEST BODY: username=...&password=... (application/x-www-form-urlencoded)
func (h *UserHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, h.logger, apperror.InvalidFields([]apperror.FieldError{
			{Field: "body", Message: "Invalid form body", Type: "value_error"},
		}))
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	var missing []apperror.FieldError
	if username == "" {
		missing = append(missing, apperror.FieldError{Field: "username", Message: "Field required", Type: "missing"})
	}
	if password == "" {
		missing = append(missing, apperror.FieldError{Field: "password", Message: "Field required", Type: "missing"})
	}
	if len(missing) > 0 {
		writeError(w, h.logger, apperror.InvalidFields(missing))
		return
	}

	user, err := h.auth.Authenticate(r.Context(), username, password)
	if err != nil {
		// A failed lookup looks the same as bad credentials from outside.
		errutil.LogError(h.logger, "credential lookup failed", err, "username", username)
		auth.WriteUnauthorized(w, IncorrectCredentialsDetail)
		return
	}
	if user == nil {
		auth.WriteUnauthorized(w, IncorrectCredentialsDetail)
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// HandleProfile returns the caller resolved by the bearer middleware.
//
// HTTP: GET /user/profile
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w, auth.UnauthorizedDetail)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Email: caller.Email, Name: caller.Name})
}
