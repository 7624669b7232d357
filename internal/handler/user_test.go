package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/handler"
	"github.com/sakif/daily-real/internal/model"
	"github.com/sakif/daily-real/internal/service"
)

// mockAuth is a UserAuthenticator with canned answers.
type mockAuth struct {
	CapturedRegister service.RegisterInput
	RegisterUser     *model.User
	RegisterErr      error

	AuthUser *model.User
	AuthErr  error

	Token    string
	TokenErr error
}

func (m *mockAuth) Register(_ context.Context, in service.RegisterInput) (*model.User, error) {
	m.CapturedRegister = in
	return m.RegisterUser, m.RegisterErr
}

func (m *mockAuth) Authenticate(_ context.Context, _, _ string) (*model.User, error) {
	return m.AuthUser, m.AuthErr
}

func (m *mockAuth) IssueToken(_ *model.User) (string, error) {
	return m.Token, m.TokenErr
}

type errorBody struct {
	Error   string                `json:"error"`
	Details []apperror.FieldError `json:"details"`
}

func decodeFieldErrors(t *testing.T, rr *httptest.ResponseRecorder) []apperror.FieldError {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Validation failed", body.Error)
	return body.Details
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestUserHandler_HandleRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		m := &mockAuth{RegisterUser: &model.User{ID: 42, Email: "e@x.com", Name: "Name"}}
		h := handler.NewUserHandler(m, testLogger())

		rr := httptest.NewRecorder()
		h.HandleRegister(rr, postJSON("/user/register", `{"email":"e@x.com","name":"Name","password":"pw123"}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "/users/42", rr.Header().Get("Location"))
		assert.Empty(t, rr.Body.String())
		assert.Equal(t, service.RegisterInput{Email: "e@x.com", Name: "Name", Password: "pw123"}, m.CapturedRegister)
	})

	t.Run("duplicate email", func(t *testing.T) {
		m := &mockAuth{RegisterErr: apperror.Conflict("email", service.DuplicateEmailMessage)}
		h := handler.NewUserHandler(m, testLogger())

		rr := httptest.NewRecorder()
		h.HandleRegister(rr, postJSON("/user/register", `{"email":"e@x.com","name":"Name","password":"pw123"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"detail":"Email already registered"}`, rr.Body.String())
	})

	t.Run("shape errors", func(t *testing.T) {
		tests := []struct {
			name      string
			body      string
			wantField string
			wantType  string
			wantMsg   string
		}{
			{"missing email", `{"name":"N","password":"pw"}`, "email", "missing", "Field required"},
			{"bad email", `{"email":"nope","name":"N","password":"pw"}`, "email", "value_error", "value is not a valid email address"},
			{"long email", `{"email":"` + strings.Repeat("a", 120) + `@example.com","name":"N","password":"pw"}`, "email", "string_too_long", "String should have at most 128 characters"},
			{"missing password", `{"email":"e@x.com","name":"N"}`, "password", "missing", "Field required"},
			{"malformed json", `{"email":`, "body", "json_invalid", "JSON decode error"},
			{"wrong type", `{"email":42,"name":"N","password":"pw"}`, "email", "string_type", "Input should be a valid string"},
			{"empty body", ``, "body", "missing", "Field required"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := &mockAuth{}
				h := handler.NewUserHandler(m, testLogger())

				rr := httptest.NewRecorder()
				h.HandleRegister(rr, postJSON("/user/register", tt.body))

				require.Equal(t, http.StatusBadRequest, rr.Code)
				details := decodeFieldErrors(t, rr)
				require.NotEmpty(t, details)
				assert.Equal(t, tt.wantField, details[0].Field)
				assert.Equal(t, tt.wantType, details[0].Type)
				assert.Equal(t, tt.wantMsg, details[0].Message)
				assert.Empty(t, m.CapturedRegister.Email, "service must not be called")
			})
		}
	})

	t.Run("internal error hides cause", func(t *testing.T) {
		m := &mockAuth{RegisterErr: errBoom}
		h := handler.NewUserHandler(m, testLogger())

		rr := httptest.NewRecorder()
		h.HandleRegister(rr, postJSON("/user/register", `{"email":"e@x.com","name":"Name","password":"pw123"}`))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t,
			`{"error":"Internal Server Error","message":"An unexpected error occurred. Please try again later."}`,
			rr.Body.String())
		assert.NotContains(t, rr.Body.String(), "fire")
	})
}

func TestUserHandler_HandleToken(t *testing.T) {
	user := &model.User{ID: 1, Email: "e@x.com", Name: "Name"}

	t.Run("issued", func(t *testing.T) {
		m := &mockAuth{AuthUser: user, Token: "signed.jwt.value"}
		h := handler.NewUserHandler(m, testLogger())

		rr := httptest.NewRecorder()
		h.HandleToken(rr, postForm("/user/token", url.Values{"username": {"e@x.com"}, "password": {"pw123"}}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"access_token":"signed.jwt.value","token_type":"bearer"}`, rr.Body.String())
	})

	t.Run("bad credentials", func(t *testing.T) {
		m := &mockAuth{}
		h := handler.NewUserHandler(m, testLogger())

		rr := httptest.NewRecorder()
		h.HandleToken(rr, postForm("/user/token", url.Values{"username": {"e@x.com"}, "password": {"wrong"}}))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"detail":"Incorrect email or password"}`, rr.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		h := handler.NewUserHandler(&mockAuth{}, testLogger())

		rr := httptest.NewRecorder()
		h.HandleToken(rr, postForm("/user/token", url.Values{}))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		details := decodeFieldErrors(t, rr)
		require.Len(t, details, 2)
		assert.Equal(t, "username", details[0].Field)
		assert.Equal(t, "password", details[1].Field)
		assert.Equal(t, "missing", details[1].Type)
	})

	t.Run("lookup failure answers like bad credentials", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		h := handler.NewUserHandler(&mockAuth{AuthErr: errBoom}, logger)

		rr := httptest.NewRecorder()
		h.HandleToken(rr, postForm("/user/token", url.Values{"username": {"e@x.com"}, "password": {"pw"}}))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"detail":"Incorrect email or password"}`, rr.Body.String())
		assert.Contains(t, logs.String(), "credential lookup failed")
		assert.Contains(t, logs.String(), "database is on fire")
	})
}

func TestUserHandler_HandleProfile(t *testing.T) {
	h := handler.NewUserHandler(&mockAuth{}, testLogger())

	t.Run("caller present", func(t *testing.T) {
		req := withCaller(httptest.NewRequest(http.MethodGet, "/user/profile", nil), &auth.Caller{Email: "e@x.com", Name: "Name"})
		rr := httptest.NewRecorder()
		h.HandleProfile(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"email":"e@x.com","name":"Name"}`, rr.Body.String())
	})

	t.Run("no caller", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleProfile(rr, httptest.NewRequest(http.MethodGet, "/user/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})
}
