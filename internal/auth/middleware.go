package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Caller is the identity resolved from a verified bearer token.
type Caller struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CallerResolver turns a raw bearer token into a Caller.
type CallerResolver interface {
	ResolveCaller(token string) (*Caller, error)
}

// contextKey is unexported so only this package can set or read the caller.
type contextKey string

const callerKey contextKey = "caller"

// ChallengeHeader is sent with every 401 response.
const ChallengeHeader = "Bearer"

// UnauthorizedDetail is the client-facing message for any token failure.
const UnauthorizedDetail = "Could not validate credentials"

// RequireBearer rejects requests without a valid "Authorization: Bearer"
// token. On success the resolved Caller is stored in the request context
// for handlers to read with CallerFromContext.
//
// The response for a missing, malformed, expired or forged token is the
// same 401, so clients cannot tell which check failed.
func RequireBearer(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				WriteUnauthorized(w, UnauthorizedDetail)
				return
			}

			caller, err := resolver.ResolveCaller(token)
			if err != nil || caller == nil {
				WriteUnauthorized(w, UnauthorizedDetail)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFromContext returns the caller stored by RequireBearer.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey).(*Caller)
	return c, ok && c != nil && c.Email != ""
}

// BearerToken extracts the token from the Authorization header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WriteUnauthorized sends a 401 with the Bearer challenge and a
// {"detail": ...} body.
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", ChallengeHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
