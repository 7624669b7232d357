// Package auth issues and verifies bearer tokens, hashes passwords, and
// carries the authenticated caller through a request.
//
// TOKEN FORMAT:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:  {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<email>","name":"<display name>","iat":...,"exp":...,"jti":"<xid>"}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
//
// Tokens are stateless. A token stays valid until exp even if the identity
// behind it changes; the short lifetime bounds that window.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 2 * time.Minute

const minSecretLength = 16

// ErrInvalidToken is returned for every verification failure: bad signature,
// wrong algorithm, malformed input, expiry, or a missing subject.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the identity carried inside a token.
type Claims struct {
	Subject string // the identity's email
	Name    string // display name at issue time
}

// tokenClaims is the JWT payload.
type tokenClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens with one process-wide secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters and ttl must be positive.
func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: signing secret must be at least %d characters", minSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}

	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime given to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for c that expires ttl from now.
func (s *TokenService) Issue(c Claims) (string, error) {
	if c.Subject == "" {
		return "", errors.New("auth: token subject must not be empty")
	}

	now := s.now()
	payload := tokenClaims{
		Name: c.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        xid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and returns its claims.
//
// Only HS256 is accepted, so a token declaring "none" or an RSA algorithm
// is rejected before the signature is looked at.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return &Claims{Subject: c.Subject, Name: c.Name}, nil
}
