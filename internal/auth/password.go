package auth

// bcrypt output is self-describing:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// The salt is random per call and embedded in the output, so hashing the
// same password twice yields two different strings that both verify.

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used outside tests.
const DefaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer input would be truncated silently.
const maxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("auth: password must not be empty")
	ErrPasswordTooLong = fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
)

// PasswordService provides bcrypt hashing and verification.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost.
// Costs outside bcrypt's accepted range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's minimum
// cost. Other packages' tests use it to keep hashing fast.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Cost returns the configured work factor.
func (p *PasswordService) Cost() int {
	return p.cost
}

// Hash hashes plaintext with a fresh salt.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash.
//
// Any failure is a non-match: a wrong password, an empty hash, or a stored
// value that is not a bcrypt hash at all. The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
