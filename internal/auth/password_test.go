package auth

import (
	"errors"
	"strings"
	"testing"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest()
}

// =========================================================================
// HASH TESTS
// =========================================================================

func TestHash_ProducesBcryptString(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("Hash() = %q, want bcrypt $2a$ prefix", hash)
	}
	if hash == "pw123" {
		t.Error("Hash() returned the plaintext")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	ps := newTestPasswordService()

	h1, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salt is not random")
	}
	if !ps.Verify(h1, "same-password") {
		t.Error("Verify(h1) = false, want true")
	}
	if !ps.Verify(h2, "same-password") {
		t.Error("Verify(h2) = false, want true")
	}
}

func TestHash_RejectsEmpty(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash("")
	if !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Hash(\"\") error = %v, want ErrEmptyPassword", err)
	}
}

func TestHash_RejectsTooLong(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash(strings.Repeat("a", 73))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Hash(73 bytes) error = %v, want ErrPasswordTooLong", err)
	}

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("Hash(72 bytes) error = %v, want nil", err)
	}
}

// =========================================================================
// VERIFY TESTS
// =========================================================================

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name      string
		hash      string
		plaintext string
		want      bool
	}{
		{"correct password", hash, "correct horse", true},
		{"wrong password", hash, "battery staple", false},
		{"empty plaintext", hash, "", false},
		{"empty hash", "", "correct horse", false},
		{"malformed hash", "not-a-bcrypt-hash", "correct horse", false},
		{"truncated hash", hash[:20], "correct horse", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ps.Verify(tt.hash, tt.plaintext); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewPasswordService_CostFallback(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{4, 4},
		{10, 10},
		{0, DefaultCost},
		{99, DefaultCost},
	}

	for _, tt := range tests {
		if got := NewPasswordService(tt.in).Cost(); got != tt.want {
			t.Errorf("NewPasswordService(%d).Cost() = %d, want %d", tt.in, got, tt.want)
		}
	}
}
