package auth

import (
	"errors"
	"strings"
	"testing"
)

// bcryptMinCost keeps hashing fast in tests; bcrypt clamps anything lower.
const bcryptMinCost = 4

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPasswordWithCost("test-password-123", bcryptMinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("hash = %q, want bcrypt format", hash)
	}

	if !VerifyPassword("test-password-123", hash) {
		t.Error("VerifyPassword() = false for the correct password")
	}
	if VerifyPassword("test-password-124", hash) {
		t.Error("VerifyPassword() = true for a wrong password")
	}
	if VerifyPassword("", hash) {
		t.Error("VerifyPassword() = true for an empty password")
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPasswordWithCost("same-password", bcryptMinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost() error = %v", err)
	}
	second, err := HashPasswordWithCost("same-password", bcryptMinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password are equal, salt missing")
	}
	if !VerifyPassword("same-password", first) || !VerifyPassword("same-password", second) {
		t.Error("VerifyPassword() rejected a salted hash of the right password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plain text", "not-a-hash"},
		{"truncated prefix", "$2a$"},
		{"wrong algorithm", "$1a$10$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPassword("password", tt.hash) {
				t.Errorf("VerifyPassword(%q) = true, want false", tt.hash)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"typical", "securepassword123", nil},
		{"exactly 8", "12345678", nil},
		{"exactly 72", strings.Repeat("a", 72), nil},
		{"7 chars", "1234567", ErrPasswordTooShort},
		{"empty", "", ErrPasswordTooShort},
		{"73 chars", strings.Repeat("a", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashPasswordRejectsInvalid(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("HashPassword(short) error = %v, want ErrPasswordTooShort", err)
	}
	if _, err := HashPassword(strings.Repeat("x", 80)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("HashPassword(80 chars) error = %v, want ErrPasswordTooLong", err)
	}
}
