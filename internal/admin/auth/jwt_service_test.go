package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{Secret: testSecret, Issuer: "test"})
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}
	return svc
}

func TestNewJWTService_SecretTooShort(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Secret: "short"})
	if !errors.Is(err, ErrInvalidSecretLength) {
		t.Errorf("expected ErrInvalidSecretLength, got %v", err)
	}
}

func TestNewJWTService_Defaults(t *testing.T) {
	svc := newTestService(t)

	if svc.GetAccessTokenDuration() != 15*time.Minute {
		t.Errorf("expected default access duration 15m, got %v", svc.GetAccessTokenDuration())
	}
	if svc.GetRefreshTokenDuration() != 7*24*time.Hour {
		t.Errorf("expected default refresh duration 168h, got %v", svc.GetRefreshTokenDuration())
	}
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.GenerateTokenPair("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected non-empty tokens")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens should differ")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("expected token type Bearer, got %q", pair.TokenType)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expected expires_in 900, got %d", pair.ExpiresIn)
	}
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.GenerateTokenPair("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username admin, got %q", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role admin, got %q", claims.Role)
	}
	if !claims.IsAccessToken() {
		t.Error("expected access token claims")
	}

	refreshClaims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefreshToken failed: %v", err)
	}
	if !refreshClaims.IsRefreshToken() {
		t.Error("expected refresh token claims")
	}
}

func TestValidateToken_WrongType(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.GenerateTokenPair("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	// Refresh token is not valid as an access token and vice versa.
	if _, err := svc.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("expected ErrInvalidTokenType for refresh-as-access, got %v", err)
	}
	if _, err := svc.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("expected ErrInvalidTokenType for access-as-refresh, got %v", err)
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}

	// A token signed with a different secret must be rejected.
	other, err := NewJWTService(JWTConfig{Secret: "another-secret-key-also-32-characters-xx"})
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}
	pair, err := other.GenerateTokenPair("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	if _, err := svc.ValidateToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{
		Secret:              testSecret,
		AccessTokenDuration: -1 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}

	pair, err := svc.GenerateTokenPair("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	if _, err := svc.ValidateToken(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenPair_IsJWT(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.GenerateTokenPair("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	// Header.payload.signature shape.
	if got := strings.Count(pair.AccessToken, "."); got != 2 {
		t.Errorf("expected 2 dots in JWT, got %d", got)
	}
}
