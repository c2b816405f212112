package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func fixedService(secret string, ttl time.Duration, now time.Time) *HMACService {
	s := NewHMACService(secret, ttl)
	s.now = func() time.Time { return now }
	return s
}

func TestHMACService_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := fixedService("secret", 15*time.Minute, now)

	tok, err := s.GenerateAccessToken("u-001", "hana@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	c, err := s.ValidateAccessToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Email != "hana@example.com" || c.Subject != "u-001" || c.TokenType != TokenTypeAccess {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestHMACService_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := fixedService("secret", time.Minute, now)

	tok, err := s.GenerateAccessToken("", "hana@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := s.ValidateAccessToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_Invalid(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := fixedService("secret", time.Minute, now)
	other := fixedService("other", time.Minute, now)

	tok, err := other.GenerateAccessToken("", "hana@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := s.ValidateAccessToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong secret: expected ErrTokenInvalid, got %v", err)
	}

	if _, err := s.ValidateAccessToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage: expected ErrTokenInvalid, got %v", err)
	}

	// Signed with the right key but missing the email claim.
	raw := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Minute)),
		},
	})
	signed, err := raw.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.ValidateAccessToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("no email: expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACService_GenerateRequiresConfig(t *testing.T) {
	if _, err := NewHMACService("", time.Minute).GenerateAccessToken("", "a@b.c"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without secret, got %v", err)
	}
	if _, err := NewHMACService("s", time.Minute).GenerateAccessToken("", " "); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without email, got %v", err)
	}
}
