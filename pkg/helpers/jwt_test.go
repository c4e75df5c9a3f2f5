package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestJWT()
	tok, exp, err := m.IssueAccessToken("u1", "admin")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if d := time.Until(exp); d < 14*time.Minute || d > 15*time.Minute {
		t.Fatalf("expected ~15m expiry, got %v", d)
	}

	claims, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	m := newTestJWT()
	tok, exp, err := m.IssueRefreshToken("u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	if d := time.Until(exp); d < 7*24*time.Hour-time.Minute {
		t.Fatalf("expected ~1 week expiry, got %v", d)
	}
	claims, err := m.VerifyRefreshToken(tok)
	if err != nil {
		t.Fatalf("VerifyRefreshToken: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("expected u1, got %s", claims.UserID)
	}
}

func TestTokens_SameSecondDiffer(t *testing.T) {
	m := newTestJWT()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return fixed }

	a, _, _ := m.IssueRefreshToken("u1")
	b, _, _ := m.IssueRefreshToken("u1")
	if a == b {
		t.Fatal("two refresh tokens minted at the same instant must differ")
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	m := newTestJWT()
	access, _, _ := m.IssueAccessToken("u1", "user")
	refresh, _, _ := m.IssueRefreshToken("u1")

	if _, err := m.VerifyRefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must not verify as refresh token, got %v", err)
	}
	if _, err := m.VerifyAccessToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not verify as access token, got %v", err)
	}
}

func TestAccessToken_ExpiredWithValidSignature(t *testing.T) {
	m := newTestJWT()
	issued := time.Now().Add(-16 * time.Minute)
	m.Now = func() time.Time { return issued }
	tok, _, err := m.IssueAccessToken("u1", "user")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	m.Now = time.Now
	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := newTestJWT()
	if _, err := m.VerifyRefreshToken("garbage-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	m := newTestJWT()
	claims := &AccessClaims{UserID: "u1", Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	m := newTestJWT()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{UserID: "u1"}).SignedString(m.AccessSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without exp, got %v", err)
	}
}

func TestIssue_MissingSecret(t *testing.T) {
	m := NewJWTManager("", "", time.Minute, time.Hour)
	if _, _, err := m.IssueAccessToken("u1", "user"); !errors.Is(err, ErrSigning) {
		t.Fatalf("expected ErrSigning, got %v", err)
	}
	if _, _, err := m.IssueRefreshToken("u1"); !errors.Is(err, ErrSigning) {
		t.Fatalf("expected ErrSigning, got %v", err)
	}
}
