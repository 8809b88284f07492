package auth

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignJWT(Claims{
		Username: "alice",
		Role:     "CANDIDATE",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject: "user-1",
		},
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "alice" || claims.Role != "CANDIDATE" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	past := time.Now().UTC().Add(-2 * time.Hour)
	token, err := SignJWT(Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwtlib.NewNumericDate(past),
			ExpiresAt: jwtlib.NewNumericDate(past.Add(time.Hour)),
		},
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignJWT(Claims{RegisteredClaims: jwtlib.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT(token + "x"); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestVerifyRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := VerifyJWT("anything"); err == nil {
		t.Fatalf("expected error without configured secret")
	}
}
