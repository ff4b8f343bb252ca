package supabase

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestLocalVerifierValidToken(t *testing.T) {
	v := NewLocalVerifier(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-123",
		"email": "owner@acme.test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity, got nil")
	}
	if identity.ID != "user-123" {
		t.Errorf("expected id user-123, got %s", identity.ID)
	}
	if identity.Email != "owner@acme.test" {
		t.Errorf("expected email owner@acme.test, got %s", identity.Email)
	}
}

func TestLocalVerifierExpiredToken(t *testing.T) {
	v := NewLocalVerifier(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	identity, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity != nil {
		t.Fatal("expired token should not resolve to an identity")
	}
}

func TestLocalVerifierWrongSecret(t *testing.T) {
	v := NewLocalVerifier(testSecret)

	token := signToken(t, "some-other-secret-that-is-long-enough-too", jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	identity, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity != nil {
		t.Fatal("badly signed token should not resolve to an identity")
	}
}

func TestLocalVerifierGarbage(t *testing.T) {
	v := NewLocalVerifier(testSecret)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		identity, err := v.Verify(context.Background(), token)
		if err != nil {
			t.Fatalf("token %q: unexpected error: %v", token, err)
		}
		if identity != nil {
			t.Fatalf("token %q should not resolve to an identity", token)
		}
	}
}

func TestLocalVerifierMissingSubject(t *testing.T) {
	v := NewLocalVerifier(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"email": "owner@acme.test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity != nil {
		t.Fatal("token without sub should not resolve to an identity")
	}
}
