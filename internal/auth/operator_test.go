package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/config"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
	}
}

func TestSignParseRoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(testConfig())

	op := Operator{ID: "op-1", Name: "Gate A", Role: "scanner"}

	tokenStr, err := tm.Sign(op)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := tm.Parse(tokenStr)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != op {
		t.Errorf("parsed operator = %+v, want %+v", parsed, op)
	}
}

func TestParseEmptyToken(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(testConfig())

	if _, err := tm.Parse(""); !errors.Is(err, ErrTokenEmpty) {
		t.Errorf("got %v, want ErrTokenEmpty", err)
	}
}

func TestParseGarbageToken(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(testConfig())

	if _, err := tm.Parse("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("got %v, want ErrTokenInvalid", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewTokenManager(config.JWTConfig{Secret: "signer-secret", Expiry: time.Hour})
	verifier := NewTokenManager(config.JWTConfig{Secret: "other-secret", Expiry: time.Hour})

	tokenStr, err := signer.Sign(Operator{ID: "op-1"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := verifier.Parse(tokenStr); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("got %v, want ErrTokenInvalid", err)
	}
}

func TestParseExpiredToken(t *testing.T) {
	t.Parallel()

	// A negative expiry produces an already-expired token.
	tm := NewTokenManager(config.JWTConfig{Secret: "test-secret", Expiry: -time.Hour})

	tokenStr, err := tm.Sign(Operator{ID: "op-1"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tm.Parse(tokenStr); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("got %v, want ErrTokenInvalid", err)
	}
}

func TestParseMissingSubject(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(testConfig())

	tokenStr, err := tm.Sign(Operator{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tm.Parse(tokenStr); !errors.Is(err, ErrTokenInvalidClaims) {
		t.Errorf("got %v, want ErrTokenInvalidClaims", err)
	}
}
