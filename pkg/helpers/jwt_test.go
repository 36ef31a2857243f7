package helpers

import (
	"testing"
	"time"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("super-secret", time.Hour)
	userID := "user-123"

	tok, exp, err := m.Generate(userID)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", exp)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("uid mismatch: got %q want %q", claims.UserID, userID)
	}
	if claims.Subject != userID {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, userID)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", -1*time.Second)

	tok, _, err := m.Generate("u1")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewJWTManager("right-secret", time.Hour)
	verifier := NewJWTManager("wrong-secret", time.Hour)

	tok, _, err := issuer.Generate("u2")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := verifier.Parse(tok); err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("k", time.Hour)
	if _, err := m.Parse("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}
