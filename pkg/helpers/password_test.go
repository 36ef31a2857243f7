package helpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify_Success(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals plaintext")
	}
	if !h.Verify("secret123", hash) {
		t.Fatal("expected correct password to verify")
	}
	if h.Verify("wrongpass", hash) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHash_SaltVaries(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	h1, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ (random salt)")
	}
	if !h.Verify("secret123", h1) || !h.Verify("secret123", h2) {
		t.Fatal("both hashes must verify independently")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	for _, bad := range []string{"", "not-a-bcrypt-hash", "$2a$xx$garbage"} {
		if h.Verify("secret123", bad) {
			t.Fatalf("malformed hash %q must not verify", bad)
		}
	}
}

func TestNewHasher_CostClamped(t *testing.T) {
	t.Parallel()

	for _, cost := range []int{-1, 0, 100} {
		h := NewHasher(cost)
		if h.cost != bcrypt.DefaultCost {
			t.Fatalf("cost %d: expected fallback to default cost, got %d", cost, h.cost)
		}
	}

	h := NewHasher(12)
	if h.cost != 12 {
		t.Fatalf("expected cost 12, got %d", h.cost)
	}
}
