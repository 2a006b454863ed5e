package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret123", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret123" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "secret123") {
		t.Fatalf("expected correct password to verify")
	}
	if VerifyPassword(hash, "secret124") {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	t.Parallel()

	// A malformed digest must report false, never panic or error out.
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatalf("expected garbage hash to fail verification")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password should differ by salt")
	}
}
