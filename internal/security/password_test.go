package security

import (
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	password := "correct horse battery staple"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == password {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !CheckPassword(password, hash) {
		t.Error("expected CheckPassword to accept the correct password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("expected CheckPassword to reject a wrong password")
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	h1, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("expected salted hashes to differ for the same password")
	}
}
