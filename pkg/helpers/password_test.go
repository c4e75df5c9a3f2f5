package helpers

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("p")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "p" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CompareHashAndPassword(hash, "p") {
		t.Fatal("expected match")
	}
	if CompareHashAndPassword(hash, "q") {
		t.Fatal("expected mismatch")
	}
	if CompareHashAndPassword("not-a-hash", "p") {
		t.Fatal("malformed hash must not match")
	}
}
