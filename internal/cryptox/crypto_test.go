package cryptox

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	ok, err := CheckPassword(hash, []byte("admin123"))
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = CheckPassword(hash, []byte("wrong"))
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got ok=%v err=%v", ok, err)
	}
}

func TestHashPassword_SaltsEveryCall(t *testing.T) {
	a, _ := HashPassword([]byte("secret"), bcrypt.MinCost)
	b, _ := HashPassword([]byte("secret"), bcrypt.MinCost)
	if a == b {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword([]byte("secret"), 99)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost error: %v", err)
	}
	if cost != DefaultCost {
		t.Fatalf("want cost %d, got %d", DefaultCost, cost)
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if _, err := CheckPassword("not-a-hash", []byte("x")); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}
