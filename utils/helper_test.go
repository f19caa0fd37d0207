package utils

import (
	"context"
	"testing"
)

func TestQuoteLockKey(t *testing.T) {
	if got := QuoteLockKey("abc-123"); got != "quote-version:abc-123" {
		t.Fatalf("lock key expected quote-version:abc-123, got %q", got)
	}
	if QuoteLockKey("a") == QuoteLockKey("b") {
		t.Fatalf("distinct quotes must get distinct lock keys")
	}
}

func TestObtainQuoteLock_RequiresRedis(t *testing.T) {
	// Redis is never connected in unit tests. The lock helper must refuse to
	// proceed rather than let version creation run unserialized.
	if _, err := ObtainQuoteLock(context.Background(), "q1", "utils", "TestObtainQuoteLock_RequiresRedis"); err == nil {
		t.Fatalf("expected an error when the redis lock client is not initialized")
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"06 12 34 56 78", "+33612345678"},
		{"+33 6 12 34 56 78", "+33612345678"},
		{"", ""},
		// Unparseable input passes through untouched.
		{"poste 42", "poste 42"},
	}
	for _, tc := range cases {
		if got := NormalizePhoneNumber(tc.in, CountryCode); got != tc.want {
			t.Fatalf("NormalizePhoneNumber(%q) expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
