package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/prepmood/internal/security/session"
)

func TestIssueParse_RoundTrip(t *testing.T) {
	m := session.NewManager("test-secret", "prepmood", time.Hour)

	raw, exp, err := m.Issue(42, "ana@example.com", true)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 55*time.Minute {
		t.Fatalf("expiry too close: %v", exp)
	}

	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin should round-trip as true")
	}
	if claims.Expires.Unix() != exp.Unix() {
		t.Errorf("Expires = %v, want %v", claims.Expires, exp)
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	issuer := session.NewManager("secret-a", "prepmood", time.Hour)
	verifier := session.NewManager("secret-b", "prepmood", time.Hour)

	raw, _, err := issuer.Issue(1, "x@example.com", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Parse(raw); !errors.Is(err, session.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_RejectsWrongIssuer(t *testing.T) {
	issuer := session.NewManager("secret", "other-service", time.Hour)
	verifier := session.NewManager("secret", "prepmood", time.Hour)

	raw, _, err := issuer.Issue(1, "x@example.com", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Parse(raw); !errors.Is(err, session.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_RejectsGarbage(t *testing.T) {
	m := session.NewManager("secret", "prepmood", time.Hour)
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Parse(raw); !errors.Is(err, session.ErrInvalidToken) {
			t.Errorf("Parse(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}
