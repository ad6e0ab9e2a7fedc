package auth

import (
	"testing"
	"time"
)

func TestLoginVerifyRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	user, token, err := m.Login("dr.jones@university.edu", "Dr. Jones")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatal("Login returned empty token")
	}

	verified, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if verified.ID != user.ID {
		t.Errorf("ID = %q, want %q", verified.ID, user.ID)
	}
	if verified.Email != "dr.jones@university.edu" {
		t.Errorf("Email = %q", verified.Email)
	}
	if verified.Name != "Dr. Jones" {
		t.Errorf("Name = %q", verified.Name)
	}
}

func TestLoginDerivesNameFromEmail(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	user, _, err := m.Login("jones@university.edu", "")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.Name != "jones" {
		t.Errorf("Name = %q, want jones", user.Name)
	}
}

func TestLoginRequiresEmail(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, _, err := m.Login("  ", "Someone"); err == nil {
		t.Error("login without an email should fail")
	}
}

func TestUserIDStable(t *testing.T) {
	a := UserID("Dr.Jones@University.edu")
	b := UserID("dr.jones@university.edu ")
	if a != b {
		t.Errorf("user id must be stable across case and whitespace: %q vs %q", a, b)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	_, token, err := issuer.Login("x@y.z", "X")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	_, token, err := m.Login("x@y.z", "X")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, err := m.Verify("not-a-token"); err == nil {
		t.Error("garbage token should be rejected")
	}
}
