package users

import (
	"context"
	"errors"
	"testing"
)

func TestNewUserHashesPassword(t *testing.T) {
	u, err := NewUser(" admin ", "s3cret")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.ID == "" || u.Username != "admin" {
		t.Fatalf("unexpected user %+v", u)
	}
	if string(u.PasswordHash) == "s3cret" {
		t.Fatalf("password stored in clear")
	}
	if !u.CheckPassword("s3cret") {
		t.Fatalf("expected password to match")
	}
	if u.CheckPassword("wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestNewUserRequiresFields(t *testing.T) {
	if _, err := NewUser("", "x"); err == nil {
		t.Fatalf("expected error for empty username")
	}
	if _, err := NewUser("x", ""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestMemoryStoreLookups(t *testing.T) {
	u, err := NewUser("Alice", "pw")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	s := NewMemoryStore(u)
	ctx := context.Background()

	byName, err := s.ByUsername(ctx, "alice")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("ByUsername: %+v %v", byName, err)
	}
	if _, err := s.ByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.ByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.SetAPIKey(ctx, u.ID, "  key-123 "); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	got, _ := s.ByID(ctx, u.ID)
	if got.APIKey != "key-123" || !got.HasAPIKey() {
		t.Fatalf("expected trimmed api key, got %q", got.APIKey)
	}
	if err := s.SetAPIKey(ctx, "nope", "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
