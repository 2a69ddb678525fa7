package store

import (
	"testing"

	"github.com/nholt/grocerly/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice", "not-a-real-hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("username = %q, want %q", u.Username, "alice")
	}
	if u.PasswordHash != "not-a-real-hash" {
		t.Errorf("password_hash = %q, want %q", u.PasswordHash, "not-a-real-hash")
	}
	if u.ID == 0 {
		t.Error("expected non-zero ID")
	}
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", "h1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("alice", "h2"); err == nil {
		t.Fatal("expected error for duplicate username, got nil")
	}
}

func TestUserGetByID(t *testing.T) {
	us := setupUserTestDB(t)

	created, err := us.Create("alice", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("username = %q, want %q", u.Username, "alice")
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserGetByUsername(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByUsername("alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := us.GetByUsername("nobody")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown username")
	}
}

func TestUsernameExists(t *testing.T) {
	us := setupUserTestDB(t)

	exists, err := us.UsernameExists("alice")
	if err != nil {
		t.Fatalf("username exists: %v", err)
	}
	if exists {
		t.Error("expected false before create")
	}

	if _, err := us.Create("alice", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	exists, err = us.UsernameExists("alice")
	if err != nil {
		t.Fatalf("username exists: %v", err)
	}
	if !exists {
		t.Error("expected true after create")
	}
}
