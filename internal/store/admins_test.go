package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
)

func TestCreateAndGetAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, err := CreateAdmin(ctx, database, "admin", "hash123")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", admin.Username)
	}

	got, err := GetAdminByUsername(ctx, database, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if got == nil || got.ID != admin.ID {
		t.Fatalf("expected admin %d, got %+v", admin.ID, got)
	}

	missing, err := GetAdminByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing admin")
	}
}

func TestDuplicateAdminRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateAdmin(ctx, database, "admin", "hash"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if _, err := CreateAdmin(ctx, database, "admin", "hash"); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestFirstAdminAndPasswordUpdate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	none, err := FirstAdmin(ctx, database)
	if err != nil {
		t.Fatalf("FirstAdmin: %v", err)
	}
	if none != nil {
		t.Fatal("expected no admin in empty database")
	}

	first, _ := CreateAdmin(ctx, database, "first", "oldhash")
	CreateAdmin(ctx, database, "second", "hash")

	got, _ := FirstAdmin(ctx, database)
	if got == nil || got.Username != "first" {
		t.Fatalf("expected first admin, got %+v", got)
	}

	ok, err := UpdateAdminPassword(ctx, database, first.ID, "newhash")
	if err != nil || !ok {
		t.Fatalf("UpdateAdminPassword: ok=%v err=%v", ok, err)
	}
	got, _ = GetAdmin(ctx, database, first.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}

	ok, _ = UpdateAdminPassword(ctx, database, 999, "hash")
	if ok {
		t.Error("expected false for missing admin")
	}
}
