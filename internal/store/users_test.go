package store

import (
	"context"
	"testing"

	"github.com/erazemk/prenos/internal/db"
	"github.com/erazemk/prenos/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "mojca", "hash123", model.RoleClerk)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleClerk {
		t.Errorf("expected role clerk, got %q", user.Role)
	}

	got, err := GetUserByUsername(ctx, database, "mojca")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user %d, got %+v", user.ID, got)
	}

	missing, err := GetUserByUsername(ctx, database, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "mojca", "old", model.RoleClerk)
	if err := UpdateUserPassword(ctx, database, user.ID, "new"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "new" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	database := db.NewTestDB(t)

	if _, err := CreateUser(context.Background(), database, "x", "h", "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}
