package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"nextstep-backend/internal/users"
)

func TestProvisionUserMintsUUID(t *testing.T) {
	repo := users.NewMemoryRepo()
	svc := &GoogleService{users: users.NewService(repo)}

	user, err := svc.provisionUser(context.Background(), googleUserInfo{
		Sub: "1234567890", Email: "jane@example.test", Name: "Jane Doe",
	})
	if err != nil {
		t.Fatalf("provisionUser: %v", err)
	}
	if _, err := uuid.Parse(user.ID); err != nil {
		t.Fatalf("user id %q is not a UUID: %v", user.ID, err)
	}
	if user.AuthSubject != "google:1234567890" {
		t.Fatalf("auth subject = %q", user.AuthSubject)
	}
	if user.Username != "jane" || user.Role != users.RoleCandidate || !user.EmailOptIn {
		t.Fatalf("user = %+v", user)
	}

	stored, err := repo.GetByAuthSubject(context.Background(), "google:1234567890")
	if err != nil {
		t.Fatalf("GetByAuthSubject: %v", err)
	}
	if stored.ID != user.ID {
		t.Fatalf("stored id = %q, want %q", stored.ID, user.ID)
	}
}

func TestProvisionUserKeepsExistingIdentity(t *testing.T) {
	repo := users.NewMemoryRepo()
	svc := &GoogleService{users: users.NewService(repo)}

	first, err := svc.provisionUser(context.Background(), googleUserInfo{
		Sub: "1234567890", Email: "jane@example.test", Name: "Jane Doe",
	})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}

	// The user changed their role and opted out of mail in between.
	first.Role = users.RoleEmployer
	first.EmailOptIn = false
	if err := repo.Upsert(context.Background(), first); err != nil {
		t.Fatalf("update: %v", err)
	}

	second, err := svc.provisionUser(context.Background(), googleUserInfo{
		Sub: "1234567890", Email: "jane@example.test", Name: "Jane A. Doe",
	})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("id changed across logins: %q vs %q", second.ID, first.ID)
	}
	if second.Role != users.RoleEmployer || second.EmailOptIn {
		t.Fatalf("identity not preserved: %+v", second)
	}
	if second.FullName != "Jane A. Doe" {
		t.Fatalf("full name not refreshed: %q", second.FullName)
	}
}
