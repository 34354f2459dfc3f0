package identity

import (
	"context"
	"testing"
	"time"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), "test-secret", 15*time.Minute)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected user id")
	}

	logged, token, err := svc.Login(ctx, Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result: %+v", logged)
	}

	verified, err := svc.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.ID != user.ID {
		t.Fatalf("token resolved to wrong user: %s", verified.ID)
	}
}

func TestLoginWrongPassphrase(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, Credentials{Address: "trader@example.com", Passphrase: "wrong passphrase"}); err != ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestRegisterShortPassphrase(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Register(context.Background(), Credentials{Address: "a@b.c", Passphrase: "short"}); err == nil {
		t.Fatalf("expected passphrase length error")
	}
}

func TestRegisterDuplicateAddress(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, Credentials{Address: "trader@example.com", Passphrase: "another passphrase"}); err != ErrAddressTaken {
		t.Fatalf("expected address taken, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, "test-secret", -time.Minute)
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(ctx, Credentials{Address: "trader@example.com", Passphrase: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Verify(ctx, token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
