package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
	redrepo "github.com/MwahCodes/dates-and-debates/internal/repo/redis"
	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
)

type userStoreStub struct {
	byEmail map[string]pgrepo.UserRecord
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{byEmail: map[string]pgrepo.UserRecord{}}
}

func (s *userStoreStub) Create(_ context.Context, email, passwordHash, name string) (pgrepo.UserRecord, error) {
	if _, ok := s.byEmail[email]; ok {
		return pgrepo.UserRecord{}, pgrepo.ErrEmailTaken
	}
	record := pgrepo.UserRecord{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
	}
	s.byEmail[email] = record
	return record, nil
}

func (s *userStoreStub) GetByEmail(_ context.Context, email string) (pgrepo.UserRecord, error) {
	record, ok := s.byEmail[email]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return record, nil
}

func newTestService(t *testing.T) (*authsvc.Service, *userStoreStub) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := newUserStoreStub()
	svc := authsvc.NewService(authsvc.Dependencies{
		JWT:      authsvc.NewJWTManager("test-secret", 15*time.Minute),
		Users:    users,
		Sessions: redrepo.NewSessionRepo(client),
	}, 30*24*time.Hour)

	return svc, users
}

func TestSignupIssuesTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Signup(ctx, "Alice@Example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result)
	}
	if result.Me.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", result.Me.Email)
	}
	if result.Me.ID == uuid.Nil || result.Me.Name != "Alice" {
		t.Fatalf("unexpected identity: %+v", result.Me)
	}

	claims, err := svc.ValidateAccessToken(ctx, result.AccessToken)
	if err != nil {
		t.Fatalf("validate fresh access token: %v", err)
	}
	if claims.UserID != result.Me.ID {
		t.Fatalf("claims user mismatch: got %s want %s", claims.UserID, result.Me.ID)
	}
}

func TestSignupRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		userName string
	}{
		{"bad email", "not-an-email", "password123", "Alice"},
		{"short password", "alice@example.com", "short", "Alice"},
		{"empty name", "alice@example.com", "password123", "  "},
	}
	for _, tc := range cases {
		if _, err := svc.Signup(ctx, tc.email, tc.password, tc.userName); !errors.Is(err, authsvc.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "ALICE@example.com", "password456", "Alice2"); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	result, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected tokens on login")
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, signup.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == signup.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if refreshed.Me.ID != signup.Me.ID {
		t.Fatalf("refresh changed user: got %s want %s", refreshed.Me.ID, signup.Me.ID)
	}

	// The old token is dead after rotation.
	if _, err := svc.Refresh(ctx, signup.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for stale refresh token, got %v", err)
	}

	if _, err := svc.Refresh(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestLogoutInvalidatesAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, signup.AccessToken)
	if err != nil {
		t.Fatalf("validate before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, signup.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestLogoutAllInvalidatesEverySession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	login, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.LogoutAll(ctx, signup.Me.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, signup.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected first session to be gone, got %v", err)
	}
	if _, err := svc.ValidateAccessToken(ctx, login.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected second session to be gone, got %v", err)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected refresh token to be gone, got %v", err)
	}
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ValidateAccessToken(context.Background(), "not-a-jwt"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
