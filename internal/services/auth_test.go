package services

import (
	"errors"
	"testing"
	"time"

	"github.com/aniscentsapp/aniscents/internal/db"
)

func newTestAuthService(now time.Time) *AuthService {
	return &AuthService{
		users:     &db.UserStore{},
		secretKey: []byte("0123456789abcdef0123456789abcdef"),
		now:       func() time.Time { return now },
	}
}

func TestAuthService_ResetTokenRoundTrip(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service := newTestAuthService(issued)

	token, err := service.newResetToken(42)
	if err != nil {
		t.Fatalf("newResetToken() error = %v", err)
	}

	userID, err := service.parseResetToken(token)
	if err != nil {
		t.Fatalf("parseResetToken() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("parseResetToken() = %d, want 42", userID)
	}
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service := newTestAuthService(issued)

	token, err := service.newResetToken(42)
	if err != nil {
		t.Fatalf("newResetToken() error = %v", err)
	}

	service.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := service.parseResetToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestAuthService_ResetTokenWrongKey(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	service := newTestAuthService(issued)

	token, err := service.newResetToken(42)
	if err != nil {
		t.Fatalf("newResetToken() error = %v", err)
	}

	other := newTestAuthService(issued)
	other.secretKey = []byte("ffffffffffffffffffffffffffffffff")
	if _, err := other.parseResetToken(token); err == nil {
		t.Fatal("expected token signed with a different key to be rejected")
	}
}

func TestAuthService_RegisterRejectsWeakInput(t *testing.T) {
	t.Parallel()

	service := newTestAuthService(time.Now())

	if _, err := service.Register(t.Context(), RegisterInput{Email: "ada@example.com", Password: "secret"}); err == nil {
		t.Error("expected short password to be rejected")
	}
	if _, err := service.Register(t.Context(), RegisterInput{Email: "not-an-email", Password: "long-enough-pass"}); err == nil {
		t.Error("expected invalid email to be rejected")
	}

	var userErr UserError
	_, err := service.Register(t.Context(), RegisterInput{Email: "", Password: "long-enough-pass"})
	if !errors.As(err, &userErr) {
		t.Errorf("expected UserError, got %v", err)
	}
}
