package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/email"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var (
	ErrAuthUnavailable       = errors.New("auth service unavailable")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrAccountDisabled       = errors.New("account is disabled")
	ErrInvalidResetToken     = errors.New("password reset link is invalid or expired")
	ErrPasswordResetDisabled = errors.New("password reset requires email to be configured")
)

const (
	resetTokenTTL     = time.Hour
	resetTokenPurpose = "password_reset"
	minPasswordLength = 8
)

type AuthService struct {
	users     *db.UserStore
	provider  email.Provider
	renderer  *email.Renderer
	secretKey []byte
	baseURL   string
	storeName string
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(users *db.UserStore, provider email.Provider, renderer *email.Renderer, secretKey, baseURL, storeName string, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		provider:  provider,
		renderer:  renderer,
		secretKey: []byte(secretKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		storeName: storeName,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if s == nil || s.users == nil {
		return nil, ErrAuthUnavailable
	}

	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, UserError{Message: "A valid email address is required"}
	}
	if len(input.Password) < minPasswordLength {
		return nil, UserError{Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, UserError{Message: "An account with that email already exists"}
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.loggerFromContext(ctx).Info("account registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*models.User, error) {
	if s == nil || s.users == nil {
		return nil, ErrAuthUnavailable
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(emailAddr))
	if errors.Is(err, db.ErrNotFound) {
		// Burn a comparison so the timing matches a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva"), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.loggerFromContext(ctx).Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// RequestPasswordReset emails a signed reset link. An unknown email is
// reported as success so the endpoint cannot be used to probe accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	if s == nil || s.users == nil {
		return ErrAuthUnavailable
	}
	if s.provider == nil || s.renderer == nil {
		return ErrPasswordResetDisabled
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(emailAddr))
	if errors.Is(err, db.ErrNotFound) {
		s.loggerFromContext(ctx).Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	token, err := s.newResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to sign reset token: %w", err)
	}

	resetInfo := &email.ResetInfo{
		StoreName:     s.storeName,
		CustomerName:  user.FullName(),
		CustomerEmail: user.Email,
		ResetURL:      fmt.Sprintf("%s/password-reset/confirm?token=%s", s.baseURL, token),
		ExpiresIn:     "1 hour",
	}
	if err := email.SendPasswordReset(ctx, s.provider, resetInfo); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.loggerFromContext(ctx).Info("password reset email sent", "user_id", user.ID)
	return nil
}

// ResetPassword verifies the signed token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s == nil || s.users == nil {
		return ErrAuthUnavailable
	}
	if len(newPassword) < minPasswordLength {
		return UserError{Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength)}
	}

	userID, err := s.parseResetToken(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.loggerFromContext(ctx).Info("password reset completed", "user_id", userID)
	return nil
}

// GetUser loads an account by id.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if s == nil || s.users == nil {
		return nil, ErrAuthUnavailable
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return user, nil
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
	Address   models.Address
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*models.User, error) {
	if s == nil || s.users == nil {
		return nil, ErrAuthUnavailable
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Phone = strings.TrimSpace(input.Phone)
	user.Address = input.Address

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) newResetToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Audience:  jwt.ClaimStrings{resetTokenPurpose},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

func (s *AuthService) parseResetToken(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithAudience(resetTokenPurpose), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, fmt.Errorf("missing subject claim")
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}
