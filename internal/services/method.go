package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aniscentsapp/aniscents/internal/crypto"
	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var ErrMethodsUnavailable = errors.New("payment method service unavailable")

// PaymentMethodService manages the admin-curated list of payment methods.
// Gateway credentials are encrypted at rest with the store-wide key.
type PaymentMethodService struct {
	methods   *db.PaymentMethodStore
	encryptor crypto.Encryptor
	logger    *slog.Logger
}

func NewPaymentMethodService(methods *db.PaymentMethodStore, encryptor crypto.Encryptor, logger *slog.Logger) *PaymentMethodService {
	return &PaymentMethodService{
		methods:   methods,
		encryptor: encryptor,
		logger:    logger,
	}
}

func (s *PaymentMethodService) List(ctx context.Context) ([]*models.PaymentMethod, error) {
	if s == nil || s.methods == nil {
		return nil, ErrMethodsUnavailable
	}
	return s.methods.ListAll(ctx)
}

type SavePaymentMethodInput struct {
	Code         string
	DisplayName  string
	DisplayOrder int
	IsActive     bool
	Credentials  string
}

// Save upserts a payment method. An empty Credentials leaves any previously
// stored credentials untouched.
func (s *PaymentMethodService) Save(ctx context.Context, input SavePaymentMethodInput) (*models.PaymentMethod, error) {
	if s == nil || s.methods == nil {
		return nil, ErrMethodsUnavailable
	}

	code := strings.ToLower(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, UserError{Message: "A payment method code is required"}
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, UserError{Message: "A display name is required"}
	}

	method := &models.PaymentMethod{
		Code:         code,
		DisplayName:  displayName,
		DisplayOrder: input.DisplayOrder,
		IsActive:     input.IsActive,
	}

	if strings.TrimSpace(input.Credentials) != "" {
		if s.encryptor == nil {
			return nil, ErrMethodsUnavailable
		}
		encrypted, err := s.encryptor.Encrypt(input.Credentials)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt credentials: %w", err)
		}
		method.EncryptedCredentials = encrypted
	} else if existing, err := s.methods.GetByCode(ctx, code); err == nil {
		method.EncryptedCredentials = existing.EncryptedCredentials
	}

	if err := s.methods.Upsert(ctx, method); err != nil {
		return nil, fmt.Errorf("failed to save payment method: %w", err)
	}
	return method, nil
}

// Credentials decrypts the stored credentials for a method.
func (s *PaymentMethodService) Credentials(ctx context.Context, code string) (string, error) {
	if s == nil || s.methods == nil || s.encryptor == nil {
		return "", ErrMethodsUnavailable
	}
	method, err := s.methods.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if method.EncryptedCredentials == "" {
		return "", nil
	}
	return s.encryptor.Decrypt(method.EncryptedCredentials)
}

func (s *PaymentMethodService) Delete(ctx context.Context, code string) error {
	if s == nil || s.methods == nil {
		return ErrMethodsUnavailable
	}
	return s.methods.Delete(ctx, strings.ToLower(strings.TrimSpace(code)))
}
