package services

import (
	"errors"
	"testing"

	"github.com/aniscentsapp/aniscents/internal/models"
)

func TestRetryablePayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status models.PaymentStatus
		want   bool
	}{
		{"pending awaits payment", models.PaymentPending, true},
		{"failed attempt can be retried", models.PaymentFailed, true},
		{"paid is settled", models.PaymentPaid, false},
		{"partially paid is settled", models.PaymentPartiallyPaid, false},
		{"refunded is terminal", models.PaymentRefunded, false},
		{"cancelled is terminal", models.PaymentCancelled, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := retryablePayment(tt.status); got != tt.want {
				t.Fatalf("retryablePayment(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestPaymentService_NilService(t *testing.T) {
	t.Parallel()

	var svc *PaymentService
	if _, err := svc.Initiate(t.Context(), "ANIS-20260830-000001", "paystack"); !errors.Is(err, ErrPaymentUnavailable) {
		t.Fatalf("expected ErrPaymentUnavailable, got %v", err)
	}
	if _, err := svc.AvailableMethods(t.Context()); !errors.Is(err, ErrPaymentUnavailable) {
		t.Fatalf("expected ErrPaymentUnavailable, got %v", err)
	}
}
