package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/db"
)

func TestOrderService_NilService(t *testing.T) {
	t.Parallel()

	var service *OrderService
	if err := service.MarkProcessing(t.Context(), uuid.New()); !errors.Is(err, ErrOrderUnavailable) {
		t.Errorf("MarkProcessing() = %v, want ErrOrderUnavailable", err)
	}
	if _, err := service.List(t.Context(), "", 10); !errors.Is(err, ErrOrderUnavailable) {
		t.Errorf("List() = %v, want ErrOrderUnavailable", err)
	}
	if err := service.Ship(t.Context(), uuid.New(), ShipOrderInput{}); !errors.Is(err, ErrOrderUnavailable) {
		t.Errorf("Ship() = %v, want ErrOrderUnavailable", err)
	}
	if err := service.Refund(t.Context(), uuid.New()); !errors.Is(err, ErrOrderUnavailable) {
		t.Errorf("Refund() = %v, want ErrOrderUnavailable", err)
	}
}

func TestOrderService_ShipValidatesInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   ShipOrderInput
		wantErr string
	}{
		{
			name:    "missing tracking number",
			input:   ShipOrderInput{Carrier: "dhl"},
			wantErr: "tracking number",
		},
		{
			name:    "blank tracking number",
			input:   ShipOrderInput{TrackingNumber: "   ", Carrier: "dhl"},
			wantErr: "tracking number",
		},
		{
			name:    "unknown carrier",
			input:   ShipOrderInput{TrackingNumber: "JD014603", Carrier: "fedex"},
			wantErr: "Carrier must be",
		},
	}

	// Input checks fire before any store access.
	service := NewOrderService(&db.OrderStore{}, nil, nil, nil, nil)

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := service.Ship(t.Context(), uuid.New(), tt.input)
			var userErr UserError
			if !errors.As(err, &userErr) {
				t.Fatalf("expected UserError, got %v", err)
			}
			if !strings.Contains(userErr.Message, tt.wantErr) {
				t.Errorf("expected message containing %q, got %q", tt.wantErr, userErr.Message)
			}
		})
	}
}

func TestOrderService_UpdateTrackingRejectsUnknownCarrier(t *testing.T) {
	t.Parallel()

	service := NewOrderService(&db.OrderStore{}, nil, nil, nil, nil)
	err := service.UpdateTracking(t.Context(), uuid.New(), "JD014603", "ups")
	var userErr UserError
	if !errors.As(err, &userErr) {
		t.Fatalf("expected UserError, got %v", err)
	}
}
