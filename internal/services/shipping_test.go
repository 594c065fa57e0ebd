package services

import (
	"testing"

	"github.com/aniscentsapp/aniscents/internal/models"
)

func TestNormalizeCarrier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"dhl", CarrierDHL},
		{"DHL Express", CarrierDHL},
		{"  gig  ", CarrierGIG},
		{"GIG Logistics", CarrierGIG},
		{"gig-logistics", CarrierGIG},
		{"fedex", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCarrier(tt.input); got != tt.want {
			t.Errorf("NormalizeCarrier(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestShippingFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		subtotal int64
		want     int64
	}{
		{"standard below threshold", models.ShippingStandard, 5000000, 250000},
		{"standard at threshold", models.ShippingStandard, FreeShippingThresholdKobo, 0},
		{"express ignores threshold", models.ShippingExpress, 20000000, 500000},
		{"pickup is free", models.ShippingPickup, 100, 0},
		{"unknown method falls back to standard fee", "drone", 5000000, 250000},
	}

	for _, tt := range tests {
		if got := ShippingFee(tt.method, tt.subtotal); got != tt.want {
			t.Errorf("%s: ShippingFee(%q, %d) = %d, want %d", tt.name, tt.method, tt.subtotal, got, tt.want)
		}
	}
}
