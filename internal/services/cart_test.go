package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/models"
)

func TestComputeTotals(t *testing.T) {
	t.Parallel()

	twoBottles := []*models.CartItem{
		{ProductID: uuid.New(), UnitPriceKobo: 4500000, Quantity: 1},
		{ProductID: uuid.New(), UnitPriceKobo: 1200000, Quantity: 2},
	}
	// subtotal: 6_900_000 kobo

	tests := []struct {
		name           string
		items          []*models.CartItem
		discount       int64
		shippingMethod string
		giftWrap       bool
		want           models.CartTotals
	}{
		{
			name:           "standard shipping below threshold",
			items:          twoBottles,
			shippingMethod: models.ShippingStandard,
			want: models.CartTotals{
				SubtotalKobo: 6900000,
				ShippingKobo: 250000,
				TotalKobo:    7150000,
				ItemCount:    3,
			},
		},
		{
			name: "standard shipping free above threshold",
			items: []*models.CartItem{
				{ProductID: uuid.New(), UnitPriceKobo: 5500000, Quantity: 2},
			},
			shippingMethod: models.ShippingStandard,
			want: models.CartTotals{
				SubtotalKobo: 11000000,
				TotalKobo:    11000000,
				ItemCount:    2,
			},
		},
		{
			name:           "express shipping never free",
			items:          []*models.CartItem{{ProductID: uuid.New(), UnitPriceKobo: 11000000, Quantity: 1}},
			shippingMethod: models.ShippingExpress,
			want: models.CartTotals{
				SubtotalKobo: 11000000,
				ShippingKobo: 500000,
				TotalKobo:    11500000,
				ItemCount:    1,
			},
		},
		{
			name:           "pickup is free",
			items:          twoBottles,
			shippingMethod: models.ShippingPickup,
			want: models.CartTotals{
				SubtotalKobo: 6900000,
				TotalKobo:    6900000,
				ItemCount:    3,
			},
		},
		{
			name:           "discount reduces shipping basis",
			items:          []*models.CartItem{{ProductID: uuid.New(), UnitPriceKobo: 10200000, Quantity: 1}},
			discount:       300000,
			shippingMethod: models.ShippingStandard,
			want: models.CartTotals{
				SubtotalKobo: 10200000,
				DiscountKobo: 300000,
				ShippingKobo: 250000,
				TotalKobo:    10150000,
				ItemCount:    1,
			},
		},
		{
			name:           "gift wrap adds flat fee",
			items:          twoBottles,
			shippingMethod: models.ShippingStandard,
			giftWrap:       true,
			want: models.CartTotals{
				SubtotalKobo: 6900000,
				ShippingKobo: 250000,
				GiftWrapKobo: GiftWrapFeeKobo,
				TotalKobo:    7300000,
				ItemCount:    3,
			},
		},
		{
			name:           "discount clamped to subtotal",
			items:          []*models.CartItem{{ProductID: uuid.New(), UnitPriceKobo: 100000, Quantity: 1}},
			discount:       500000,
			shippingMethod: models.ShippingStandard,
			want: models.CartTotals{
				SubtotalKobo: 100000,
				DiscountKobo: 100000,
				ShippingKobo: 250000,
				TotalKobo:    250000,
				ItemCount:    1,
			},
		},
		{
			name:           "empty cart has no shipping",
			shippingMethod: models.ShippingStandard,
			want:           models.CartTotals{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := computeTotals(tt.items, tt.discount, tt.shippingMethod, tt.giftWrap)
			if got != tt.want {
				t.Errorf("computeTotals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCartIdentity_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity CartIdentity
		want     bool
	}{
		{"user only", CartIdentity{UserID: 1}, true},
		{"session only", CartIdentity{SessionKey: "abc"}, true},
		{"both", CartIdentity{UserID: 1, SessionKey: "abc"}, false},
		{"neither", CartIdentity{}, false},
	}

	for _, tt := range tests {
		if got := tt.identity.valid(); got != tt.want {
			t.Errorf("%s: valid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
