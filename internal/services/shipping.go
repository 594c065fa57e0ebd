package services

import (
	"strings"

	"github.com/aniscentsapp/aniscents/internal/models"
)

const (
	CarrierDHL = "dhl"
	CarrierGIG = "gig"

	// Orders at or above this subtotal ship free on the standard method.
	FreeShippingThresholdKobo int64 = 10000000

	standardShippingKobo int64 = 250000
	expressShippingKobo  int64 = 500000

	// GiftWrapFeeKobo is the flat gift wrapping charge.
	GiftWrapFeeKobo int64 = 150000
)

// ShippingMethods lists what checkout offers, in display order.
func ShippingMethods() []*models.ShippingMethod {
	return []*models.ShippingMethod{
		{Code: models.ShippingStandard, Name: "Standard Delivery", FeeKobo: standardShippingKobo, EstimatedDays: 5},
		{Code: models.ShippingExpress, Name: "Express Delivery", FeeKobo: expressShippingKobo, EstimatedDays: 2},
		{Code: models.ShippingPickup, Name: "Store Pickup (Lagos)", FeeKobo: 0, EstimatedDays: 1},
	}
}

// ShippingMethodByCode returns nil for unknown codes.
func ShippingMethodByCode(code string) *models.ShippingMethod {
	for _, method := range ShippingMethods() {
		if method.Code == code {
			return method
		}
	}
	return nil
}

// ShippingFee computes the fee for a method given the discounted subtotal.
// Standard delivery is free above the threshold; pickup is always free.
func ShippingFee(methodCode string, subtotalKobo int64) int64 {
	method := ShippingMethodByCode(methodCode)
	if method == nil {
		return standardShippingKobo
	}
	if method.Code == models.ShippingStandard && subtotalKobo >= FreeShippingThresholdKobo {
		return 0
	}
	return method.FeeKobo
}

// NormalizeCarrier returns a canonical carrier key for known carriers.
func NormalizeCarrier(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "")
	normalized = replacer.Replace(normalized)

	switch normalized {
	case "dhl", "dhlexpress":
		return CarrierDHL
	case "gig", "giglogistics":
		return CarrierGIG
	default:
		return ""
	}
}

// CanonicalCarrierName maps a carrier key to the display name.
func CanonicalCarrierName(carrier string) string {
	switch NormalizeCarrier(carrier) {
	case CarrierDHL:
		return "DHL"
	case CarrierGIG:
		return "GIG Logistics"
	default:
		return ""
	}
}
