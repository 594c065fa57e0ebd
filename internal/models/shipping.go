package models

// ShippingMethod codes offered at checkout.
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
	ShippingPickup   = "pickup"
)

type ShippingMethod struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	FeeKobo int64  `json:"fee_kobo"`
	// EstimatedDays is the upper bound of the delivery window.
	EstimatedDays int `json:"estimated_days"`
}
