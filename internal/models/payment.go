package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TxnInitiated  TransactionStatus = "initiated"
	TxnPending    TransactionStatus = "pending"
	TxnSuccessful TransactionStatus = "successful"
	TxnFailed     TransactionStatus = "failed"
	TxnRefunded   TransactionStatus = "refunded"
)

// Payment is one gateway transaction against an order. Orders can carry
// several, e.g. a failed attempt followed by a successful one.
type Payment struct {
	ID               uuid.UUID         `json:"id"`
	OrderID          uuid.UUID         `json:"order_id"`
	Gateway          string            `json:"gateway"`
	Reference        string            `json:"reference"`
	GatewayReference string            `json:"gateway_reference"`
	AmountKobo       int64             `json:"amount_kobo"`
	Currency         string            `json:"currency"`
	Status           TransactionStatus `json:"status"`
	CardLast4        string            `json:"card_last4"`
	CardBrand        string            `json:"card_brand"`
	FailureReason    string            `json:"failure_reason"`
	RefundedKobo     int64             `json:"refunded_kobo"`
	InitiatedAt      time.Time         `json:"initiated_at"`
	CompletedAt      time.Time         `json:"completed_at"`
}

// PaymentMethod is an admin-managed gateway entry controlling what checkout offers.
type PaymentMethod struct {
	ID                   uuid.UUID `json:"id"`
	Code                 string    `json:"code"`
	DisplayName          string    `json:"display_name"`
	DisplayOrder         int       `json:"display_order"`
	IsActive             bool      `json:"is_active"`
	EncryptedCredentials string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
}
