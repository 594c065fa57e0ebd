// Package payments provides payment gateway clients for checkout.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownGateway = errors.New("unknown payment gateway")

// InitRequest asks a gateway to start a transaction. Amounts are in minor
// units (kobo).
type InitRequest struct {
	Reference   string
	Email       string
	AmountKobo  int64
	Currency    string
	CallbackURL string
	Description string
}

// InitResult carries the redirect the customer completes payment on.
type InitResult struct {
	AuthorizationURL string
	GatewayReference string
}

// VerifyStatus is the gateway's answer for a transaction.
type VerifyStatus string

const (
	VerifySuccess VerifyStatus = "success"
	VerifyFailed  VerifyStatus = "failed"
	VerifyPending VerifyStatus = "pending"
)

type VerifyResult struct {
	Status           VerifyStatus
	AmountKobo       int64
	Currency         string
	GatewayReference string
	CardLast4        string
	CardBrand        string
	FailureReason    string
}

// Gateway is one payment provider. Verify receives both our reference and
// the provider-side reference because providers differ in which one they key
// transactions on.
type Gateway interface {
	Code() string
	Initialize(ctx context.Context, req InitRequest) (*InitResult, error)
	Verify(ctx context.Context, reference, gatewayReference string) (*VerifyResult, error)
}

// Registry holds the configured gateways keyed by code.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Code()] = g
	}
	return r
}

func (r *Registry) Get(code string) (Gateway, error) {
	gateway, ok := r.gateways[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGateway, code)
	}
	return gateway, nil
}

func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.gateways))
	for code := range r.gateways {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
