package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
)

// Stripe backs card payments through Checkout Sessions. The session ID is the
// provider-side reference, so Verify keys on the gateway reference rather
// than ours.
type Stripe struct {
	client *stripe.Client
}

func NewStripe(secretKey string) *Stripe {
	return &Stripe{client: stripe.NewClient(secretKey)}
}

func (s *Stripe) Code() string { return "stripe" }

func (s *Stripe) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	name := req.Description
	if name == "" {
		name = "Order " + req.Reference
	}

	sessionParams := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.CallbackURL),
		CancelURL:          stripe.String(req.CallbackURL),
		ClientReferenceID:  stripe.String(req.Reference),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
					UnitAmount: stripe.Int64(req.AmountKobo),
				},
				Quantity: stripe.Int64(1),
			},
		},
		// Customer email is optional. Only send if present to avoid Stripe validation errors.
		CustomerEmail: stripe.String(req.Email),
		Metadata: map[string]string{
			"reference": req.Reference,
		},
	}

	if req.Email == "" {
		sessionParams.CustomerEmail = nil
	}

	sess, err := s.client.V1CheckoutSessions.Create(ctx, sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &InitResult{
		AuthorizationURL: sess.URL,
		GatewayReference: sess.ID,
	}, nil
}

func (s *Stripe) Verify(ctx context.Context, _, gatewayReference string) (*VerifyResult, error) {
	sess, err := s.client.V1CheckoutSessions.Retrieve(ctx, gatewayReference, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	result := &VerifyResult{
		AmountKobo:       sess.AmountTotal,
		Currency:         strings.ToUpper(string(sess.Currency)),
		GatewayReference: sess.ID,
	}

	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		result.Status = VerifySuccess
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		result.Status = VerifyFailed
		result.FailureReason = "checkout session expired"
	default:
		result.Status = VerifyPending
	}

	return result, nil
}
