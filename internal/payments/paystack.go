package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aniscentsapp/aniscents/internal/observability"
)

const paystackBaseURL = "https://api.paystack.co"

// Paystack is the primary gateway for NGN card and bank transfer payments.
type Paystack struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewPaystack(secretKey string) *Paystack {
	return &Paystack{
		secretKey:  secretKey,
		baseURL:    paystackBaseURL,
		httpClient: observability.NewHTTPClient(30 * time.Second),
	}
}

func (p *Paystack) Code() string { return "paystack" }

type paystackInitRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	Currency    string `json:"currency"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	GatewayResponse string `json:"gateway_response"`
	Authorization   struct {
		Last4    string `json:"last4"`
		CardType string `json:"card_type"`
	} `json:"authorization"`
}

func (p *Paystack) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	body := paystackInitRequest{
		Email:       req.Email,
		Amount:      req.AmountKobo,
		Reference:   req.Reference,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
	}

	var data paystackInitData
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}

	return &InitResult{
		AuthorizationURL: data.AuthorizationURL,
		GatewayReference: data.Reference,
	}, nil
}

func (p *Paystack) Verify(ctx context.Context, reference, _ string) (*VerifyResult, error) {
	var data paystackVerifyData
	if err := p.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}

	result := &VerifyResult{
		AmountKobo:       data.Amount,
		Currency:         data.Currency,
		GatewayReference: data.Reference,
		CardLast4:        data.Authorization.Last4,
		CardBrand:        data.Authorization.CardType,
	}

	switch data.Status {
	case "success":
		result.Status = VerifySuccess
	case "failed", "abandoned", "reversed":
		result.Status = VerifyFailed
		result.FailureReason = data.GatewayResponse
	default:
		result.Status = VerifyPending
	}

	return result, nil
}

func (p *Paystack) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope paystackResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Status {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
