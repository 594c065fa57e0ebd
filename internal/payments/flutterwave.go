package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aniscentsapp/aniscents/internal/observability"
)

const flutterwaveBaseURL = "https://api.flutterwave.com/v3"

// Flutterwave charges in major units (naira), so amounts are converted from
// kobo on the way out and back on the way in.
type Flutterwave struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewFlutterwave(secretKey string) *Flutterwave {
	return &Flutterwave{
		secretKey:  secretKey,
		baseURL:    flutterwaveBaseURL,
		httpClient: observability.NewHTTPClient(30 * time.Second),
	}
}

func (f *Flutterwave) Code() string { return "flutterwave" }

type flutterwaveInitRequest struct {
	TxRef       string              `json:"tx_ref"`
	Amount      string              `json:"amount"`
	Currency    string              `json:"currency"`
	RedirectURL string              `json:"redirect_url"`
	Customer    flutterwaveCustomer `json:"customer"`
}

type flutterwaveCustomer struct {
	Email string `json:"email"`
}

type flutterwaveResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type flutterwaveInitData struct {
	Link string `json:"link"`
}

type flutterwaveVerifyData struct {
	Status            string  `json:"status"`
	TxRef             string  `json:"tx_ref"`
	FlwRef            string  `json:"flw_ref"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	ProcessorResponse string  `json:"processor_response"`
	Card              struct {
		Last4 string `json:"last_4digits"`
		Type  string `json:"type"`
	} `json:"card"`
}

func (f *Flutterwave) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	body := flutterwaveInitRequest{
		TxRef:       req.Reference,
		Amount:      fmt.Sprintf("%d.%02d", req.AmountKobo/100, req.AmountKobo%100),
		Currency:    req.Currency,
		RedirectURL: req.CallbackURL,
		Customer:    flutterwaveCustomer{Email: req.Email},
	}

	var data flutterwaveInitData
	if err := f.do(ctx, http.MethodPost, "/payments", body, &data); err != nil {
		return nil, fmt.Errorf("flutterwave initialize: %w", err)
	}

	return &InitResult{
		AuthorizationURL: data.Link,
		GatewayReference: req.Reference,
	}, nil
}

func (f *Flutterwave) Verify(ctx context.Context, reference, _ string) (*VerifyResult, error) {
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)

	var data flutterwaveVerifyData
	if err := f.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, fmt.Errorf("flutterwave verify: %w", err)
	}

	result := &VerifyResult{
		AmountKobo:       int64(data.Amount*100 + 0.5),
		Currency:         data.Currency,
		GatewayReference: data.FlwRef,
		CardLast4:        data.Card.Last4,
		CardBrand:        data.Card.Type,
	}

	switch data.Status {
	case "successful":
		result.Status = VerifySuccess
	case "failed", "cancelled":
		result.Status = VerifyFailed
		result.FailureReason = data.ProcessorResponse
	default:
		result.Status = VerifyPending
	}

	return result, nil
}

func (f *Flutterwave) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope flutterwaveResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
