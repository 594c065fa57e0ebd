package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestPaystack(t *testing.T, handler http.HandlerFunc) *Paystack {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Paystack{
		secretKey:  "sk_test_secret",
		baseURL:    server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestPaystack_Initialize(t *testing.T) {
	t.Parallel()

	gateway := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_secret" {
			t.Errorf("Authorization = %q", got)
		}

		var body paystackInitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Amount != 4500000 {
			t.Errorf("amount = %d, want 4500000", body.Amount)
		}
		if body.Reference != "ANIS-20250101-000042" {
			t.Errorf("reference = %q", body.Reference)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "ANIS-20250101-000042"
			}
		}`))
	})

	result, err := gateway.Initialize(context.Background(), InitRequest{
		Reference:   "ANIS-20250101-000042",
		Email:       "ada@example.com",
		AmountKobo:  4500000,
		Currency:    "NGN",
		CallbackURL: "https://aniscents.ng/payments/callback/paystack",
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if result.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("AuthorizationURL = %q", result.AuthorizationURL)
	}
	if result.GatewayReference != "ANIS-20250101-000042" {
		t.Errorf("GatewayReference = %q", result.GatewayReference)
	}
}

func TestPaystack_Verify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus VerifyStatus
		wantReason string
	}{
		{
			name: "successful transaction",
			body: `{
				"status": true,
				"message": "Verification successful",
				"data": {
					"status": "success",
					"reference": "ANIS-20250101-000042",
					"amount": 4500000,
					"currency": "NGN",
					"gateway_response": "Successful",
					"authorization": {"last4": "4081", "card_type": "visa"}
				}
			}`,
			wantStatus: VerifySuccess,
		},
		{
			name: "failed transaction carries reason",
			body: `{
				"status": true,
				"message": "Verification successful",
				"data": {
					"status": "failed",
					"reference": "ANIS-20250101-000042",
					"amount": 4500000,
					"currency": "NGN",
					"gateway_response": "Declined"
				}
			}`,
			wantStatus: VerifyFailed,
			wantReason: "Declined",
		},
		{
			name: "ongoing transaction is pending",
			body: `{
				"status": true,
				"message": "Verification successful",
				"data": {
					"status": "ongoing",
					"reference": "ANIS-20250101-000042",
					"amount": 4500000,
					"currency": "NGN"
				}
			}`,
			wantStatus: VerifyPending,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gateway := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/transaction/verify/ANIS-20250101-000042" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := gateway.Verify(context.Background(), "ANIS-20250101-000042", "")
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}

			if result.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", result.Status, tt.wantStatus)
			}
			if result.FailureReason != tt.wantReason {
				t.Errorf("FailureReason = %q, want %q", result.FailureReason, tt.wantReason)
			}
			if result.AmountKobo != 4500000 {
				t.Errorf("AmountKobo = %d, want 4500000", result.AmountKobo)
			}
		})
	}
}

func TestPaystack_VerifyAPIError(t *testing.T) {
	t.Parallel()

	gateway := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	})

	if _, err := gateway.Verify(context.Background(), "missing", ""); err == nil {
		t.Fatal("expected error for unknown reference, got nil")
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(NewPaystack("sk"), NewFlutterwave("fk"))

	gateway, err := registry.Get("paystack")
	if err != nil {
		t.Fatalf("Get(paystack) error = %v", err)
	}
	if gateway.Code() != "paystack" {
		t.Errorf("Code() = %q", gateway.Code())
	}

	if _, err := registry.Get("cash"); err == nil {
		t.Error("expected error for unknown gateway")
	}

	codes := registry.Codes()
	if len(codes) != 2 || codes[0] != "flutterwave" || codes[1] != "paystack" {
		t.Errorf("Codes() = %v", codes)
	}
}
