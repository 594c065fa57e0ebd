package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/services"
)

func TestRespondServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "user error passes message through",
			err:        services.UserError{Message: "Coupon code INVALID has expired"},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Coupon code INVALID has expired",
		},
		{
			name:       "order not found",
			err:        services.ErrOrderNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "Not found",
		},
		{
			name:       "store not found",
			err:        db.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "Not found",
		},
		{
			name:       "order owned by someone else",
			err:        services.ErrOrderNotYours,
			wantStatus: http.StatusForbidden,
			wantBody:   "Forbidden",
		},
		{
			name:       "stale status transition",
			err:        services.ErrOrderStatusConflict,
			wantStatus: http.StatusConflict,
			wantBody:   "reload and try again",
		},
		{
			name:       "invalid credentials",
			err:        services.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid email or password",
		},
		{
			name:       "disabled account",
			err:        services.ErrAccountDisabled,
			wantStatus: http.StatusForbidden,
			wantBody:   "disabled",
		},
		{
			name:       "expired reset token",
			err:        services.ErrInvalidResetToken,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid or has expired",
		},
		{
			name:       "internal errors stay generic",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Something went wrong",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &Handlers{}
			req := httptest.NewRequest(http.MethodPost, "/orders/checkout", nil)
			rec := httptest.NewRecorder()

			h.respondServiceError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %q", tt.wantBody, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected JSON content type, got %q", ct)
			}
		})
	}
}
