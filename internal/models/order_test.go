package models

import "testing"

func TestOrderStatusCanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to shipped skips steps", StatusPending, StatusShipped, false},
		{"confirmed to processing", StatusConfirmed, StatusProcessing, true},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"shipped to cancelled too late", StatusShipped, StatusCancelled, false},
		{"delivered to refunded", StatusDelivered, StatusRefunded, true},
		{"delivered backwards", StatusDelivered, StatusShipped, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"refunded is terminal", StatusRefunded, StatusPending, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
			}
		})
	}
}

func TestPaymentStatusCanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{"pending to paid", PaymentPending, PaymentPaid, true},
		{"pending to failed", PaymentPending, PaymentFailed, true},
		{"failed retries to pending", PaymentFailed, PaymentPending, true},
		{"paid to refunded", PaymentPaid, PaymentRefunded, true},
		{"paid back to pending", PaymentPaid, PaymentPending, false},
		{"refunded is terminal", PaymentRefunded, PaymentPaid, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
			}
		})
	}
}

func TestOrderCanCancel(t *testing.T) {
	t.Parallel()

	cancellable := []OrderStatus{StatusPending, StatusConfirmed, StatusProcessing}
	for _, status := range cancellable {
		if !(&Order{Status: status}).CanCancel() {
			t.Fatalf("expected %s order to be cancellable", status)
		}
	}

	final := []OrderStatus{StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded, StatusFailed}
	for _, status := range final {
		if (&Order{Status: status}).CanCancel() {
			t.Fatalf("expected %s order to not be cancellable", status)
		}
	}

	var nilOrder *Order
	if nilOrder.CanCancel() {
		t.Fatal("expected nil order to not be cancellable")
	}
}

func TestOrderTrackingURL(t *testing.T) {
	t.Parallel()

	order := &Order{TrackingNumber: "WB123", TrackingCarrier: "gig"}
	if got := order.TrackingURL(); got != "https://giglogistics.com/track?waybill=WB123" {
		t.Fatalf("unexpected tracking url %q", got)
	}

	order = &Order{TrackingNumber: "DH456", TrackingCarrier: "dhl"}
	if got := order.TrackingURL(); got != "https://www.dhl.com/track?tracking-id=DH456" {
		t.Fatalf("unexpected tracking url %q", got)
	}

	order = &Order{TrackingCarrier: "gig"}
	if got := order.TrackingURL(); got != "" {
		t.Fatalf("expected empty url without a tracking number, got %q", got)
	}

	order = &Order{TrackingNumber: "X", TrackingCarrier: "courierx"}
	if got := order.TrackingURL(); got != "" {
		t.Fatalf("expected empty url for unknown carrier, got %q", got)
	}
}
