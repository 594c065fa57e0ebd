package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/logging"
)

// Order lifecycle events. Emission happens at the service layer after the
// state change commits, never from storage hooks.
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderShipped   = "order.shipped"
	EventOrderDelivered = "order.delivered"
	EventOrderCancelled = "order.cancelled"
	EventOrderRefunded  = "order.refunded"
	EventPaymentFailed  = "payment.failed"
)

type Event struct {
	Name        string
	OrderID     uuid.UUID
	OrderNumber string
	OccurredAt  time.Time
}

// EventSink receives order lifecycle events. Implementations must not block
// the calling state transition on delivery failures.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

type noopEventSink struct{}

func (noopEventSink) Emit(context.Context, Event) {}

// LogEventSink records events to the request logger.
type LogEventSink struct {
	logger *slog.Logger
}

func NewLogEventSink(logger *slog.Logger) *LogEventSink {
	return &LogEventSink{logger: logger}
}

func (s *LogEventSink) Emit(ctx context.Context, event Event) {
	logging.FromContext(ctx, s.logger).Info("order event",
		"event", event.Name,
		"order_id", event.OrderID,
		"order_number", event.OrderNumber,
	)
}

// MultiEventSink fans one event out to several sinks.
type MultiEventSink struct {
	sinks []EventSink
}

func NewMultiEventSink(sinks ...EventSink) *MultiEventSink {
	return &MultiEventSink{sinks: sinks}
}

func (s *MultiEventSink) Emit(ctx context.Context, event Event) {
	for _, sink := range s.sinks {
		sink.Emit(ctx, event)
	}
}

// RecordingEventSink collects events for inspection in tests.
type RecordingEventSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *RecordingEventSink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *RecordingEventSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
