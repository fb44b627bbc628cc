// Package notify delivers user-facing notifications about externally driven
// schedule changes. Sinks are fire and forget; a failing sink must never
// abort the operation that triggered it.
package notify

import (
	"context"
	"log/slog"
)

const (
	EventExternalAdded      = "external_event_added"
	EventBlockUpdated       = "external_block_updated"
	EventBlockDeleted       = "external_block_deleted"
	EventAdjustmentRequired = "manual_adjustment_required"
)

type Sink interface {
	Notify(ctx context.Context, eventType string, payload map[string]any)
}

// SlogSink writes notifications to structured logs.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Notify(ctx context.Context, eventType string, payload map[string]any) {
	attrs := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		attrs = append(attrs, slog.Any(k, v))
	}
	s.logger.InfoContext(ctx, "notification: "+eventType, attrs...)
}

// Noop discards notifications.
type Noop struct{}

func (Noop) Notify(context.Context, string, map[string]any) {}

// Recorder captures notifications for tests.
type Recorder struct {
	Events []RecordedEvent
}

type RecordedEvent struct {
	Type    string
	Payload map[string]any
}

func (r *Recorder) Notify(_ context.Context, eventType string, payload map[string]any) {
	r.Events = append(r.Events, RecordedEvent{Type: eventType, Payload: payload})
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	types := make([]string, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.Type
	}
	return types
}
