// Package calendar defines the boundary to the external calendar that blocks
// are mirrored into. The engine never talks to a provider API directly; it
// goes through Gateway for writes and EventSource for reads, so the whole
// sync path can run against the in-memory fake.
package calendar

import (
	"context"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
)

// RemoteEvent is the engine's view of one calendar event. Deleted events are
// reported explicitly so reconciliation can tombstone them.
type RemoteEvent struct {
	ID      string
	Title   string
	StartAt time.Time
	EndAt   time.Time
	Deleted bool
}

// Gateway pushes local block changes out to the calendar.
type Gateway interface {
	// CreateDraftBlockEvent mirrors a newly approved block and returns the
	// provider's event id.
	CreateDraftBlockEvent(ctx context.Context, b *domain.Block) (string, error)
	UpdateEvent(ctx context.Context, eventID string, b *domain.Block) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// EventSource reads the remote calendar state for reconciliation and block
// generation. Events returned for a window include busy time that blocks must
// schedule around.
type EventSource interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]RemoteEvent, error)
	// ChangedSince returns events changed since the given sync token, plus the
	// next token. An empty token means a full listing.
	ChangedSince(ctx context.Context, token string) ([]RemoteEvent, string, error)
}
