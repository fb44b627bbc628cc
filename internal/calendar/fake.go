package calendar

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
)

// Fake is an in-memory calendar that implements both Gateway and EventSource.
// It backs tests and local runs without any provider credentials. Deletes are
// kept as tombstones so ChangedSince can report them.
type Fake struct {
	mu      sync.Mutex
	events  map[string]RemoteEvent
	nextID  int
	version int
	changes []change
}

type change struct {
	version int
	eventID string
}

func NewFake() *Fake {
	return &Fake{events: make(map[string]RemoteEvent)}
}

// Seed inserts an externally-owned event, as if the user had created it in
// the provider UI.
func (f *Fake) Seed(title string, startAt, endAt time.Time) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.allocID()
	f.put(RemoteEvent{ID: id, Title: title, StartAt: startAt, EndAt: endAt})
	return id
}

// Reschedule moves an existing event, as an external edit would.
func (f *Fake) Reschedule(eventID string, startAt, endAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[eventID]
	if !ok || ev.Deleted {
		return fmt.Errorf("fake calendar: event %s not found", eventID)
	}
	ev.StartAt = startAt
	ev.EndAt = endAt
	f.put(ev)
	return nil
}

// Remove tombstones an event, as an external deletion would.
func (f *Fake) Remove(eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[eventID]
	if !ok || ev.Deleted {
		return fmt.Errorf("fake calendar: event %s not found", eventID)
	}
	ev.Deleted = true
	f.put(ev)
	return nil
}

func (f *Fake) CreateDraftBlockEvent(_ context.Context, b *domain.Block) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.allocID()
	f.put(RemoteEvent{
		ID:      id,
		Title:   string(b.Type) + " block",
		StartAt: b.StartAt,
		EndAt:   b.EndAt,
	})
	return id, nil
}

func (f *Fake) UpdateEvent(_ context.Context, eventID string, b *domain.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[eventID]
	if !ok || ev.Deleted {
		return fmt.Errorf("fake calendar: event %s not found", eventID)
	}
	ev.StartAt = b.StartAt
	ev.EndAt = b.EndAt
	f.put(ev)
	return nil
}

func (f *Fake) DeleteEvent(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[eventID]
	if !ok || ev.Deleted {
		return fmt.Errorf("fake calendar: event %s not found", eventID)
	}
	ev.Deleted = true
	f.put(ev)
	return nil
}

func (f *Fake) ListEvents(_ context.Context, from, to time.Time) ([]RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []RemoteEvent
	for _, ev := range f.events {
		if ev.Deleted {
			continue
		}
		if ev.StartAt.Before(to) && from.Before(ev.EndAt) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (f *Fake) ChangedSince(_ context.Context, token string) ([]RemoteEvent, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	since := 0
	if token != "" {
		v, err := strconv.Atoi(token)
		if err != nil {
			return nil, "", fmt.Errorf("fake calendar: bad sync token %q", token)
		}
		since = v
	}

	seen := make(map[string]bool)
	var out []RemoteEvent
	// Newest change per event wins.
	for i := len(f.changes) - 1; i >= 0; i-- {
		c := f.changes[i]
		if c.version <= since {
			break
		}
		if seen[c.eventID] {
			continue
		}
		seen[c.eventID] = true
		out = append(out, f.events[c.eventID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, strconv.Itoa(f.version), nil
}

// put records the event and its change entry. Caller holds the lock.
func (f *Fake) put(ev RemoteEvent) {
	f.version++
	f.events[ev.ID] = ev
	f.changes = append(f.changes, change{version: f.version, eventID: ev.ID})
}

func (f *Fake) allocID() string {
	f.nextID++
	return fmt.Sprintf("evt-%d", f.nextID)
}
