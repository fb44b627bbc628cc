// Package reconcile makes local block state consistent with the external
// calendar, which is the system of record. Only blocks that carry a calendar
// event id participate; freshly generated drafts without a mirror are
// invisible to the pass, so it can run concurrently with generation.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/blocksched/internal/calendar"
	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/notify"
	"github.com/alexanderramin/blocksched/internal/repository"
)

// Result reports what one pass changed.
type Result struct {
	Added   []*domain.Block
	Updated []*domain.Block
	Deleted []string
}

type Reconciler struct {
	blocks       repository.BlockRepo
	suppressions repository.SuppressionRepo
	policies     repository.PolicyRepo
	sink         notify.Sink
	idFactory    func() string
	now          func() time.Time
}

func New(blocks repository.BlockRepo, suppressions repository.SuppressionRepo, policies repository.PolicyRepo, sink notify.Sink) *Reconciler {
	if sink == nil {
		sink = notify.Noop{}
	}
	return &Reconciler{
		blocks:       blocks,
		suppressions: suppressions,
		policies:     policies,
		sink:         sink,
		idFactory:    func() string { return uuid.New().String() },
		now:          time.Now,
	}
}

// Reconcile runs one single-pass diff of remote against local mirrored state.
// The result is order independent and the pass is safe to repeat. The remote
// slice must be the complete event set: any mirrored block without a live
// remote entry is treated as remotely deleted.
func (r *Reconciler) Reconcile(ctx context.Context, remote []calendar.RemoteEvent) (*Result, error) {
	return r.reconcile(ctx, remote, time.Time{}, time.Time{})
}

// ReconcileWindow is Reconcile for a bounded listing: absence only implies
// remote deletion for mirrored blocks whose start falls inside [from, to).
func (r *Reconciler) ReconcileWindow(ctx context.Context, remote []calendar.RemoteEvent, from, to time.Time) (*Result, error) {
	return r.reconcile(ctx, remote, from, to)
}

func (r *Reconciler) reconcile(ctx context.Context, remote []calendar.RemoteEvent, from, to time.Time) (*Result, error) {
	policy, err := r.policies.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}
	loc, err := policy.Location()
	if err != nil {
		return nil, err
	}

	mirrored, err := r.blocks.ListMirrored(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing mirrored blocks: %w", err)
	}
	local := make(map[string]*domain.Block, len(mirrored))
	for _, b := range mirrored {
		local[*b.CalendarEventID] = b
	}

	liveRemote := make(map[string]bool, len(remote))
	result := &Result{}

	for _, ev := range remote {
		switch {
		case ev.Deleted:
			b, ok := local[ev.ID]
			if !ok {
				continue
			}
			if err := r.deleteRemote(ctx, b, result); err != nil {
				return nil, err
			}
		case local[ev.ID] == nil:
			liveRemote[ev.ID] = true
			b, err := r.importEvent(ctx, ev, loc)
			if err != nil {
				return nil, err
			}
			result.Added = append(result.Added, b)
			r.sink.Notify(ctx, notify.EventExternalAdded, map[string]any{
				"event_id": ev.ID,
				"block_id": b.ID,
			})
		default:
			liveRemote[ev.ID] = true
			b := local[ev.ID]
			if b.StartAt.Equal(ev.StartAt) && b.EndAt.Equal(ev.EndAt) {
				continue
			}
			b.StartAt = ev.StartAt
			b.EndAt = ev.EndAt
			b.Date = ev.StartAt.In(loc).Format(domain.DateLayout)
			if err := r.blocks.Update(ctx, b); err != nil {
				return nil, fmt.Errorf("updating block %s: %w", b.ID, err)
			}
			result.Updated = append(result.Updated, b)
			r.sink.Notify(ctx, notify.EventBlockUpdated, map[string]any{
				"event_id": ev.ID,
				"block_id": b.ID,
			})
		}
	}

	// Mirrored blocks whose event vanished from the remote set count as
	// remotely deleted.
	bounded := !from.IsZero() || !to.IsZero()
	for eventID, b := range local {
		if liveRemote[eventID] {
			continue
		}
		if bounded && (b.StartAt.Before(from) || !b.StartAt.Before(to)) {
			continue
		}
		if alreadyDeleted(result.Deleted, b.ID) {
			continue
		}
		if err := r.deleteRemote(ctx, b, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// deleteRemote removes a block the calendar no longer has, recording a
// suppression first so generation does not resurrect it.
func (r *Reconciler) deleteRemote(ctx context.Context, b *domain.Block, result *Result) error {
	reason := "deleted on external calendar"
	if err := r.suppressions.Record(ctx, b.Instance, &reason, r.now().UTC()); err != nil {
		return fmt.Errorf("recording suppression for %s: %w", b.Instance, err)
	}
	if _, err := r.blocks.Delete(ctx, b.ID); err != nil {
		return fmt.Errorf("deleting block %s: %w", b.ID, err)
	}
	result.Deleted = append(result.Deleted, b.ID)
	r.sink.Notify(ctx, notify.EventBlockDeleted, map[string]any{
		"event_id": *b.CalendarEventID,
		"block_id": b.ID,
	})
	return nil
}

// importEvent creates a local soft block for a remote event the engine has
// never seen.
func (r *Reconciler) importEvent(ctx context.Context, ev calendar.RemoteEvent, loc *time.Location) (*domain.Block, error) {
	date := ev.StartAt.In(loc).Format(domain.DateLayout)
	b, err := domain.NewBlock(
		r.idFactory(),
		domain.CalendarInstance(ev.ID, date),
		date,
		ev.StartAt,
		ev.EndAt,
		domain.BlockShallow,
		domain.FirmnessSoft,
		0,
		domain.SourceCalendar,
		nil,
		r.now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("building block for event %s: %w", ev.ID, err)
	}
	eventID := ev.ID
	b.CalendarEventID = &eventID
	if _, err := r.blocks.CreateIfAbsent(ctx, b); err != nil {
		return nil, fmt.Errorf("creating block for event %s: %w", ev.ID, err)
	}
	return b, nil
}

func alreadyDeleted(ids []string, id string) bool {
	for _, d := range ids {
		if d == id {
			return true
		}
	}
	return false
}
