package reconcile

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/calendar"
	"github.com/alexanderramin/blocksched/internal/repository"
	"github.com/alexanderramin/blocksched/internal/testutil"
)

// TestReconcile_Property_Completeness checks that after one pass every live
// remote event has exactly one mirrored block with matching times, and every
// stale mirrored block is gone.
func TestReconcile_Property_Completeness(t *testing.T) {
	rng := rand.New(rand.NewSource(61))
	ctx := context.Background()

	for trial := 0; trial < 60; trial++ {
		db := testutil.NewTestDB(t)
		blocks := repository.NewSQLiteBlockRepo(db)
		rec := New(blocks, repository.NewSQLiteSuppressionRepo(db), repository.NewSQLitePolicyRepo(db), nil)

		day := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)

		// Random remote set; some events deleted.
		n := rng.Intn(8)
		var remote []calendar.RemoteEvent
		for i := 0; i < n; i++ {
			start := day.Add(time.Duration(rng.Intn(20)) * time.Hour)
			remote = append(remote, calendar.RemoteEvent{
				ID:      fmt.Sprintf("evt-%d-%d", trial, i),
				StartAt: start,
				EndAt:   start.Add(time.Duration(30+rng.Intn(90)) * time.Minute),
				Deleted: rng.Intn(4) == 0,
			})
		}

		// Mirror a random subset locally, some with drifted times, plus a few
		// stale mirrors the remote no longer knows.
		for i, ev := range remote {
			if rng.Intn(2) == 0 {
				continue
			}
			start := ev.StartAt
			if rng.Intn(2) == 0 {
				start = start.Add(time.Duration(rng.Intn(120)) * time.Minute)
			}
			b := testutil.NewTestBlock(start, testutil.WithCalendarEventID(ev.ID),
				testutil.WithInstance(fmt.Sprintf("manual:stale-%d-%d", trial, i)))
			require.NoError(t, blocks.Create(ctx, b))
		}
		for i := 0; i < rng.Intn(3); i++ {
			b := testutil.NewTestBlock(day.Add(time.Duration(rng.Intn(20))*time.Hour),
				testutil.WithCalendarEventID(fmt.Sprintf("evt-stale-%d-%d", trial, i)))
			require.NoError(t, blocks.Create(ctx, b))
		}

		_, err := rec.Reconcile(ctx, remote)
		require.NoError(t, err)

		mirrored, err := blocks.ListMirrored(ctx)
		require.NoError(t, err)
		byEvent := make(map[string]int)
		for _, b := range mirrored {
			byEvent[*b.CalendarEventID]++
		}

		live := make(map[string]calendar.RemoteEvent)
		for _, ev := range remote {
			if !ev.Deleted {
				live[ev.ID] = ev
			}
		}

		for id, ev := range live {
			assert.Equal(t, 1, byEvent[id], "trial %d: event %s should have exactly one mirror", trial, id)
			for _, b := range mirrored {
				if *b.CalendarEventID == id {
					assert.True(t, b.StartAt.Equal(ev.StartAt), "trial %d: start mismatch for %s", trial, id)
					assert.True(t, b.EndAt.Equal(ev.EndAt), "trial %d: end mismatch for %s", trial, id)
				}
			}
		}
		for id := range byEvent {
			_, ok := live[id]
			assert.True(t, ok, "trial %d: mirror for %s should have been deleted", trial, id)
		}
	}
}
