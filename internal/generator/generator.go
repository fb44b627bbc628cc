// Package generator computes free slots against busy calendar intervals and
// produces draft blocks that never overlap existing events and always lie
// inside the policy's work window.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/interval"
	"github.com/alexanderramin/blocksched/internal/policy"
)

// SuppressionChecker answers whether an instance key has been suppressed.
// Consulted before any candidate block is emitted.
type SuppressionChecker interface {
	IsSuppressed(ctx context.Context, instance string) (bool, error)
}

// Options steers a single generation run. Generation is deterministic given
// the same inputs and a deterministic IDFactory.
type Options struct {
	Source         domain.BlockSource
	SourceID       string
	Type           domain.BlockType
	Firmness       domain.Firmness
	MaxBlocks      int // 0 means unlimited
	ExistingBlocks []*domain.Block
	IDFactory      func() string
	Now            time.Time
}

// Generator is a pure slot/block computation engine over one policy.
type Generator struct {
	policy       domain.Policy
	suppressions SuppressionChecker
}

func New(p domain.Policy, suppressions SuppressionChecker) *Generator {
	return &Generator{policy: p, suppressions: suppressions}
}

// FindFreeSlots computes the free intervals of the work window of date,
// after removing existingEvents and dropping fragments shorter than one
// block duration.
func (g *Generator) FindFreeSlots(date string, existingEvents []interval.Span) ([]interval.Span, error) {
	window, weekday, err := g.workWindow(date)
	if err != nil {
		return nil, err
	}
	if !g.policy.WorkHours.WorksOn(weekday) {
		return nil, nil
	}

	var busy []interval.Span
	for _, ev := range existingEvents {
		if clipped, ok := interval.Clip(ev, window.Start, window.End); ok {
			busy = append(busy, clipped)
		}
	}
	raw := interval.Invert(window.Start, window.End, interval.Merge(busy))
	filtered := policy.FilterSlots(g.policy, raw)

	minLen := time.Duration(g.policy.BlockDurationMinutes) * time.Minute
	var slots []interval.Span
	for _, slot := range filtered {
		if slot.Duration() >= minLen {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// GenerateBlocks greedily places draft blocks into the free slots of date.
// Suppressed instances are skipped without counting toward MaxBlocks;
// instances already present among ExistingBlocks are idempotent no-ops.
func (g *Generator) GenerateBlocks(ctx context.Context, date string, existingEvents []interval.Span, opts Options) ([]*domain.Block, error) {
	if opts.IDFactory == nil {
		return nil, fmt.Errorf("generate blocks: id factory is required")
	}
	slots, err := g.FindFreeSlots(date, existingEvents)
	if err != nil {
		return nil, err
	}

	taken := make([]interval.Span, 0, len(existingEvents)+len(opts.ExistingBlocks))
	taken = append(taken, existingEvents...)
	existingInstances := make(map[string]bool, len(opts.ExistingBlocks))
	for _, b := range opts.ExistingBlocks {
		taken = append(taken, interval.Span{Start: b.StartAt, End: b.EndAt})
		existingInstances[b.Instance] = true
	}

	blockLen := time.Duration(g.policy.BlockDurationMinutes) * time.Minute
	gap := time.Duration(g.policy.MinBlockGapMinutes) * time.Minute
	firmness := opts.Firmness
	if firmness == "" {
		firmness = domain.FirmnessDraft
	}

	var generated []*domain.Block
	seq := 0
	for _, slot := range slots {
		cursor := slot.Start
		for !cursor.Add(blockLen).After(slot.End) {
			if opts.MaxBlocks > 0 && len(generated) >= opts.MaxBlocks {
				return generated, nil
			}

			candidate := interval.Span{Start: cursor, End: cursor.Add(blockLen)}
			instance := domain.GeneratedInstance(opts.Source, opts.SourceID, date, seq)
			seq++
			cursor = candidate.End.Add(gap)

			if conflicts(candidate, taken) {
				continue
			}
			if existingInstances[instance] {
				continue
			}
			suppressed, err := g.suppressed(ctx, instance)
			if err != nil {
				return nil, err
			}
			if suppressed {
				continue
			}

			block, err := domain.NewBlock(
				opts.IDFactory(), instance, date,
				candidate.Start, candidate.End,
				opts.Type, firmness,
				g.plannedPomodoros(),
				opts.Source, optionalSourceID(opts.SourceID), opts.Now,
			)
			if err != nil {
				return nil, fmt.Errorf("building generated block: %w", err)
			}
			taken = append(taken, candidate)
			generated = append(generated, block)
		}
	}
	return generated, nil
}

// RelocateBlock moves an overlapped block into the first free slot of its
// date that fits its original duration. Identity (id, instance) is kept.
// Returns nil when no slot fits; the caller is expected to request manual
// adjustment instead of failing.
func (g *Generator) RelocateBlock(block *domain.Block, existingEvents []interval.Span) (*domain.Block, error) {
	slots, err := g.FindFreeSlots(block.Date, existingEvents)
	if err != nil {
		return nil, err
	}

	duration := block.Duration()
	for _, slot := range slots {
		if slot.Duration() < duration {
			continue
		}
		newStart := slot.Start
		newEnd := newStart.Add(duration)
		if newStart.Equal(block.StartAt) && newEnd.Equal(block.EndAt) {
			continue // no-op relocation
		}
		moved := *block
		moved.StartAt = newStart
		moved.EndAt = newEnd
		return &moved, nil
	}
	return nil, nil
}

// PlannedPomodoros derives how many pomodoros fit a block of the policy's
// duration: floor(duration / (25 + break)), never less than one.
func PlannedPomodoros(blockDurationMinutes, breakDurationMinutes int) int {
	cycle := 25 + breakDurationMinutes
	n := blockDurationMinutes / cycle
	if n < 1 {
		return 1
	}
	return n
}

func (g *Generator) plannedPomodoros() int {
	return PlannedPomodoros(g.policy.BlockDurationMinutes, g.policy.BreakDurationMinutes)
}

func (g *Generator) workWindow(date string) (interval.Span, time.Weekday, error) {
	loc, err := g.policy.Location()
	if err != nil {
		return interval.Span{}, 0, err
	}
	day, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return interval.Span{}, 0, fmt.Errorf("date must be YYYY-MM-DD: %q", date)
	}
	if !g.policy.WorkHours.WorksOn(day.Weekday()) {
		return interval.Span{}, day.Weekday(), nil
	}
	window, err := policy.WorkWindowForDate(g.policy, date)
	if err != nil {
		return interval.Span{}, day.Weekday(), err
	}
	return window, day.Weekday(), nil
}

func (g *Generator) suppressed(ctx context.Context, instance string) (bool, error) {
	if g.suppressions == nil {
		return false, nil
	}
	ok, err := g.suppressions.IsSuppressed(ctx, instance)
	if err != nil {
		return false, fmt.Errorf("checking suppression for %s: %w", instance, err)
	}
	return ok, nil
}

func conflicts(candidate interval.Span, taken []interval.Span) bool {
	for _, t := range taken {
		if interval.Overlaps(candidate, t) {
			return true
		}
	}
	return false
}

func optionalSourceID(sourceID string) *string {
	if sourceID == "" {
		return nil
	}
	return &sourceID
}
