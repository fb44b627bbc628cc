package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/blocksched/internal/calendar"
	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/generator"
	"github.com/alexanderramin/blocksched/internal/interval"
	"github.com/alexanderramin/blocksched/internal/notify"
	"github.com/alexanderramin/blocksched/internal/policy"
	"github.com/alexanderramin/blocksched/internal/reconcile"
	"github.com/alexanderramin/blocksched/internal/repository"
)

// autoSourceID keys the free-slot fill pass so its instances stay distinct
// from named routines.
const autoSourceID = "auto"

type planningService struct {
	blocks       repository.BlockRepo
	routines     repository.RoutineRepo
	suppressions repository.SuppressionRepo
	policies     repository.PolicyRepo
	syncStates   repository.SyncStateRepo
	events       calendar.EventSource
	gateway      calendar.Gateway
	reconciler   *reconcile.Reconciler
	sink         notify.Sink
	observer     UseCaseObserver
	override     *domain.PolicyOverride
	idFactory    func() string
	now          func() time.Time
}

type PlanningOption func(*planningService)

// WithPolicyOverride applies a policy override to every planning run.
func WithPolicyOverride(o *domain.PolicyOverride) PlanningOption {
	return func(s *planningService) { s.override = o }
}

// WithPlanningObserver attaches a use-case observer.
func WithPlanningObserver(obs UseCaseObserver) PlanningOption {
	return func(s *planningService) { s.observer = obs }
}

// NewPlanningService wires the generation/relocation/sync orchestration.
// events and gateway may be nil for an offline setup.
func NewPlanningService(
	blocks repository.BlockRepo,
	routines repository.RoutineRepo,
	suppressions repository.SuppressionRepo,
	policies repository.PolicyRepo,
	syncStates repository.SyncStateRepo,
	events calendar.EventSource,
	gateway calendar.Gateway,
	reconciler *reconcile.Reconciler,
	sink notify.Sink,
	opts ...PlanningOption,
) PlanningService {
	if sink == nil {
		sink = notify.Noop{}
	}
	s := &planningService{
		blocks:       blocks,
		routines:     routines,
		suppressions: suppressions,
		policies:     policies,
		syncStates:   syncStates,
		events:       events,
		gateway:      gateway,
		reconciler:   reconciler,
		sink:         sink,
		observer:     NoopUseCaseObserver{},
		idFactory:    func() string { return uuid.New().String() },
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *planningService) GenerateForDate(ctx context.Context, date string) ([]*domain.Block, error) {
	startedAt := time.Now()
	var created []*domain.Block
	var err error
	defer func() {
		observe(ctx, s.observer, "generate_for_date", startedAt, err, map[string]any{
			"date":    date,
			"created": len(created),
		})
	}()

	pol, err := s.effectivePolicy(ctx)
	if err != nil {
		return nil, err
	}
	busy, err := s.busySpans(ctx, *pol, date)
	if err != nil {
		return nil, err
	}
	existing, err := s.blocks.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	weekday, err := dateWeekday(*pol, date)
	if err != nil {
		return nil, err
	}

	// Named routines first: each claims its own start time.
	routines, err := s.routines.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rt := range routines {
		if !rt.AppliesOn(date, weekday) {
			continue
		}
		blocks, genErr := s.generateRoutine(ctx, *pol, rt, date, busy, existing)
		if genErr != nil {
			err = genErr
			return nil, err
		}
		persisted, perErr := s.persist(ctx, blocks)
		if perErr != nil {
			err = perErr
			return nil, err
		}
		created = append(created, persisted...)
		existing = append(existing, persisted...)
	}

	// Fill pass: policy-sized draft blocks in the remaining free slots.
	gen := generator.New(*pol, s.suppressions)
	blocks, err := gen.GenerateBlocks(ctx, date, busy, generator.Options{
		Source:         domain.SourceRoutine,
		SourceID:       autoSourceID,
		Type:           domain.BlockDeep,
		ExistingBlocks: existing,
		IDFactory:      s.idFactory,
		Now:            s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	persisted, err := s.persist(ctx, blocks)
	if err != nil {
		return nil, err
	}
	created = append(created, persisted...)
	return created, nil
}

// generateRoutine narrows the policy to the routine's own window so the
// generator places exactly the routine's block.
func (s *planningService) generateRoutine(ctx context.Context, pol domain.Policy, rt *domain.Routine, date string, busy []interval.Span, existing []*domain.Block) ([]*domain.Block, error) {
	startHour, startMinute, err := domain.ParseHHMM(rt.Start)
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", rt.ID, err)
	}
	endTotal := startHour*60 + startMinute + rt.DurationMinutes
	if endTotal > 24*60 {
		return nil, fmt.Errorf("routine %s runs past midnight", rt.ID)
	}

	scoped := pol
	scoped.WorkHours.Start = rt.Start
	scoped.WorkHours.End = fmt.Sprintf("%02d:%02d", endTotal/60, endTotal%60)
	scoped.WorkHours.Days = rt.Days
	scoped.BlockDurationMinutes = rt.DurationMinutes

	gen := generator.New(scoped, s.suppressions)
	blocks, err := gen.GenerateBlocks(ctx, date, busy, generator.Options{
		Source:         domain.SourceRoutine,
		SourceID:       rt.ID,
		Type:           rt.Type,
		Firmness:       rt.Firmness,
		MaxBlocks:      1,
		ExistingBlocks: existing,
		IDFactory:      s.idFactory,
		Now:            s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", rt.ID, err)
	}
	for _, b := range blocks {
		b.PlannedPomodoros = rt.Pomodoros
	}
	return blocks, nil
}

// persist stores each generated block, mirrors it when a gateway is
// configured, and returns the blocks that were actually new.
func (s *planningService) persist(ctx context.Context, blocks []*domain.Block) ([]*domain.Block, error) {
	var out []*domain.Block
	for _, b := range blocks {
		inserted, err := s.blocks.CreateIfAbsent(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("persisting block %s: %w", b.Instance, err)
		}
		if !inserted {
			continue
		}
		if s.gateway != nil {
			eventID, err := s.gateway.CreateDraftBlockEvent(ctx, b)
			if err != nil {
				return nil, fmt.Errorf("mirroring block %s: %w", b.ID, err)
			}
			b.CalendarEventID = &eventID
			if err := s.blocks.Update(ctx, b); err != nil {
				return nil, fmt.Errorf("storing mirror id for %s: %w", b.ID, err)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *planningService) RelocateIfNeeded(ctx context.Context, blockID string) (*domain.Block, bool, error) {
	startedAt := time.Now()
	var moved bool
	var err error
	defer func() {
		observe(ctx, s.observer, "relocate_if_needed", startedAt, err, map[string]any{
			"block_id": blockID,
			"moved":    moved,
		})
	}()

	b, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		return nil, false, err
	}
	pol, err := s.effectivePolicy(ctx)
	if err != nil {
		return nil, false, err
	}
	busy, err := s.busySpans(ctx, *pol, b.Date)
	if err != nil {
		return nil, false, err
	}

	span := interval.Span{Start: b.StartAt, End: b.EndAt}
	conflicted := false
	for _, ev := range busy {
		if interval.Overlaps(span, ev) {
			conflicted = true
			break
		}
	}
	if !conflicted {
		return b, true, nil
	}

	gen := generator.New(*pol, s.suppressions)
	relocated, err := gen.RelocateBlock(b, busy)
	if err != nil {
		return nil, false, err
	}
	if relocated == nil {
		s.sink.Notify(ctx, notify.EventAdjustmentRequired, map[string]any{
			"block_id": b.ID,
			"date":     b.Date,
		})
		return nil, false, nil
	}
	if err = s.blocks.Update(ctx, relocated); err != nil {
		return nil, false, err
	}
	if s.gateway != nil && relocated.Mirrored() {
		if err = s.gateway.UpdateEvent(ctx, *relocated.CalendarEventID, relocated); err != nil {
			return nil, false, fmt.Errorf("pushing mirror for %s: %w", relocated.ID, err)
		}
	}
	moved = true
	return relocated, true, nil
}

func (s *planningService) Sync(ctx context.Context, windowDays int) (int, int, int, error) {
	startedAt := time.Now()
	var result *reconcile.Result
	var err error
	defer func() {
		fields := map[string]any{"window_days": windowDays}
		if result != nil {
			fields["added"] = len(result.Added)
			fields["updated"] = len(result.Updated)
			fields["deleted"] = len(result.Deleted)
		}
		observe(ctx, s.observer, "sync", startedAt, err, fields)
	}()

	if s.events == nil {
		err = fmt.Errorf("sync: no remote event source configured")
		return 0, 0, 0, err
	}
	if windowDays <= 0 {
		windowDays = 7
	}

	state, err := s.syncStates.Load(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	token := ""
	if state.SyncToken != nil {
		token = *state.SyncToken
	}
	changed, nextToken, err := s.events.ChangedSince(ctx, token)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("fetching changes: %w", err)
	}
	now := s.now().UTC()
	if len(changed) == 0 && state.SyncToken != nil {
		if err = s.syncStates.Save(ctx, &nextToken, now); err != nil {
			return 0, 0, 0, err
		}
		return 0, 0, 0, nil
	}

	from := now.AddDate(0, 0, -windowDays)
	to := now.AddDate(0, 0, windowDays)
	remote, err := s.events.ListEvents(ctx, from, to)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("listing events: %w", err)
	}
	// Deletions never appear in a listing; splice in the tombstones from the
	// change feed.
	listed := make(map[string]bool, len(remote))
	for _, ev := range remote {
		listed[ev.ID] = true
	}
	for _, ev := range changed {
		if ev.Deleted && !listed[ev.ID] {
			remote = append(remote, ev)
		}
	}

	result, err = s.reconciler.ReconcileWindow(ctx, remote, from, to)
	if err != nil {
		return 0, 0, 0, err
	}
	if err = s.syncStates.Save(ctx, &nextToken, now); err != nil {
		return 0, 0, 0, err
	}
	return len(result.Added), len(result.Updated), len(result.Deleted), nil
}

// effectivePolicy loads the stored policy and applies the configured
// override, if any.
func (s *planningService) effectivePolicy(ctx context.Context) (*domain.Policy, error) {
	pol, err := s.policies.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s.override == nil {
		return pol, nil
	}
	applied := policy.ApplyOverride(*pol, s.override, s.now().UTC())
	return &applied, nil
}

// busySpans lists remote events overlapping the date's full day in the
// policy's zone.
func (s *planningService) busySpans(ctx context.Context, pol domain.Policy, date string) ([]interval.Span, error) {
	if s.events == nil {
		return nil, nil
	}
	loc, err := pol.Location()
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %q", date)
	}
	events, err := s.events.ListEvents(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("listing events for %s: %w", date, err)
	}
	spans := make([]interval.Span, 0, len(events))
	for _, ev := range events {
		spans = append(spans, interval.Span{Start: ev.StartAt, End: ev.EndAt})
	}
	return spans, nil
}

func dateWeekday(pol domain.Policy, date string) (time.Weekday, error) {
	loc, err := pol.Location()
	if err != nil {
		return 0, err
	}
	day, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return 0, fmt.Errorf("date must be YYYY-MM-DD: %q", date)
	}
	return day.Weekday(), nil
}
