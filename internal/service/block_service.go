package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/blocksched/internal/calendar"
	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/repository"
)

type blockService struct {
	blocks       repository.BlockRepo
	suppressions repository.SuppressionRepo
	gateway      calendar.Gateway
	observer     UseCaseObserver
	now          func() time.Time
}

// NewBlockService builds the block operations service. gateway may be nil
// when no calendar is configured; mirror pushes are then skipped.
func NewBlockService(blocks repository.BlockRepo, suppressions repository.SuppressionRepo, gateway calendar.Gateway, observers ...UseCaseObserver) BlockService {
	return &blockService{
		blocks:       blocks,
		suppressions: suppressions,
		gateway:      gateway,
		observer:     useCaseObserverOrNoop(observers),
		now:          time.Now,
	}
}

func (s *blockService) CreateManualBlock(ctx context.Context, date string, startAt, endAt time.Time, blockType domain.BlockType, plannedPomodoros int) (*domain.Block, error) {
	startedAt := time.Now()
	var err error
	defer func() {
		observe(ctx, s.observer, "create_manual_block", startedAt, err, map[string]any{
			"date": date,
		})
	}()

	id := uuid.New().String()
	b, err := domain.NewBlock(id, domain.ManualInstance(id), date, startAt, endAt,
		blockType, domain.FirmnessSoft, plannedPomodoros, domain.SourceManual, nil, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err = s.blocks.Create(ctx, b); err != nil {
		return nil, err
	}
	if s.gateway != nil {
		eventID, gwErr := s.gateway.CreateDraftBlockEvent(ctx, b)
		if gwErr != nil {
			err = fmt.Errorf("mirroring block %s: %w", b.ID, gwErr)
			return nil, err
		}
		b.CalendarEventID = &eventID
		if err = s.blocks.Update(ctx, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *blockService) ApproveBlocks(ctx context.Context, ids []string) ([]*domain.Block, error) {
	startedAt := time.Now()
	var approved []*domain.Block
	var err error
	defer func() {
		observe(ctx, s.observer, "approve_blocks", startedAt, err, map[string]any{
			"requested": len(ids),
			"approved":  len(approved),
		})
	}()

	for _, id := range ids {
		b, getErr := s.blocks.GetByID(ctx, id)
		if getErr != nil {
			// Best-effort batch: unknown ids are skipped, other failures abort.
			if isNotFound(getErr) {
				continue
			}
			err = getErr
			return nil, err
		}
		b.Firmness = domain.FirmnessSoft
		if err = s.blocks.Update(ctx, b); err != nil {
			return nil, fmt.Errorf("approving block %s: %w", id, err)
		}
		if err = s.pushMirror(ctx, b); err != nil {
			return nil, err
		}
		approved = append(approved, b)
	}
	return approved, nil
}

func (s *blockService) DeleteBlock(ctx context.Context, id string) (bool, error) {
	startedAt := time.Now()
	var existed bool
	var err error
	defer func() {
		observe(ctx, s.observer, "delete_block", startedAt, err, map[string]any{
			"block_id": id,
			"existed":  existed,
		})
	}()

	b, getErr := s.blocks.GetByID(ctx, id)
	if getErr != nil {
		if isNotFound(getErr) {
			return false, nil
		}
		err = getErr
		return false, err
	}

	// The suppression goes in first so a crash mid-delete cannot lead to the
	// block being regenerated.
	reason := "deleted by user"
	if err = s.suppressions.Record(ctx, b.Instance, &reason, s.now().UTC()); err != nil {
		return false, fmt.Errorf("suppressing %s: %w", b.Instance, err)
	}
	if s.gateway != nil && b.Mirrored() {
		if err = s.gateway.DeleteEvent(ctx, *b.CalendarEventID); err != nil {
			return false, fmt.Errorf("deleting mirror for %s: %w", id, err)
		}
	}
	existed, err = s.blocks.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (s *blockService) AdjustBlockTime(ctx context.Context, id string, startAt, endAt time.Time) (*domain.Block, error) {
	startedAt := time.Now()
	var err error
	defer func() {
		observe(ctx, s.observer, "adjust_block_time", startedAt, err, map[string]any{
			"block_id": id,
		})
	}()

	b, err := s.blocks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.StartAt = startAt
	b.EndAt = endAt
	if err = b.Validate(); err != nil {
		return nil, err
	}
	if err = s.blocks.Update(ctx, b); err != nil {
		return nil, err
	}
	if err = s.pushMirror(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *blockService) GetBlock(ctx context.Context, id string) (*domain.Block, error) {
	return s.blocks.GetByID(ctx, id)
}

func (s *blockService) ListBlocksForDate(ctx context.Context, date string) ([]*domain.Block, error) {
	return s.blocks.ListByDate(ctx, date)
}

func (s *blockService) pushMirror(ctx context.Context, b *domain.Block) error {
	if s.gateway == nil || !b.Mirrored() {
		return nil
	}
	if err := s.gateway.UpdateEvent(ctx, *b.CalendarEventID, b); err != nil {
		return fmt.Errorf("pushing mirror for %s: %w", b.ID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
