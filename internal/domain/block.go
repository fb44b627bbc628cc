package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format used across the module.
const DateLayout = "2006-01-02"

// Block is a scheduled work interval. The external calendar remains the
// system of record for mirrored blocks; CalendarEventID is nil until a block
// has been pushed there.
type Block struct {
	ID               string
	Instance         string
	Date             string
	StartAt          time.Time
	EndAt            time.Time
	Type             BlockType
	Firmness         Firmness
	PlannedPomodoros int
	Status           BlockStatus
	Source           BlockSource
	SourceID         *string
	TaskRefs         []string
	CalendarEventID  *string
	TaskID           *string
	CreatedAt        time.Time
}

// NewBlock constructs a validated Block. Invalid blocks are rejected here,
// never coerced downstream.
func NewBlock(id, instance, date string, startAt, endAt time.Time, blockType BlockType, firmness Firmness, plannedPomodoros int, source BlockSource, sourceID *string, createdAt time.Time) (*Block, error) {
	b := &Block{
		ID:               id,
		Instance:         instance,
		Date:             date,
		StartAt:          startAt,
		EndAt:            endAt,
		Type:             blockType,
		Firmness:         firmness,
		PlannedPomodoros: plannedPomodoros,
		Status:           BlockPlanned,
		Source:           source,
		SourceID:         sourceID,
		CreatedAt:        createdAt,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Block) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("block.id must not be empty")
	}
	if b.Instance == "" {
		return fmt.Errorf("block.instance must not be empty")
	}
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return fmt.Errorf("block.date must be YYYY-MM-DD: %q", b.Date)
	}
	if !b.EndAt.After(b.StartAt) {
		return fmt.Errorf("block.end_at must be after block.start_at")
	}
	if b.PlannedPomodoros < 0 {
		return fmt.Errorf("block.planned_pomodoros must be >= 0")
	}
	if !ValidBlockTypes[string(b.Type)] {
		return fmt.Errorf("block.type %q is not a valid block type", b.Type)
	}
	if !ValidBlockSources[string(b.Source)] {
		return fmt.Errorf("block.source %q is not a valid block source", b.Source)
	}
	return nil
}

// Duration returns the block's scheduled length.
func (b *Block) Duration() time.Duration {
	return b.EndAt.Sub(b.StartAt)
}

// Mirrored reports whether the block has an external calendar event.
func (b *Block) Mirrored() bool {
	return b.CalendarEventID != nil && *b.CalendarEventID != ""
}

// HasTaskRef reports whether taskID is already linked to the block.
func (b *Block) HasTaskRef(taskID string) bool {
	for _, ref := range b.TaskRefs {
		if ref == taskID {
			return true
		}
	}
	return false
}

// GeneratedInstance builds the idempotency key for generator-produced blocks:
// (source, sourceId, date, sequence). Re-running generation over the same
// inputs yields the same keys.
func GeneratedInstance(source BlockSource, sourceID, date string, seq int) string {
	return fmt.Sprintf("%s:%s:%s:%d", source, sourceID, date, seq)
}

// ManualInstance builds the idempotency key for manually created blocks.
func ManualInstance(id string) string {
	return fmt.Sprintf("manual:%s", id)
}

// CalendarInstance builds the idempotency key for blocks discovered on the
// external calendar.
func CalendarInstance(eventID, date string) string {
	return fmt.Sprintf("calendar:%s:%s", eventID, date)
}
