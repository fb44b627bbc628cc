package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
)

// ErrNotFound is returned when an entity lookup matches no row.
var ErrNotFound = errors.New("not found")

type BlockRepo interface {
	Create(ctx context.Context, b *domain.Block) error
	// CreateIfAbsent inserts b unless a block with the same instance key
	// already exists; the second return value is false when the insert was
	// skipped. This is the insert-conflict-is-success path used by the
	// generator.
	CreateIfAbsent(ctx context.Context, b *domain.Block) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Block, error)
	GetByInstance(ctx context.Context, instance string) (*domain.Block, error)
	ListByDate(ctx context.Context, date string) ([]*domain.Block, error)
	ListAll(ctx context.Context) ([]*domain.Block, error)
	// ListMirrored returns blocks with a non-nil calendar event id; the only
	// blocks reconciliation is allowed to see.
	ListMirrored(ctx context.Context) ([]*domain.Block, error)
	Update(ctx context.Context, b *domain.Block) error
	Delete(ctx context.Context, id string) (bool, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PomodoroLogRepo interface {
	Create(ctx context.Context, l *domain.PomodoroLog) error
	GetByID(ctx context.Context, id string) (*domain.PomodoroLog, error)
	Update(ctx context.Context, l *domain.PomodoroLog) error
	// ListRange returns logs whose start time falls within [start, end],
	// ordered by start time.
	ListRange(ctx context.Context, start, end time.Time) ([]*domain.PomodoroLog, error)
	ListByBlock(ctx context.Context, blockID string) ([]*domain.PomodoroLog, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type SuppressionRepo interface {
	Record(ctx context.Context, instance string, reason *string, at time.Time) error
	IsSuppressed(ctx context.Context, instance string) (bool, error)
	List(ctx context.Context) ([]*domain.SuppressionEntry, error)
	Clear(ctx context.Context, instance string) error
	ClearAll(ctx context.Context) error
}

type PolicyRepo interface {
	// Get returns the stored policy, or the validated default when none has
	// been persisted yet.
	Get(ctx context.Context) (*domain.Policy, error)
	Upsert(ctx context.Context, p *domain.Policy) error
}

type RoutineRepo interface {
	Create(ctx context.Context, r *domain.Routine) error
	GetByID(ctx context.Context, id string) (*domain.Routine, error)
	List(ctx context.Context) ([]*domain.Routine, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type TemplateRepo interface {
	Create(ctx context.Context, t *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context) ([]*domain.Template, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type AuditRepo interface {
	Append(ctx context.Context, eventType string, payload map[string]any) error
	ListRecent(ctx context.Context, limit int) ([]*AuditEntry, error)
}

// AuditEntry is a stored audit row; payload is kept as encoded JSON.
type AuditEntry struct {
	ID        int64
	EventType string
	Payload   string
	CreatedAt time.Time
}

type SyncStateRepo interface {
	Load(ctx context.Context) (*domain.SyncState, error)
	Save(ctx context.Context, token *string, at time.Time) error
}
