package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/blocksched/internal/db"
	"github.com/alexanderramin/blocksched/internal/domain"
)

// SQLiteSyncStateRepo holds the singleton calendar sync cursor. Load returns
// a zero-value state before the first Save.
type SQLiteSyncStateRepo struct {
	db db.DBTX
}

func NewSQLiteSyncStateRepo(db db.DBTX) *SQLiteSyncStateRepo {
	return &SQLiteSyncStateRepo{db: db}
}

func (r *SQLiteSyncStateRepo) Load(ctx context.Context) (*domain.SyncState, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT sync_token, last_synced_at FROM sync_state WHERE id = 1`)

	var (
		token        sql.NullString
		lastSyncedAt string
	)
	if err := row.Scan(&token, &lastSyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.SyncState{}, nil
		}
		return nil, fmt.Errorf("loading sync state: %w", err)
	}
	at, err := time.Parse(time.RFC3339, lastSyncedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing last_synced_at: %w", err)
	}
	return &domain.SyncState{SyncToken: nullableStr(token), LastSyncedAt: at}, nil
}

func (r *SQLiteSyncStateRepo) Save(ctx context.Context, token *string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_state (id, sync_token, last_synced_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sync_token = excluded.sync_token,
			last_synced_at = excluded.last_synced_at`,
		nullableStrToValue(token),
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}
