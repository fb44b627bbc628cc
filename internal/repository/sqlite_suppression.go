package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/blocksched/internal/db"
	"github.com/alexanderramin/blocksched/internal/domain"
)

// SQLiteSuppressionRepo stores the tombstones consulted before any block is
// regenerated. Recording the same instance twice is a no-op; the original
// timestamp wins.
type SQLiteSuppressionRepo struct {
	db db.DBTX
}

func NewSQLiteSuppressionRepo(db db.DBTX) *SQLiteSuppressionRepo {
	return &SQLiteSuppressionRepo{db: db}
}

func (r *SQLiteSuppressionRepo) Record(ctx context.Context, instance string, reason *string, at time.Time) error {
	if instance == "" {
		return fmt.Errorf("suppression instance must not be empty")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO suppressions (instance, suppressed_at, reason) VALUES (?, ?, ?)
		ON CONFLICT(instance) DO NOTHING`,
		instance,
		at.UTC().Format(time.RFC3339),
		nullableStrToValue(reason),
	)
	if err != nil {
		return fmt.Errorf("recording suppression: %w", err)
	}
	return nil
}

func (r *SQLiteSuppressionRepo) IsSuppressed(ctx context.Context, instance string) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM suppressions WHERE instance = ?`, instance)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("checking suppression: %w", err)
	}
	return true, nil
}

func (r *SQLiteSuppressionRepo) List(ctx context.Context) ([]*domain.SuppressionEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT instance, suppressed_at, reason FROM suppressions ORDER BY suppressed_at, instance`)
	if err != nil {
		return nil, fmt.Errorf("listing suppressions: %w", err)
	}
	defer rows.Close()

	var entries []*domain.SuppressionEntry
	for rows.Next() {
		var (
			e            domain.SuppressionEntry
			suppressedAt string
			reason       sql.NullString
		)
		if err := rows.Scan(&e.Instance, &suppressedAt, &reason); err != nil {
			return nil, fmt.Errorf("scanning suppression: %w", err)
		}
		at, err := time.Parse(time.RFC3339, suppressedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing suppressed_at: %w", err)
		}
		e.SuppressedAt = at
		e.Reason = nullableStr(reason)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *SQLiteSuppressionRepo) Clear(ctx context.Context, instance string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM suppressions WHERE instance = ?`, instance); err != nil {
		return fmt.Errorf("clearing suppression: %w", err)
	}
	return nil
}

func (r *SQLiteSuppressionRepo) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM suppressions`); err != nil {
		return fmt.Errorf("clearing suppressions: %w", err)
	}
	return nil
}
