package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/blocksched/internal/db"
)

// SQLiteAuditRepo is an append-only event log. Entries are never updated or
// deleted.
type SQLiteAuditRepo struct {
	db  db.DBTX
	now func() time.Time
}

func NewSQLiteAuditRepo(db db.DBTX) *SQLiteAuditRepo {
	return &SQLiteAuditRepo{db: db, now: time.Now}
}

func (r *SQLiteAuditRepo) Append(ctx context.Context, eventType string, payload map[string]any) error {
	if eventType == "" {
		return fmt.Errorf("audit event type must not be empty")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding audit payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_log (event_type, payload, created_at) VALUES (?, ?, ?)`,
		eventType,
		string(encoded),
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

func (r *SQLiteAuditRepo) ListRecent(ctx context.Context, limit int) ([]*AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, payload, created_at FROM audit_log
		ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var (
			e         AuditEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing audit created_at: %w", err)
		}
		e.CreatedAt = created
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
