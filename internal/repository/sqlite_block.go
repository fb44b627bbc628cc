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

// blockColumns is the canonical SELECT column list for blocks.
const blockColumns = `id, instance, date, start_at, end_at, type, firmness,
		planned_pomodoros, status, source, source_id, calendar_event_id, task_id, created_at`

// SQLiteBlockRepo implements BlockRepo over a DBTX (plain connection or
// transaction).
type SQLiteBlockRepo struct {
	db db.DBTX
}

func NewSQLiteBlockRepo(db db.DBTX) *SQLiteBlockRepo {
	return &SQLiteBlockRepo{db: db}
}

func (r *SQLiteBlockRepo) Create(ctx context.Context, b *domain.Block) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if _, err := r.insert(ctx, b, ""); err != nil {
		return fmt.Errorf("inserting block: %w", err)
	}
	return r.replaceTaskRefs(ctx, b)
}

func (r *SQLiteBlockRepo) CreateIfAbsent(ctx context.Context, b *domain.Block) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}
	res, err := r.insert(ctx, b, " ON CONFLICT(instance) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("inserting block: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting block: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	return true, r.replaceTaskRefs(ctx, b)
}

func (r *SQLiteBlockRepo) insert(ctx context.Context, b *domain.Block, conflictClause string) (sql.Result, error) {
	query := `INSERT INTO blocks (` + blockColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)` + conflictClause
	return r.db.ExecContext(ctx, query,
		b.ID,
		b.Instance,
		b.Date,
		b.StartAt.UTC().Format(time.RFC3339),
		b.EndAt.UTC().Format(time.RFC3339),
		string(b.Type),
		string(b.Firmness),
		b.PlannedPomodoros,
		string(b.Status),
		string(b.Source),
		nullableStrToValue(b.SourceID),
		nullableStrToValue(b.CalendarEventID),
		nullableStrToValue(b.TaskID),
		b.CreatedAt.UTC().Format(time.RFC3339),
	)
}

func (r *SQLiteBlockRepo) GetByID(ctx context.Context, id string) (*domain.Block, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id)
	return r.scanBlock(ctx, row)
}

func (r *SQLiteBlockRepo) GetByInstance(ctx context.Context, instance string) (*domain.Block, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE instance = ?`, instance)
	return r.scanBlock(ctx, row)
}

func (r *SQLiteBlockRepo) ListByDate(ctx context.Context, date string) ([]*domain.Block, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE date = ? ORDER BY start_at`, date)
	if err != nil {
		return nil, fmt.Errorf("listing blocks by date: %w", err)
	}
	defer rows.Close()
	return r.scanBlocks(ctx, rows)
}

func (r *SQLiteBlockRepo) ListAll(ctx context.Context) ([]*domain.Block, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks ORDER BY start_at`)
	if err != nil {
		return nil, fmt.Errorf("listing blocks: %w", err)
	}
	defer rows.Close()
	return r.scanBlocks(ctx, rows)
}

func (r *SQLiteBlockRepo) ListMirrored(ctx context.Context) ([]*domain.Block, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks
		WHERE calendar_event_id IS NOT NULL AND calendar_event_id != ''
		ORDER BY start_at`)
	if err != nil {
		return nil, fmt.Errorf("listing mirrored blocks: %w", err)
	}
	defer rows.Close()
	return r.scanBlocks(ctx, rows)
}

func (r *SQLiteBlockRepo) Update(ctx context.Context, b *domain.Block) error {
	if err := b.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE blocks SET
		instance = ?, date = ?, start_at = ?, end_at = ?, type = ?, firmness = ?,
		planned_pomodoros = ?, status = ?, source = ?, source_id = ?,
		calendar_event_id = ?, task_id = ?
		WHERE id = ?`,
		b.Instance,
		b.Date,
		b.StartAt.UTC().Format(time.RFC3339),
		b.EndAt.UTC().Format(time.RFC3339),
		string(b.Type),
		string(b.Firmness),
		b.PlannedPomodoros,
		string(b.Status),
		string(b.Source),
		nullableStrToValue(b.SourceID),
		nullableStrToValue(b.CalendarEventID),
		nullableStrToValue(b.TaskID),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating block: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating block: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("block %s: %w", b.ID, ErrNotFound)
	}
	return r.replaceTaskRefs(ctx, b)
}

func (r *SQLiteBlockRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting block: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting block: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteBlockRepo) replaceTaskRefs(ctx context.Context, b *domain.Block) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM block_task_refs WHERE block_id = ?`, b.ID); err != nil {
		return fmt.Errorf("clearing block task refs: %w", err)
	}
	for _, taskID := range b.TaskRefs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO block_task_refs (block_id, task_id) VALUES (?, ?)`,
			b.ID, taskID); err != nil {
			return fmt.Errorf("inserting block task ref: %w", err)
		}
	}
	return nil
}

func (r *SQLiteBlockRepo) loadTaskRefs(ctx context.Context, blockID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id FROM block_task_refs WHERE block_id = ? ORDER BY task_id`, blockID)
	if err != nil {
		return nil, fmt.Errorf("loading block task refs: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("scanning block task ref: %w", err)
		}
		refs = append(refs, taskID)
	}
	return refs, rows.Err()
}

func (r *SQLiteBlockRepo) scanBlock(ctx context.Context, row *sql.Row) (*domain.Block, error) {
	var (
		b                         domain.Block
		blockType, firmness       string
		status, source            string
		startAt, endAt, createdAt string
		sourceID, eventID, taskID sql.NullString
	)
	err := row.Scan(&b.ID, &b.Instance, &b.Date, &startAt, &endAt, &blockType, &firmness,
		&b.PlannedPomodoros, &status, &source, &sourceID, &eventID, &taskID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("block: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning block: %w", err)
	}
	if err := r.hydrate(&b, blockType, firmness, status, source, startAt, endAt, createdAt, sourceID, eventID, taskID); err != nil {
		return nil, err
	}
	refs, err := r.loadTaskRefs(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.TaskRefs = refs
	return &b, nil
}

func (r *SQLiteBlockRepo) scanBlocks(ctx context.Context, rows *sql.Rows) ([]*domain.Block, error) {
	var blocks []*domain.Block
	for rows.Next() {
		var (
			b                         domain.Block
			blockType, firmness       string
			status, source            string
			startAt, endAt, createdAt string
			sourceID, eventID, taskID sql.NullString
		)
		err := rows.Scan(&b.ID, &b.Instance, &b.Date, &startAt, &endAt, &blockType, &firmness,
			&b.PlannedPomodoros, &status, &source, &sourceID, &eventID, &taskID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		if err := r.hydrate(&b, blockType, firmness, status, source, startAt, endAt, createdAt, sourceID, eventID, taskID); err != nil {
			return nil, err
		}
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range blocks {
		refs, err := r.loadTaskRefs(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.TaskRefs = refs
	}
	return blocks, nil
}

func (r *SQLiteBlockRepo) hydrate(b *domain.Block, blockType, firmness, status, source, startAt, endAt, createdAt string, sourceID, eventID, taskID sql.NullString) error {
	start, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return fmt.Errorf("parsing block start_at: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endAt)
	if err != nil {
		return fmt.Errorf("parsing block end_at: %w", err)
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("parsing block created_at: %w", err)
	}
	b.StartAt = start
	b.EndAt = end
	b.CreatedAt = created
	b.Type = domain.BlockType(blockType)
	b.Firmness = domain.Firmness(firmness)
	b.Status = domain.BlockStatus(status)
	b.Source = domain.BlockSource(source)
	b.SourceID = nullableStr(sourceID)
	b.CalendarEventID = nullableStr(eventID)
	b.TaskID = nullableStr(taskID)
	return nil
}
