package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/blocksched/internal/db"
	"github.com/alexanderramin/blocksched/internal/domain"
)

// SQLitePolicyRepo persists the singleton scheduling policy. Get falls back
// to the built-in default until the first Upsert.
type SQLitePolicyRepo struct {
	db db.DBTX
}

func NewSQLitePolicyRepo(db db.DBTX) *SQLitePolicyRepo {
	return &SQLitePolicyRepo{db: db}
}

func (r *SQLitePolicyRepo) Get(ctx context.Context) (*domain.Policy, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT work_start, work_end, work_days, timezone,
		block_duration_minutes, break_duration_minutes, min_block_gap_minutes
		FROM policy WHERE id = 1`)

	var (
		p        domain.Policy
		workDays string
	)
	err := row.Scan(&p.WorkHours.Start, &p.WorkHours.End, &workDays, &p.Timezone,
		&p.BlockDurationMinutes, &p.BreakDurationMinutes, &p.MinBlockGapMinutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			def := domain.DefaultPolicy()
			return &def, nil
		}
		return nil, fmt.Errorf("loading policy: %w", err)
	}
	p.WorkHours.Days = weekdaysFromCSV(workDays)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("stored policy invalid: %w", err)
	}
	return &p, nil
}

func (r *SQLitePolicyRepo) Upsert(ctx context.Context, p *domain.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO policy (id, work_start, work_end, work_days, timezone,
			block_duration_minutes, break_duration_minutes, min_block_gap_minutes)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			work_start = excluded.work_start,
			work_end = excluded.work_end,
			work_days = excluded.work_days,
			timezone = excluded.timezone,
			block_duration_minutes = excluded.block_duration_minutes,
			break_duration_minutes = excluded.break_duration_minutes,
			min_block_gap_minutes = excluded.min_block_gap_minutes`,
		p.WorkHours.Start,
		p.WorkHours.End,
		weekdaysToCSV(p.WorkHours.Days),
		p.Timezone,
		p.BlockDurationMinutes,
		p.BreakDurationMinutes,
		p.MinBlockGapMinutes,
	)
	if err != nil {
		return fmt.Errorf("storing policy: %w", err)
	}
	return nil
}
