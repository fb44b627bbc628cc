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

const routineColumns = `id, name, days, start, duration_minutes, type, pomodoros,
		firmness, skip_dates, carryover, created_at`

type SQLiteRoutineRepo struct {
	db db.DBTX
}

func NewSQLiteRoutineRepo(db db.DBTX) *SQLiteRoutineRepo {
	return &SQLiteRoutineRepo{db: db}
}

func (r *SQLiteRoutineRepo) Create(ctx context.Context, rt *domain.Routine) error {
	if err := rt.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO routines (`+routineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID,
		rt.Name,
		weekdaysToCSV(rt.Days),
		rt.Start,
		rt.DurationMinutes,
		string(rt.Type),
		rt.Pomodoros,
		string(rt.Firmness),
		datesToCSV(rt.SkipDates),
		boolToInt(rt.Carryover),
		rt.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting routine: %w", err)
	}
	return nil
}

func (r *SQLiteRoutineRepo) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+routineColumns+` FROM routines WHERE id = ?`, id)
	rt, err := scanRoutine(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("routine: %w", ErrNotFound)
		}
		return nil, err
	}
	return rt, nil
}

func (r *SQLiteRoutineRepo) List(ctx context.Context) ([]*domain.Routine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+routineColumns+` FROM routines ORDER BY start, name`)
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	defer rows.Close()

	var routines []*domain.Routine
	for rows.Next() {
		rt, err := scanRoutine(rows.Scan)
		if err != nil {
			return nil, err
		}
		routines = append(routines, rt)
	}
	return routines, rows.Err()
}

func (r *SQLiteRoutineRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting routine: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting routine: %w", err)
	}
	return affected > 0, nil
}

func scanRoutine(scan func(dest ...any) error) (*domain.Routine, error) {
	var (
		rt                            domain.Routine
		days, blockType, firmness     string
		skipDates, createdAt          string
		carryover                     int
	)
	err := scan(&rt.ID, &rt.Name, &days, &rt.Start, &rt.DurationMinutes, &blockType,
		&rt.Pomodoros, &firmness, &skipDates, &carryover, &createdAt)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing routine created_at: %w", err)
	}
	rt.Days = weekdaysFromCSV(days)
	rt.Type = domain.BlockType(blockType)
	rt.Firmness = domain.Firmness(firmness)
	rt.SkipDates = datesFromCSV(skipDates)
	rt.Carryover = intToBool(carryover)
	rt.CreatedAt = created
	return &rt, nil
}
