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

const pomodoroColumns = `id, block_id, task_id, phase, start_time, end_time, interruption_reason`

type SQLitePomodoroLogRepo struct {
	db db.DBTX
}

func NewSQLitePomodoroLogRepo(db db.DBTX) *SQLitePomodoroLogRepo {
	return &SQLitePomodoroLogRepo{db: db}
}

func (r *SQLitePomodoroLogRepo) Create(ctx context.Context, l *domain.PomodoroLog) error {
	if err := l.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pomodoro_logs (`+pomodoroColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.BlockID,
		nullableStrToValue(l.TaskID),
		string(l.Phase),
		l.StartTime.UTC().Format(time.RFC3339),
		nullableTimeToString(l.EndTime, time.RFC3339),
		nullableStrToValue(l.InterruptionReason),
	)
	if err != nil {
		return fmt.Errorf("inserting pomodoro log: %w", err)
	}
	return nil
}

func (r *SQLitePomodoroLogRepo) GetByID(ctx context.Context, id string) (*domain.PomodoroLog, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+pomodoroColumns+` FROM pomodoro_logs WHERE id = ?`, id)
	return scanPomodoroLog(row)
}

func (r *SQLitePomodoroLogRepo) Update(ctx context.Context, l *domain.PomodoroLog) error {
	if err := l.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE pomodoro_logs SET block_id = ?, task_id = ?, phase = ?,
		start_time = ?, end_time = ?, interruption_reason = ?
		WHERE id = ?`,
		l.BlockID,
		nullableStrToValue(l.TaskID),
		string(l.Phase),
		l.StartTime.UTC().Format(time.RFC3339),
		nullableTimeToString(l.EndTime, time.RFC3339),
		nullableStrToValue(l.InterruptionReason),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating pomodoro log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating pomodoro log: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pomodoro log %s: %w", l.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLitePomodoroLogRepo) ListRange(ctx context.Context, start, end time.Time) ([]*domain.PomodoroLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+pomodoroColumns+` FROM pomodoro_logs
		WHERE start_time >= ? AND start_time <= ?
		ORDER BY start_time, id`,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("listing pomodoro logs: %w", err)
	}
	defer rows.Close()
	return scanPomodoroLogs(rows)
}

func (r *SQLitePomodoroLogRepo) ListByBlock(ctx context.Context, blockID string) ([]*domain.PomodoroLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+pomodoroColumns+` FROM pomodoro_logs
		WHERE block_id = ? ORDER BY start_time, id`, blockID)
	if err != nil {
		return nil, fmt.Errorf("listing pomodoro logs by block: %w", err)
	}
	defer rows.Close()
	return scanPomodoroLogs(rows)
}

func (r *SQLitePomodoroLogRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pomodoro_logs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting pomodoro log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting pomodoro log: %w", err)
	}
	return affected > 0, nil
}

func scanPomodoroLog(row *sql.Row) (*domain.PomodoroLog, error) {
	var (
		l                       domain.PomodoroLog
		phase, startTime        string
		taskID                  sql.NullString
		endTime, interruptionBy sql.NullString
	)
	err := row.Scan(&l.ID, &l.BlockID, &taskID, &phase, &startTime, &endTime, &interruptionBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pomodoro log: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning pomodoro log: %w", err)
	}
	if err := hydratePomodoroLog(&l, phase, startTime, taskID, endTime, interruptionBy); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanPomodoroLogs(rows *sql.Rows) ([]*domain.PomodoroLog, error) {
	var logs []*domain.PomodoroLog
	for rows.Next() {
		var (
			l                       domain.PomodoroLog
			phase, startTime        string
			taskID                  sql.NullString
			endTime, interruptionBy sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.BlockID, &taskID, &phase, &startTime, &endTime, &interruptionBy); err != nil {
			return nil, fmt.Errorf("scanning pomodoro log: %w", err)
		}
		if err := hydratePomodoroLog(&l, phase, startTime, taskID, endTime, interruptionBy); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func hydratePomodoroLog(l *domain.PomodoroLog, phase, startTime string, taskID, endTime, interruptionReason sql.NullString) error {
	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return fmt.Errorf("parsing pomodoro log start_time: %w", err)
	}
	l.StartTime = start
	l.Phase = domain.PomodoroPhase(phase)
	l.TaskID = nullableStr(taskID)
	l.EndTime = parseNullableTime(endTime, time.RFC3339)
	l.InterruptionReason = nullableStr(interruptionReason)
	return nil
}
