package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run
// on every startup.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id                  TEXT PRIMARY KEY,
		title               TEXT NOT NULL,
		description         TEXT,
		estimated_pomodoros INTEGER,
		completed_pomodoros INTEGER NOT NULL DEFAULT 0,
		status              TEXT NOT NULL DEFAULT 'pending'
		                    CHECK(status IN ('pending','in_progress','completed','deferred')),
		created_at          TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS blocks (
		id                TEXT PRIMARY KEY,
		instance          TEXT NOT NULL,
		date              TEXT NOT NULL,
		start_at          TEXT NOT NULL,
		end_at            TEXT NOT NULL,
		type              TEXT NOT NULL
		                  CHECK(type IN ('deep','shallow','admin','learning')),
		firmness          TEXT NOT NULL DEFAULT 'draft'
		                  CHECK(firmness IN ('draft','soft','hard')),
		planned_pomodoros INTEGER NOT NULL DEFAULT 0,
		status            TEXT NOT NULL DEFAULT 'planned'
		                  CHECK(status IN ('planned','running','done','partial','skipped')),
		source            TEXT NOT NULL
		                  CHECK(source IN ('template','routine','manual','calendar')),
		source_id         TEXT,
		calendar_event_id TEXT,
		task_id           TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		created_at        TEXT NOT NULL
	)`,

	// The unique instance index is the storage-level guard against duplicate
	// generation: concurrent writers racing on the same instance resolve via
	// insert-conflict-is-success.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_blocks_instance ON blocks(instance)`,
	`CREATE INDEX IF NOT EXISTS idx_blocks_date ON blocks(date)`,
	`CREATE INDEX IF NOT EXISTS idx_blocks_calendar_event ON blocks(calendar_event_id)`,

	`CREATE TABLE IF NOT EXISTS block_task_refs (
		block_id TEXT NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
		task_id  TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		PRIMARY KEY (block_id, task_id)
	)`,

	`CREATE TABLE IF NOT EXISTS pomodoro_logs (
		id                  TEXT PRIMARY KEY,
		block_id            TEXT NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
		task_id             TEXT REFERENCES tasks(id) ON DELETE CASCADE,
		phase               TEXT NOT NULL
		                    CHECK(phase IN ('focus','break','long_break','paused')),
		start_time          TEXT NOT NULL,
		end_time            TEXT,
		interruption_reason TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pomodoro_logs_start ON pomodoro_logs(start_time)`,

	`CREATE TABLE IF NOT EXISTS suppressions (
		instance      TEXT PRIMARY KEY,
		suppressed_at TEXT NOT NULL,
		reason        TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS policy (
		id                     INTEGER PRIMARY KEY CHECK(id = 1),
		work_start             TEXT NOT NULL,
		work_end               TEXT NOT NULL,
		work_days              TEXT NOT NULL,
		timezone               TEXT NOT NULL,
		block_duration_minutes INTEGER NOT NULL,
		break_duration_minutes INTEGER NOT NULL,
		min_block_gap_minutes  INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS routines (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		days             TEXT NOT NULL,
		start            TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		type             TEXT NOT NULL
		                 CHECK(type IN ('deep','shallow','admin','learning')),
		pomodoros        INTEGER NOT NULL,
		firmness         TEXT NOT NULL DEFAULT 'draft'
		                 CHECK(firmness IN ('draft','soft','hard')),
		skip_dates       TEXT NOT NULL DEFAULT '',
		carryover        INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS templates (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		type             TEXT NOT NULL
		                 CHECK(type IN ('deep','shallow','admin','learning')),
		created_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sync_state (
		id             INTEGER PRIMARY KEY CHECK(id = 1),
		sync_token     TEXT,
		last_synced_at TEXT NOT NULL
	)`,
}
