package domain

import (
	"fmt"
	"time"
)

// Routine is a recurring block source: on each matching weekday the generator
// seeds draft blocks from the routine's defaults, unless the date is skipped.
type Routine struct {
	ID              string
	Name            string
	Days            []time.Weekday
	Start           string // HH:MM wall clock in the policy's time zone
	DurationMinutes int
	Type            BlockType
	Pomodoros       int
	Firmness        Firmness
	SkipDates       []string // YYYY-MM-DD
	Carryover       bool
	CreatedAt       time.Time
}

func (r *Routine) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("routine.id must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("routine.name must not be empty")
	}
	if len(r.Days) == 0 {
		return fmt.Errorf("routine.days must not be empty")
	}
	if _, _, err := ParseHHMM(r.Start); err != nil {
		return fmt.Errorf("routine.start: %w", err)
	}
	if r.DurationMinutes < 1 {
		return fmt.Errorf("routine.duration_minutes must be >= 1")
	}
	if r.Pomodoros < 1 {
		return fmt.Errorf("routine.pomodoros must be >= 1")
	}
	if !ValidBlockTypes[string(r.Type)] {
		return fmt.Errorf("routine.type %q is not a valid block type", r.Type)
	}
	for _, d := range r.SkipDates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("routine.skip_dates entry %q must be YYYY-MM-DD", d)
		}
	}
	return nil
}

// AppliesOn reports whether the routine produces blocks on the given date.
func (r *Routine) AppliesOn(date string, weekday time.Weekday) bool {
	active := false
	for _, d := range r.Days {
		if d == weekday {
			active = true
			break
		}
	}
	if !active {
		return false
	}
	for _, skip := range r.SkipDates {
		if skip == date {
			return false
		}
	}
	return true
}

// Template is a named block preset used for template-sourced generation.
type Template struct {
	ID              string
	Name            string
	DurationMinutes int
	Type            BlockType
	CreatedAt       time.Time
}

func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template.id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("template.name must not be empty")
	}
	if t.DurationMinutes < 1 {
		return fmt.Errorf("template.duration_minutes must be >= 1")
	}
	if !ValidBlockTypes[string(t.Type)] {
		return fmt.Errorf("template.type %q is not a valid block type", t.Type)
	}
	return nil
}

// SyncState is the bookkeeping row for incremental external fetches.
type SyncState struct {
	SyncToken    *string
	LastSyncedAt time.Time
}
