package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkHours holds wall-clock work boundaries interpreted in the owning
// policy's time zone, never in UTC.
type WorkHours struct {
	Start string // HH:MM
	End   string // HH:MM
	Days  []time.Weekday
}

func (w *WorkHours) Validate() error {
	if _, _, err := ParseHHMM(w.Start); err != nil {
		return fmt.Errorf("policy.work_hours.start: %w", err)
	}
	if _, _, err := ParseHHMM(w.End); err != nil {
		return fmt.Errorf("policy.work_hours.end: %w", err)
	}
	if len(w.Days) == 0 {
		return fmt.Errorf("policy.work_hours.days must not be empty")
	}
	return nil
}

// WorksOn reports whether d is a working day.
func (w *WorkHours) WorksOn(d time.Weekday) bool {
	for _, day := range w.Days {
		if day == d {
			return true
		}
	}
	return false
}

// Policy is the effective working-hours/duration configuration.
type Policy struct {
	WorkHours            WorkHours
	Timezone             string
	BlockDurationMinutes int
	BreakDurationMinutes int
	MinBlockGapMinutes   int
}

func (p *Policy) Validate() error {
	if err := p.WorkHours.Validate(); err != nil {
		return err
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("policy.timezone %q is not a valid IANA zone: %w", p.Timezone, err)
	}
	if p.BlockDurationMinutes < 1 {
		return fmt.Errorf("policy.block_duration_minutes must be >= 1")
	}
	if p.BreakDurationMinutes < 1 {
		return fmt.Errorf("policy.break_duration_minutes must be >= 1")
	}
	if p.MinBlockGapMinutes < 0 {
		return fmt.Errorf("policy.min_block_gap_minutes must be >= 0")
	}
	return nil
}

// Location resolves the policy's time zone. Validate guarantees success for
// validated policies.
func (p *Policy) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}

// DefaultPolicy is the configuration used until the user persists one.
func DefaultPolicy() Policy {
	return Policy{
		WorkHours: WorkHours{
			Start: "09:00",
			End:   "18:00",
			Days: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
		},
		Timezone:             "UTC",
		BlockDurationMinutes: 50,
		BreakDurationMinutes: 10,
		MinBlockGapMinutes:   5,
	}
}

// PolicyPatch carries the partial fields of an override.
type PolicyPatch struct {
	WorkHours            *WorkHours
	BlockDurationMinutes *int
	BreakDurationMinutes *int
	MinBlockGapMinutes   *int
}

// PolicyOverride is a transient policy modification. A temporary override
// outside its validity window has no effect.
type PolicyOverride struct {
	Mode      OverrideMode
	Value     PolicyPatch
	Weight    float64 // 0..1 blend factor for soft mode
	ValidFrom *time.Time
	ValidTo   *time.Time
}

func (o *PolicyOverride) Validate() error {
	switch o.Mode {
	case OverrideNone, OverrideSoft, OverrideHard, OverrideTemporary:
	default:
		return fmt.Errorf("override.mode %q is not a valid override mode", o.Mode)
	}
	if o.Weight < 0 || o.Weight > 1 {
		return fmt.Errorf("override.weight must be within [0, 1]")
	}
	if o.Value.WorkHours != nil {
		if err := o.Value.WorkHours.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ActiveAt reports whether the override has any effect at the given instant.
func (o *PolicyOverride) ActiveAt(now time.Time) bool {
	switch o.Mode {
	case OverrideNone:
		return false
	case OverrideTemporary:
		if o.ValidFrom == nil || o.ValidTo == nil {
			return false
		}
		return !now.Before(*o.ValidFrom) && now.Before(*o.ValidTo)
	default:
		return true
	}
}

// ParseHHMM parses a wall-clock HH:MM string.
func ParseHHMM(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%q must be HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%q must be HH:MM", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%q must be HH:MM", value)
	}
	return hour, minute, nil
}
