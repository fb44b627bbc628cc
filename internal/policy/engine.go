// Package policy resolves effective working-hours policies and classifies
// time intervals against them in the policy's configured time zone.
package policy

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/interval"
)

// WorkWindowForDate resolves the policy's wall-clock work hours into absolute
// instants on the given calendar date, in the policy's time zone. time.Date
// performs the wall-clock-to-instant normalization, which keeps the result
// correct across DST transitions.
func WorkWindowForDate(p domain.Policy, date string) (interval.Span, error) {
	loc, err := p.Location()
	if err != nil {
		return interval.Span{}, err
	}
	day, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return interval.Span{}, fmt.Errorf("date must be YYYY-MM-DD: %q", date)
	}

	startH, startM, err := domain.ParseHHMM(p.WorkHours.Start)
	if err != nil {
		return interval.Span{}, fmt.Errorf("policy.work_hours.start: %w", err)
	}
	endH, endM, err := domain.ParseHHMM(p.WorkHours.End)
	if err != nil {
		return interval.Span{}, fmt.Errorf("policy.work_hours.end: %w", err)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, loc)
	if !end.After(start) {
		return interval.Span{}, fmt.Errorf("work window for %s is empty: end %q is not after start %q in %s",
			date, p.WorkHours.End, p.WorkHours.Start, p.Timezone)
	}
	return interval.Span{Start: start, End: end}, nil
}

// IsWithinWorkHours reports whether the instant falls on a work day inside
// [start, end), evaluated in the policy's time zone.
func IsWithinWorkHours(p domain.Policy, instant time.Time) bool {
	loc, err := p.Location()
	if err != nil {
		return false
	}
	local := instant.In(loc)
	if !p.WorkHours.WorksOn(local.Weekday()) {
		return false
	}
	window, err := WorkWindowForDate(p, local.Format(domain.DateLayout))
	if err != nil {
		return false
	}
	return !instant.Before(window.Start) && instant.Before(window.End)
}

// FilterSlots clips each slot to the work window of its own calendar date in
// the policy's time zone. Slots on non-work days and slots whose clipped
// result is empty are dropped.
func FilterSlots(p domain.Policy, slots []interval.Span) []interval.Span {
	loc, err := p.Location()
	if err != nil {
		return nil
	}

	var kept []interval.Span
	for _, slot := range slots {
		local := slot.Start.In(loc)
		if !p.WorkHours.WorksOn(local.Weekday()) {
			continue
		}
		window, err := WorkWindowForDate(p, local.Format(domain.DateLayout))
		if err != nil {
			continue
		}
		if clipped, ok := interval.Clip(slot, window.Start, window.End); ok {
			kept = append(kept, clipped)
		}
	}
	return kept
}

// ApplyOverride resolves the effective policy for the given moment.
// Hard and in-window temporary overrides replace the fields they carry; soft
// overrides blend numeric fields by Weight and replace work hours when
// present. Inactive overrides leave the base policy untouched.
func ApplyOverride(base domain.Policy, override *domain.PolicyOverride, now time.Time) domain.Policy {
	if override == nil || !override.ActiveAt(now) {
		return base
	}

	effective := base
	patch := override.Value

	switch override.Mode {
	case domain.OverrideSoft:
		if patch.WorkHours != nil {
			effective.WorkHours = *patch.WorkHours
		}
		if patch.BlockDurationMinutes != nil {
			effective.BlockDurationMinutes = blend(base.BlockDurationMinutes, *patch.BlockDurationMinutes, override.Weight, 1)
		}
		if patch.BreakDurationMinutes != nil {
			effective.BreakDurationMinutes = blend(base.BreakDurationMinutes, *patch.BreakDurationMinutes, override.Weight, 1)
		}
		if patch.MinBlockGapMinutes != nil {
			effective.MinBlockGapMinutes = blend(base.MinBlockGapMinutes, *patch.MinBlockGapMinutes, override.Weight, 0)
		}
	case domain.OverrideHard, domain.OverrideTemporary:
		if patch.WorkHours != nil {
			effective.WorkHours = *patch.WorkHours
		}
		if patch.BlockDurationMinutes != nil {
			effective.BlockDurationMinutes = *patch.BlockDurationMinutes
		}
		if patch.BreakDurationMinutes != nil {
			effective.BreakDurationMinutes = *patch.BreakDurationMinutes
		}
		if patch.MinBlockGapMinutes != nil {
			effective.MinBlockGapMinutes = *patch.MinBlockGapMinutes
		}
	}
	return effective
}

// blend linearly interpolates base toward value by weight, rounds to the
// nearest integer, and clamps at floor.
func blend(base, value int, weight float64, floor int) int {
	mixed := int(math.Round(float64(base)*(1-weight) + float64(value)*weight))
	if mixed < floor {
		return floor
	}
	return mixed
}
