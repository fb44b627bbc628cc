// Package interval provides pure time-interval math shared by slot search,
// relocation, and the daily view.
package interval

import (
	"sort"
	"time"
)

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Duration returns End-Start.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Empty reports whether the span has no positive extent.
func (s Span) Empty() bool {
	return !s.End.After(s.Start)
}

// Overlaps reports whether a and b share any positive-length stretch of time.
// Touching spans do not overlap.
func Overlaps(a, b Span) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Merge sorts spans by start and folds overlapping or touching spans into
// one. Empty spans are dropped. The result is sorted, disjoint, and
// non-empty.
func Merge(spans []Span) []Span {
	work := make([]Span, 0, len(spans))
	for _, s := range spans {
		if !s.Empty() {
			work = append(work, s)
		}
	}
	if len(work) == 0 {
		return nil
	}

	sort.Slice(work, func(i, j int) bool {
		return work[i].Start.Before(work[j].Start)
	})

	merged := []Span{work[0]}
	for _, next := range work[1:] {
		last := &merged[len(merged)-1]
		// Touching spans coalesce: next.Start <= last.End.
		if !next.Start.After(last.End) {
			if next.End.After(last.End) {
				last.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// Invert returns the free spans inside [windowStart, windowEnd) not covered
// by busy, which must be disjoint, sorted, and clipped to the window.
// Returns nil when the window is empty or inverted.
func Invert(windowStart, windowEnd time.Time, busy []Span) []Span {
	if !windowEnd.After(windowStart) {
		return nil
	}

	var free []Span
	cursor := windowStart
	for _, b := range busy {
		if b.Start.After(cursor) {
			free = append(free, Span{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if windowEnd.After(cursor) {
		free = append(free, Span{Start: cursor, End: windowEnd})
	}
	return free
}

// Clip intersects s with [windowStart, windowEnd). The second return value is
// false when the intersection is empty.
func Clip(s Span, windowStart, windowEnd time.Time) (Span, bool) {
	if s.Start.Before(windowStart) {
		s.Start = windowStart
	}
	if s.End.After(windowEnd) {
		s.End = windowEnd
	}
	if s.Empty() {
		return Span{}, false
	}
	return s, true
}
