package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/blocksched/internal/domain"
)

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", ShortID("12345678-abcd-efgh"))
	assert.Equal(t, "short", ShortID("short"))
}

func TestClockRange(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Berlin")
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	end := start.Add(50 * time.Minute)
	assert.Equal(t, "09:00–09:50", ClockRange(start, end, loc))
}

func TestFormatFocusDuration(t *testing.T) {
	assert.Equal(t, "25m", FormatFocusDuration(1500))
	assert.Equal(t, "0m", FormatFocusDuration(30))
	assert.Equal(t, "2h05m", FormatFocusDuration(2*3600+5*60))
}

func TestFormatWeekdays(t *testing.T) {
	days := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	assert.Equal(t, "Mon,Wed,Fri", FormatWeekdays(days))
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"ID", "Name"},
		[][]string{
			{"1", "short"},
			{"42", "a much longer name"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Header, separator, two data rows.
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[2], "short")
	assert.Contains(t, lines[3], "a much longer name")
}

func TestFormatBlockTableEmpty(t *testing.T) {
	out := FormatBlockTable(nil, time.UTC)
	assert.Contains(t, out, "No blocks")
}

func TestFormatBlockTableRows(t *testing.T) {
	eventID := "evt-1"
	b := &domain.Block{
		ID:               "aaaabbbb-0000",
		Instance:         "manual:aaaabbbb-0000",
		Date:             "2026-03-02",
		StartAt:          time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EndAt:            time.Date(2026, 3, 2, 9, 50, 0, 0, time.UTC),
		Type:             domain.BlockDeep,
		Firmness:         domain.FirmnessSoft,
		PlannedPomodoros: 2,
		Status:           domain.BlockPlanned,
		Source:           domain.SourceManual,
		CalendarEventID:  &eventID,
	}
	out := FormatBlockTable([]*domain.Block{b}, time.UTC)
	assert.Contains(t, out, "09:00–09:50")
	assert.Contains(t, out, "deep")
	assert.Contains(t, out, "evt-1")
}
