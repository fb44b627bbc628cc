package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
)

// ShortID truncates a UUID for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ClockRange renders "09:00–09:50" in the given location.
func ClockRange(start, end time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s–%s", start.In(loc).Format("15:04"), end.In(loc).Format("15:04"))
}

// FormatBlockTable renders the day view table for a list of blocks.
func FormatBlockTable(blocks []*domain.Block, loc *time.Location) string {
	if len(blocks) == 0 {
		return Dim("No blocks.") + "\n"
	}

	headers := []string{"ID", "Time", "Type", "Firmness", "Status", "Pomodoros", "Mirror"}
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		mirror := Dim("-")
		if b.Mirrored() {
			mirror = StyleBlue.Render(*b.CalendarEventID)
		}
		rows = append(rows, []string{
			Dim(ShortID(b.ID)),
			ClockRange(b.StartAt, b.EndAt, loc),
			string(b.Type),
			FirmnessStyle(b.Firmness).Render(string(b.Firmness)),
			StatusIndicator(b.Status),
			fmt.Sprintf("%d", b.PlannedPomodoros),
			mirror,
		})
	}
	return RenderTable(headers, rows)
}

// FormatBlockDetail renders a single block with its source and task links.
func FormatBlockDetail(b *domain.Block, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(Header(fmt.Sprintf("Block %s", ShortID(b.ID))))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s  %s\n", Bold(b.Date), ClockRange(b.StartAt, b.EndAt, loc)))
	sb.WriteString(fmt.Sprintf("Type: %s  Firmness: %s  %s\n",
		b.Type, FirmnessStyle(b.Firmness).Render(string(b.Firmness)), StatusIndicator(b.Status)))
	sb.WriteString(fmt.Sprintf("Planned pomodoros: %d\n", b.PlannedPomodoros))
	source := string(b.Source)
	if b.SourceID != nil {
		source += ":" + *b.SourceID
	}
	sb.WriteString(fmt.Sprintf("Source: %s\n", Dim(source)))
	if b.Mirrored() {
		sb.WriteString(fmt.Sprintf("Calendar event: %s\n", StyleBlue.Render(*b.CalendarEventID)))
	}
	if b.TaskID != nil {
		sb.WriteString(fmt.Sprintf("Task: %s\n", ShortID(*b.TaskID)))
	}
	if len(b.TaskRefs) > 0 {
		refs := make([]string, len(b.TaskRefs))
		for i, r := range b.TaskRefs {
			refs[i] = ShortID(r)
		}
		sb.WriteString(fmt.Sprintf("Linked tasks: %s\n", Dim(strings.Join(refs, ", "))))
	}
	return sb.String()
}

// FormatTaskTable renders the task list.
func FormatTaskTable(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return Dim("No tasks.") + "\n"
	}

	headers := []string{"ID", "Title", "Status", "Done/Est"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		estimate := "-"
		if t.EstimatedPomodoros != nil {
			estimate = fmt.Sprintf("%d/%d", t.CompletedPomodoros, *t.EstimatedPomodoros)
		} else if t.CompletedPomodoros > 0 {
			estimate = fmt.Sprintf("%d", t.CompletedPomodoros)
		}
		rows = append(rows, []string{
			Dim(ShortID(t.ID)),
			t.Title,
			TaskStatusStyled(t.Status),
			estimate,
		})
	}
	return RenderTable(headers, rows)
}

// FormatRoutineTable renders the routine list.
func FormatRoutineTable(routines []*domain.Routine) string {
	if len(routines) == 0 {
		return Dim("No routines.") + "\n"
	}

	headers := []string{"ID", "Name", "Days", "Start", "Duration", "Type", "Firmness"}
	rows := make([][]string, 0, len(routines))
	for _, r := range routines {
		rows = append(rows, []string{
			Dim(ShortID(r.ID)),
			r.Name,
			FormatWeekdays(r.Days),
			r.Start,
			fmt.Sprintf("%dm", r.DurationMinutes),
			string(r.Type),
			FirmnessStyle(r.Firmness).Render(string(r.Firmness)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatWeekdays renders weekdays as "Mon,Tue,Fri".
func FormatWeekdays(days []time.Weekday) string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()[:3]
	}
	return strings.Join(out, ",")
}
