package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
)

// FormatFocusDuration renders seconds as "2h05m" or "25m".
func FormatFocusDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatReflection renders the reflection summary for a range.
func FormatReflection(start, end time.Time, completed, interrupted, totalFocusSeconds int, logs []*domain.PomodoroLog, loc *time.Location) string {
	var sb strings.Builder
	title := fmt.Sprintf("Reflection %s to %s",
		start.In(loc).Format(domain.DateLayout), end.In(loc).Format(domain.DateLayout))
	sb.WriteString(Header(title))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s completed   %s interrupted   %s focused\n\n",
		StyleGreen.Render(fmt.Sprintf("%d", completed)),
		StyleYellow.Render(fmt.Sprintf("%d", interrupted)),
		StyleBlue.Render(FormatFocusDuration(totalFocusSeconds))))

	if len(logs) == 0 {
		sb.WriteString(Dim("No pomodoro activity in this range.") + "\n")
		return sb.String()
	}

	headers := []string{"Start", "Phase", "Length", "Interruption"}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		length := Dim("open")
		if l.EndTime != nil {
			length = FormatFocusDuration(int(l.EndTime.Sub(l.StartTime).Seconds()))
		}
		reason := Dim("-")
		if l.InterruptionReason != nil {
			reason = StyleYellow.Render(*l.InterruptionReason)
		}
		rows = append(rows, []string{
			l.StartTime.In(loc).Format("Jan 02 15:04"),
			string(l.Phase),
			length,
			reason,
		})
	}
	sb.WriteString(RenderTable(headers, rows))
	return sb.String()
}

// FormatPolicy renders the scheduling policy.
func FormatPolicy(p *domain.Policy) string {
	var sb strings.Builder
	sb.WriteString(Header("Scheduling policy"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Work hours:  %s to %s (%s)\n", Bold(p.WorkHours.Start), Bold(p.WorkHours.End), p.Timezone))
	sb.WriteString(fmt.Sprintf("Work days:   %s\n", FormatWeekdays(p.WorkHours.Days)))
	sb.WriteString(fmt.Sprintf("Blocks:      %dm focus, %dm break, %dm gap\n",
		p.BlockDurationMinutes, p.BreakDurationMinutes, p.MinBlockGapMinutes))
	return sb.String()
}
