package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/turrisxyz/openproject/internal/domain"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// DateCell formats an optional date for table output, with a dimmed dash for
// unset dates.
func DateCell(d *time.Time) string {
	if d == nil {
		return StyleDim.Render("—")
	}
	return d.Format(domain.DateLayout)
}

// DateRange formats a start/due pair such as "2024-03-04 → 2024-03-08".
// Open-ended sides render as a dash.
func DateRange(start, due *time.Time) string {
	return fmt.Sprintf("%s → %s", DateCell(start), DateCell(due))
}

// DurationCell formats a working-day duration, dimming the zero value.
func DurationCell(days int) string {
	if days <= 0 {
		return StyleDim.Render("—")
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// SchedulingPill returns a colored scheduling-mode indicator.
func SchedulingPill(w *domain.WorkItem) string {
	if w.ScheduleManually {
		return StyleYellow.Render("● Manual")
	}
	return StyleGreen.Render("● Automatic")
}

// RelationBadge returns a purple-styled relation type label.
func RelationBadge(t domain.RelationType) string {
	return StylePurple.Render(strings.ToUpper(string(t)))
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// ShiftLabel renders a schedule change such as "2024-03-05 → 2024-03-09",
// colored by direction: red for a move later, green for a move earlier.
func ShiftLabel(before, after *time.Time) string {
	text := fmt.Sprintf("%s → %s", plainDate(before), plainDate(after))
	switch {
	case before == nil || after == nil:
		return StyleFg.Render(text)
	case after.After(*before):
		return StyleRed.Render(text)
	case after.Before(*before):
		return StyleGreen.Render(text)
	default:
		return StyleDim.Render(text)
	}
}

func plainDate(d *time.Time) string {
	if d == nil {
		return "—"
	}
	return d.Format(domain.DateLayout)
}
