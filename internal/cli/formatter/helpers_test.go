package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turrisxyz/openproject/internal/domain"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDateCell(t *testing.T) {
	assert.Contains(t, DateCell(datePtr(2024, 3, 4)), "2024-03-04")
	assert.Contains(t, DateCell(nil), "—")
}

func TestDateRange(t *testing.T) {
	got := DateRange(datePtr(2024, 3, 4), nil)
	assert.Contains(t, got, "2024-03-04")
	assert.Contains(t, got, "→")
	assert.Contains(t, got, "—")
}

func TestDurationCell(t *testing.T) {
	assert.Contains(t, DurationCell(0), "—")
	assert.Contains(t, DurationCell(1), "1 day")
	assert.Contains(t, DurationCell(5), "5 days")
}

func TestSchedulingPill(t *testing.T) {
	auto := &domain.WorkItem{}
	manual := &domain.WorkItem{ScheduleManually: true}
	assert.Contains(t, SchedulingPill(auto), "Automatic")
	assert.Contains(t, SchedulingPill(manual), "Manual")
}

func TestShiftLabel(t *testing.T) {
	got := ShiftLabel(datePtr(2024, 3, 5), datePtr(2024, 3, 9))
	assert.Contains(t, got, "2024-03-05")
	assert.Contains(t, got, "2024-03-09")

	got = ShiftLabel(nil, datePtr(2024, 3, 9))
	assert.Contains(t, got, "—")
}

func TestTruncID(t *testing.T) {
	got := TruncID("0123456789abcdef")
	assert.Contains(t, got, "01234567")
	assert.NotContains(t, got, "89abcdef")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"SUBJECT", "START"},
		[][]string{
			{"Design", "2024-03-04"},
			{"Build", "2024-03-11"},
		},
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4, "header, separator, two rows")
	assert.Contains(t, lines[0], "SUBJECT")
	assert.Contains(t, lines[1], "─")
	assert.Contains(t, lines[2], "Design")
	assert.Contains(t, lines[3], "2024-03-11")
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
}
