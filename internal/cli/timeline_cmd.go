package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/turrisxyz/openproject/internal/cli/formatter"
	"github.com/turrisxyz/openproject/internal/domain"
)

func newTimelineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show work items on a date timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.WorkItems.List(context.Background())
			if err != nil {
				return err
			}

			content := renderTimeline(items, 80)
			if app.IsInteractive == nil || !app.IsInteractive() {
				fmt.Print(content)
				return nil
			}

			m := newTimelineModel(content)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// ── rendering ────────────────────────────────────────────────────────────────

// renderTimeline draws one bar per dated work item, aligned to a shared day
// scale. Undated items are listed below the chart.
func renderTimeline(items []*domain.WorkItem, width int) string {
	dated := make([]*domain.WorkItem, 0, len(items))
	var undated []*domain.WorkItem
	for _, w := range items {
		if w.StartDate != nil || w.DueDate != nil {
			dated = append(dated, w)
		} else {
			undated = append(undated, w)
		}
	}
	if len(dated) == 0 {
		return formatter.Dim("No dated work items to draw.") + "\n"
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return anchorDate(dated[i]).Before(anchorDate(dated[j]))
	})

	origin := anchorDate(dated[0])
	end := origin
	for _, w := range dated {
		if d := lastDate(w); d.After(end) {
			end = d
		}
	}
	span := domain.DaysBetween(origin, end) + 1

	labelWidth := 0
	for _, w := range dated {
		if len(w.Subject) > labelWidth {
			labelWidth = len(w.Subject)
		}
	}
	if labelWidth > 24 {
		labelWidth = 24
	}

	chartWidth := width - labelWidth - 3
	if chartWidth < 10 {
		chartWidth = 10
	}
	// One column per day, compressed when the span exceeds the chart.
	daysPerCol := 1
	for span/daysPerCol+1 > chartWidth {
		daysPerCol++
	}

	var b strings.Builder
	b.WriteString(formatter.Header("Timeline"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%*s   %s\n", labelWidth, "",
		formatter.Dim(fmt.Sprintf("%s .. %s (1 col = %dd)",
			origin.Format(domain.DateLayout), end.Format(domain.DateLayout), daysPerCol))))

	for _, w := range dated {
		label := w.Subject
		if len(label) > labelWidth {
			label = label[:labelWidth-1] + "…"
		}

		startOff := domain.DaysBetween(origin, anchorDate(w)) / daysPerCol
		barLen := (domain.DaysBetween(anchorDate(w), lastDate(w)) / daysPerCol) + 1

		bar := strings.Repeat("█", barLen)
		if w.StartDate == nil || w.DueDate == nil {
			bar = strings.Repeat("░", barLen)
		}
		styled := formatter.StyleBlue.Render(bar)
		if w.ScheduleManually {
			styled = formatter.StyleYellow.Render(bar)
		}

		b.WriteString(fmt.Sprintf("%*s   %s%s\n", labelWidth, label,
			strings.Repeat(" ", startOff), styled))
	}

	for _, w := range undated {
		b.WriteString(fmt.Sprintf("%*s   %s\n", labelWidth, w.Subject, formatter.Dim("no dates")))
	}
	return b.String()
}

// anchorDate is the drawing position of an item: its start, or its due date
// for items with only a due date.
func anchorDate(w *domain.WorkItem) time.Time {
	if w.StartDate != nil {
		return *w.StartDate
	}
	return *w.DueDate
}

func lastDate(w *domain.WorkItem) time.Time {
	if w.DueDate != nil {
		return *w.DueDate
	}
	return *w.StartDate
}

// ── interactive view ─────────────────────────────────────────────────────────

type timelineModel struct {
	vp    viewport.Model
	keys  timelineKeys
	ready bool
	body  string
}

type timelineKeys struct {
	Quit key.Binding
}

func newTimelineModel(content string) *timelineModel {
	return &timelineModel{
		body: content,
		keys: timelineKeys{
			Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
	}
}

func (m *timelineModel) Init() tea.Cmd { return nil }

func (m *timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-1)
			m.vp.SetContent(m.body)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 1
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *timelineModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.vp.View() + "\n" + formatter.Dim("↑/↓ scroll · q quit")
}
