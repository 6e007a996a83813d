package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/turrisxyz/openproject/internal/cli/formatter"
	"github.com/turrisxyz/openproject/internal/domain"
)

// opschedHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func opschedHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func validateSubject(s string) error {
	if s == "" {
		return fmt.Errorf("subject is required")
	}
	return nil
}

// dateInput returns a huh.Input for an optional date field.
func dateInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("2026-06-30").
		Value(value).
		Validate(validateOptionalDate)
}

// runWorkAddForm collects a new work item interactively and creates it.
func runWorkAddForm(ctx context.Context, app *App) error {
	var (
		subject, startStr, dueStr, parentID string
		manual                              bool
	)

	parentOptions := []huh.Option[string]{huh.NewOption("None (root item)", "")}
	items, err := app.WorkItems.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range items {
		parentOptions = append(parentOptions, huh.NewOption(w.Subject, w.ID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject").
				Placeholder("Prepare release notes").
				Value(&subject).
				Validate(validateSubject),
			dateInput("Start Date (blank for none)", &startStr),
			dateInput("Due Date (blank for none)", &dueStr),
			huh.NewSelect[string]().
				Title("Parent").
				Options(parentOptions...).
				Value(&parentID),
			huh.NewConfirm().
				Title("Schedule manually?").
				Affirmative("Yes").
				Negative("No").
				Value(&manual),
		),
	).WithTheme(opschedHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return err
	}

	w := &domain.WorkItem{
		Subject:          subject,
		ScheduleManually: manual,
	}
	if startStr != "" {
		d, err := parseDateArg(startStr)
		if err != nil {
			return err
		}
		w.StartDate = domain.DatePtr(d)
	}
	if dueStr != "" {
		d, err := parseDateArg(dueStr)
		if err != nil {
			return err
		}
		w.DueDate = domain.DatePtr(d)
	}
	if parentID != "" {
		w.ParentID = &parentID
	}

	if err := app.WorkItems.Create(ctx, w); err != nil {
		return err
	}
	fmt.Printf("Created work item %s (%s)\n", w.Subject, w.ID)
	return nil
}
