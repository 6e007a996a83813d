package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turrisxyz/openproject/internal/cli/formatter"
	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/scheduler"
)

func newWorkCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Manage work items",
	}

	cmd.AddCommand(
		newWorkAddCmd(app),
		newWorkListCmd(app),
		newWorkInspectCmd(app),
		newWorkMoveCmd(app),
		newWorkReparentCmd(app),
		newWorkManualCmd(app),
		newWorkRemoveCmd(app),
	)

	return cmd
}

func newWorkAddCmd(app *App) *cobra.Command {
	var (
		subject, parentID string
		start, due        dateValue
		manual, ignoreNWD bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			// Without --subject, fall back to the interactive form.
			if subject == "" {
				if app.IsInteractive == nil || !app.IsInteractive() {
					return fmt.Errorf("--subject is required in non-interactive mode")
				}
				return runWorkAddForm(ctx, app)
			}

			w := &domain.WorkItem{
				Subject:              subject,
				StartDate:            start.date,
				DueDate:              due.date,
				ScheduleManually:     manual,
				IgnoreNonWorkingDays: ignoreNWD,
			}
			if parentID != "" {
				w.ParentID = &parentID
			}
			if err := app.WorkItems.Create(ctx, w); err != nil {
				return err
			}

			fmt.Printf("Created work item %s (%s)\n", w.Subject, w.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Work item subject")
	cmd.Flags().Var(&start, "start", "Start date (YYYY-MM-DD)")
	cmd.Flags().Var(&due, "due", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent work item ID")
	cmd.Flags().BoolVar(&manual, "manual", false, "Schedule manually, exempt from propagation")
	cmd.Flags().BoolVar(&ignoreNWD, "ignore-non-working-days", false, "Count every calendar day as working")

	return cmd
}

func newWorkListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all work items",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.WorkItems.List(context.Background())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println(formatter.Dim("No work items yet."))
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, w := range items {
				parent := formatter.Dim("—")
				if w.ParentID != nil {
					parent = formatter.TruncID(*w.ParentID)
				}
				rows = append(rows, []string{
					formatter.TruncID(w.ID),
					w.Subject,
					formatter.DateCell(w.StartDate),
					formatter.DateCell(w.DueDate),
					formatter.DurationCell(w.DurationDays),
					parent,
					formatter.SchedulingPill(w),
				})
			}
			fmt.Print(formatter.RenderTable(
				[]string{"ID", "SUBJECT", "START", "DUE", "DURATION", "PARENT", "SCHEDULING"},
				rows,
			))
			return nil
		},
	}
}

func newWorkInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show work item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w, err := app.WorkItems.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			var b strings.Builder
			b.WriteString(fmt.Sprintf("%s\n\n", formatter.Bold(w.Subject)))
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("ID       "), formatter.TruncID(w.ID)))
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("DATES    "), formatter.DateRange(w.StartDate, w.DueDate)))
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("DURATION "), formatter.DurationCell(w.DurationDays)))
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("MODE     "), formatter.SchedulingPill(w)))
			if w.IgnoreNonWorkingDays {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("CALENDAR "), formatter.Dim("ignores non-working days")))
			}
			if w.ParentID != nil {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("PARENT   "), formatter.TruncID(*w.ParentID)))
			}

			preds, err := app.Relations.ListPredecessors(ctx, w.ID)
			if err != nil {
				return err
			}
			for _, rel := range preds {
				b.WriteString(fmt.Sprintf("  %s  %s %s\n", formatter.Dim("FOLLOWS  "),
					formatter.TruncID(rel.PredecessorID), formatter.RelationBadge(rel.Type)))
			}
			succs, err := app.Relations.ListSuccessors(ctx, w.ID)
			if err != nil {
				return err
			}
			for _, rel := range succs {
				b.WriteString(fmt.Sprintf("  %s  %s %s\n", formatter.Dim("PRECEDES "),
					formatter.TruncID(rel.SuccessorID), formatter.RelationBadge(rel.Type)))
			}

			fmt.Print(formatter.RenderBox("Work Item", b.String()))
			return nil
		},
	}
}

func newWorkMoveCmd(app *App) *cobra.Command {
	var start, due dateValue

	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Move a work item's dates, rescheduling everything that depends on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w, err := app.WorkItems.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			newStart := w.StartDate
			newDue := w.DueDate
			if start.Changed() {
				newStart = start.date
			}
			if due.Changed() {
				newDue = due.date
			}

			res, err := app.Schedule.MoveDates(ctx, w.ID, newStart, newDue)
			if err != nil {
				return err
			}
			fmt.Printf("Moved %s to %s\n", w.Subject, formatter.DateRange(newStart, newDue))
			printAlterations(res)
			return nil
		},
	}

	cmd.Flags().Var(&start, "start", "New start date (YYYY-MM-DD, \"none\" to clear)")
	cmd.Flags().Var(&due, "due", "New due date (YYYY-MM-DD, \"none\" to clear)")
	return cmd
}

func newWorkReparentCmd(app *App) *cobra.Command {
	var parentFlag string

	cmd := &cobra.Command{
		Use:   "reparent ID",
		Short: "Move a work item to a new parent, or to the root with --parent none",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parentID *string
			if parentFlag != "" && parentFlag != "none" {
				parentID = &parentFlag
			}
			res, err := app.Schedule.Reparent(context.Background(), args[0], parentID)
			if err != nil {
				return err
			}
			if parentID == nil {
				fmt.Printf("Moved work item %s to the root\n", args[0])
			} else {
				fmt.Printf("Moved work item %s under %s\n", args[0], *parentID)
			}
			printAlterations(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentFlag, "parent", "", "New parent ID, or \"none\"")
	_ = cmd.MarkFlagRequired("parent")
	return cmd
}

func newWorkManualCmd(app *App) *cobra.Command {
	var manual bool

	cmd := &cobra.Command{
		Use:   "manual ID",
		Short: "Toggle manual scheduling for a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w, err := app.WorkItems.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			w.ScheduleManually = manual
			if err := app.WorkItems.Update(ctx, w); err != nil {
				return err
			}
			fmt.Printf("Work item %s is now scheduled %s\n", w.Subject,
				map[bool]string{true: "manually", false: "automatically"}[manual])
			return nil
		},
	}

	cmd.Flags().BoolVar(&manual, "on", true, "Enable manual scheduling; --on=false re-enables propagation")
	return cmd
}

func newWorkRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.WorkItems.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed work item %s\n", args[0])
			return nil
		},
	}
}

// printAlterations lists the items a propagation pass moved as a side effect.
func printAlterations(res *scheduler.Result) {
	if res == nil || len(res.Altered) == 0 {
		return
	}
	fmt.Printf("\n%s\n", formatter.Header("Rescheduled"))
	rows := make([][]string, 0, len(res.Altered))
	for _, alt := range res.Altered {
		rows = append(rows, []string{
			alt.Item.Subject,
			formatter.ShiftLabel(alt.Previous.StartDate, alt.Item.StartDate),
			formatter.ShiftLabel(alt.Previous.DueDate, alt.Item.DueDate),
		})
	}
	fmt.Print(formatter.RenderTable([]string{"SUBJECT", "START", "DUE"}, rows))
}
