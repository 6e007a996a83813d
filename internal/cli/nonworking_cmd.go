package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turrisxyz/openproject/internal/cli/formatter"
	"github.com/turrisxyz/openproject/internal/domain"
)

func newNonWorkingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nonworking",
		Short: "Manage non-working dates shared by the whole schedule",
	}

	cmd.AddCommand(
		newNonWorkingAddCmd(app),
		newNonWorkingRemoveCmd(app),
		newNonWorkingListCmd(app),
	)

	return cmd
}

func parseDateArg(s string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return domain.NormalizeDate(d), nil
}

func newNonWorkingAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add DATE",
		Short: "Mark a date as non-working",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateArg(args[0])
			if err != nil {
				return err
			}
			if err := app.Calendar.AddNonWorkingDay(context.Background(), d); err != nil {
				return err
			}
			fmt.Printf("Marked %s as non-working\n", d.Format(domain.DateLayout))
			return nil
		},
	}
}

func newNonWorkingRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove DATE",
		Short: "Mark a date as working again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateArg(args[0])
			if err != nil {
				return err
			}
			if err := app.Calendar.RemoveNonWorkingDay(context.Background(), d); err != nil {
				return err
			}
			fmt.Printf("Marked %s as working\n", d.Format(domain.DateLayout))
			return nil
		},
	}
}

func newNonWorkingListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List non-working dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := app.Calendar.ListNonWorkingDays(context.Background())
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Println(formatter.Dim("No non-working dates; only weekends apply."))
				return nil
			}
			rows := make([][]string, 0, len(days))
			for _, d := range days {
				rows = append(rows, []string{d.Format(domain.DateLayout), d.Weekday().String()})
			}
			fmt.Print(formatter.RenderTable([]string{"DATE", "WEEKDAY"}, rows))
			return nil
		},
	}
}
