package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turrisxyz/openproject/internal/cli/formatter"
)

func newRescheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule ID...",
		Short: "Re-run date propagation from the given work items",
		Long: `Re-run date propagation from the given work items, realigning every
dependent item with its predecessors and re-aggregating ancestor envelopes.
On an already-consistent graph this is a no-op.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Schedule.Reschedule(context.Background(), args...)
			if err != nil {
				return err
			}
			if len(res.Altered) == 0 {
				fmt.Println(formatter.Dim("Schedule already consistent."))
				return nil
			}
			printAlterations(res)
			return nil
		},
	}
}
