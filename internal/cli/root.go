package cli

import (
	"github.com/spf13/cobra"

	"github.com/turrisxyz/openproject/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	WorkItems service.WorkItemService
	Relations service.RelationService
	Schedule  service.ScheduleService
	Calendar  service.CalendarService

	// IsInteractive reports whether stdin is attached to a terminal; forms
	// and the timeline view require one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "opsched" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "opsched",
		Short: "Work item scheduler with automatic date propagation",
	}

	root.AddCommand(
		newWorkCmd(app),
		newRelationCmd(app),
		newRescheduleCmd(app),
		newTimelineCmd(app),
		newNonWorkingCmd(app),
	)

	return root
}
