package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/cli"
	"github.com/turrisxyz/openproject/internal/db"
	"github.com/turrisxyz/openproject/internal/repository"
	"github.com/turrisxyz/openproject/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.opsched/opsched.db
	dbPath := os.Getenv("OPSCHED_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".opsched", "opsched.db")
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	workItemRepo := repository.NewSQLiteWorkItemRepo(database)
	relationRepo := repository.NewSQLiteRelationRepo(database)
	calendarRepo := repository.NewSQLiteCalendarRepo(database)

	// Build the working-day calendar from the stored exception set.
	cal := calendar.Default()
	days, err := calendarRepo.ListNonWorkingDays(context.Background())
	if err != nil {
		return fmt.Errorf("loading non-working days: %w", err)
	}
	for _, d := range days {
		cal.MarkNonWorking(d)
	}

	// Wire unit of work for transactional propagation passes
	uow := db.NewSQLiteUnitOfWork(database)

	app := &cli.App{
		WorkItems: service.NewWorkItemService(workItemRepo, cal),
		Relations: service.NewRelationService(relationRepo, uow, cal),
		Schedule:  service.NewScheduleService(uow, cal),
		Calendar:  service.NewCalendarService(calendarRepo, cal),
	}

	// Detect interactive terminal for forms and the timeline view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
