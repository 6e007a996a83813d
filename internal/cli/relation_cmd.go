package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turrisxyz/openproject/internal/cli/formatter"
	"github.com/turrisxyz/openproject/internal/domain"
)

func newRelationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relation",
		Short: "Manage precedence relations between work items",
	}

	cmd.AddCommand(
		newRelationFollowCmd(app),
		newRelationLinkCmd(app),
		newRelationUnfollowCmd(app),
		newRelationListCmd(app),
	)

	return cmd
}

func newRelationFollowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "follow PREDECESSOR SUCCESSOR",
		Short: "Make the successor follow the predecessor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Relations.Follow(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Work item %s now follows %s\n", args[1], args[0])
			printAlterations(res)
			return nil
		},
	}
}

func newRelationLinkCmd(app *App) *cobra.Command {
	var relType string

	cmd := &cobra.Command{
		Use:   "link PREDECESSOR SUCCESSOR",
		Short: "Create an informational relation (relates, blocks)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := domain.RelationType(relType)
			if err := app.Relations.Link(context.Background(), args[0], args[1], t); err != nil {
				return err
			}
			fmt.Printf("Linked %s %s %s\n", args[0], relType, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&relType, "type", string(domain.RelationRelates), "Relation type (relates|blocks|follows)")
	return cmd
}

func newRelationUnfollowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow PREDECESSOR SUCCESSOR",
		Short: "Remove a follows relation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Relations.Unfollow(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Work item %s no longer follows %s\n", args[1], args[0])
			return nil
		},
	}
}

func newRelationListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all relations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rels, err := app.Relations.List(context.Background())
			if err != nil {
				return err
			}
			if len(rels) == 0 {
				fmt.Println(formatter.Dim("No relations yet."))
				return nil
			}

			rows := make([][]string, 0, len(rels))
			for _, rel := range rels {
				rows = append(rows, []string{
					formatter.TruncID(rel.PredecessorID),
					formatter.RelationBadge(rel.Type),
					formatter.TruncID(rel.SuccessorID),
				})
			}
			fmt.Print(formatter.RenderTable([]string{"PREDECESSOR", "TYPE", "SUCCESSOR"}, rows))
			return nil
		},
	}
}
