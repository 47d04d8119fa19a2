package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rematerial/rematerial-backend/internal/app"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file.yaml]",
	Short: "Load a YAML material catalog",
	Long: `Load materials and projects from a YAML catalog. Without an argument the
embedded demo catalog is loaded. Rows are upserted by id, so seeding is repeatable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := app.SeedDemo
		if len(args) == 1 {
			path = args[0]
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			c, err := a.Seed(ctx, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d materials and %d projects\n", len(c.Materials), len(c.Projects))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
