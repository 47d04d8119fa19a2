package main

import (
	"context"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rematerial/rematerial-backend/internal/app"
)

var recommendQuery string

var recommendCmd = &cobra.Command{
	Use:   "recommend <project-id>",
	Short: "Print a recommendation for a project as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Services.Recommendation.Recommend(ctx, projectID, recommendQuery)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		})
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVarP(&recommendQuery, "query", "q", "", "Free-text query (default: the project's required materials)")
}
