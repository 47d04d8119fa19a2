package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rematerial/rematerial-backend/internal/app"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if servePort != "" {
				a.Cfg.Port = servePort
			}
			return a.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: $PORT or 3001)")
}
