package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rematerial/rematerial-backend/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "rematerial",
	Short: "ReMaterial recommendation and preference engine",
	Long: `ReMaterial recommends reclaimed and sustainable building materials for
construction projects and records per-project material preferences.`,
	SilenceUsage: true,
}

// withApp builds the application for one command run and tears it down after.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("app init failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}
