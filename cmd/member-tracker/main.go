package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"member-tracker-go/internal/app"
	"member-tracker-go/internal/config"
	"member-tracker-go/pkg/logger"
)

var (
	log = logger.NewFromEnv()

	rootCmd = &cobra.Command{
		Use:          "member-tracker",
		Short:        "Track student organization membership, attendance and reports",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, reportsCmd)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Critical("app: command failed", "err", err)
		stop()
		os.Exit(1)
	}
}

// openApp loads configuration and wires the application.
func openApp() (*app.App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log)
}
