package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	migrateOnStart bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the report scheduler",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before starting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log.Info("app: starting")

	application, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("app: close failed", "err", err)
		}
	}()

	if migrateOnStart {
		if _, err := application.Migrate(ctx); err != nil {
			return err
		}
	}

	scheduler := application.Scheduler()
	scheduler.Start()
	log.Info("jobs: scheduler started", "entries", scheduler.Len())

	srv := application.HTTPServer()
	log.Info("http: listening", "addr", srv.Addr)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		runErr = errors.Join(runErr, err)
	}
	scheduler.Shutdown()

	if runErr == nil {
		log.Info("app: stopped")
	}
	return runErr
}
