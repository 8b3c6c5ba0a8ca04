package main

import (
	"github.com/spf13/cobra"

	"member-tracker-go/internal/config"
	"member-tracker-go/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(log)
		if err != nil {
			return err
		}
		conn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := conn.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		applied, err := db.Migrate(conn.WithContext(cmd.Context()), log)
		if err != nil {
			return err
		}
		log.Info("db: migrations complete", "applied", applied)
		return nil
	},
}
