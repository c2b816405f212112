package main

import (
	"context"
	"time"

	"learning-buddy/internal/database/migration"
	"learning-buddy/migrations"

	"github.com/spf13/cobra"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "read migrations from a directory instead of the embedded set")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg := newLogger(cmd, cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := migration.Runner{FS: migrations.FS, Dir: migrationsDir}.Run(ctx, db.SQLDB())
	if err != nil {
		return err
	}
	lg.Info().Int("applied", applied).Msg("migrations complete")
	return nil
}
