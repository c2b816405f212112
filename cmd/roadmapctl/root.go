package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"learning-buddy/internal/config"
	"learning-buddy/internal/database"
	dbpostgres "learning-buddy/internal/database/postgres"
	"learning-buddy/internal/logger"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "roadmapctl",
	Short: "Train, query and seed the learning roadmap engine",
	Long: `roadmapctl works with the same configuration as the server.

Examples:
  roadmapctl train --catalog data/learning_path_skills.xlsx
  roadmapctl predict --catalog data/learning_path_skills.xlsx "saya sudah bisa html"
  roadmapctl compose --workbook data/roadmap_course.xlsx --email hana@example.com
  roadmapctl migrate
  roadmapctl seed --catalog data/learning_path_skills.xlsx --workbook data/roadmap_course.xlsx`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(trainCmd, predictCmd, composeCmd, migrateCmd, seedCmd, tokenCmd)
}

func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if strings.TrimSpace(configPath) != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	// CLI output goes to stdout; logs stay human readable on stderr.
	cfg.Log.Format = "console"
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	return logger.NewWithWriter(cfg.Log, "roadmapctl", cmd.ErrOrStderr())
}

func connectDB(ctx context.Context, cfg config.Config) (database.DB, error) {
	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("database is disabled; set DB_ENABLED=true")
	}
	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// overrideFile points a source at a file when the flag is set.
func overrideFile(source *string, path *string, flag string) {
	if strings.TrimSpace(flag) == "" {
		return
	}
	*source = config.SourceFile
	*path = flag
}
