package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learning-buddy/internal/database/seeder"
	"learning-buddy/internal/infrastructure/cache"
	"learning-buddy/internal/infrastructure/sheet"
	"learning-buddy/internal/usecase"

	"github.com/spf13/cobra"
)

var (
	seedCatalog  string
	seedSheet    string
	seedWorkbook string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a catalog file and/or roadmap workbook into Postgres",
	Long: `Load a catalog file and/or roadmap workbook into Postgres. Seeding the
catalog drops cached next-skill predictions.

Examples:
  roadmapctl seed --catalog data/learning_path_skills.xlsx
  roadmapctl seed --workbook data/roadmap_course.xlsx`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedCatalog, "catalog", "", "catalog file (.xlsx or .csv)")
	seedCmd.Flags().StringVar(&seedSheet, "sheet", "", "catalog sheet name (default: first sheet)")
	seedCmd.Flags().StringVar(&seedWorkbook, "workbook", "", "roadmap workbook (.xlsx)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(seedCatalog) == "" && strings.TrimSpace(seedWorkbook) == "" {
		return fmt.Errorf("provide --catalog and/or --workbook")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg := newLogger(cmd, cfg)

	var seeders []seeder.Seeder
	if seedCatalog != "" {
		skills, err := sheet.LoadCatalog(seedCatalog, seedSheet)
		if err != nil {
			return err
		}
		seeders = append(seeders, seeder.CatalogSeeder{Skills: skills})
	}
	if seedWorkbook != "" {
		tables, err := sheet.LoadRoadmap(seedWorkbook)
		if err != nil {
			return err
		}
		seeders = append(seeders, seeder.RoadmapSeeder{Tables: tables})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := (seeder.Runner{Seeders: seeders}).Run(ctx, db); err != nil {
		return err
	}
	lg.Info().Int("seeders", len(seeders)).Msg("seed complete")

	if seedCatalog != "" {
		rc := cache.NewRedis(cfg.Redis, lg)
		defer rc.Close()
		if err := rc.DeleteByPattern(ctx, usecase.NextSkillCachePattern()); err != nil {
			lg.Warn().Err(err).Msg("failed to invalidate next-skill cache")
		}
	}
	return nil
}
