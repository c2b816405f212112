package main

import (
	"context"
	"fmt"
	"strings"

	"learning-buddy/internal/app"
	"learning-buddy/internal/config"
	"learning-buddy/internal/delivery/http/dto"
	"learning-buddy/internal/domain/catalog"
	"learning-buddy/internal/domain/nextskill"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	catalogPath  string
	catalogSheet string
	seedFlag     int64
	topN         int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the transition classifier and print its report",
	Args:  cobra.NoArgs,
	RunE:  runTrain,
}

var predictCmd = &cobra.Command{
	Use:   "predict <query>",
	Short: "Recommend next skills for a free-text query",
	Long: `Recommend next skills for a free-text query.

Examples:
  roadmapctl predict --catalog data/learning_path_skills.xlsx "saya sudah bisa html dan css"
  roadmapctl predict --top 3 "mau belajar data science"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	for _, c := range []*cobra.Command{trainCmd, predictCmd} {
		c.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (.xlsx or .csv); overrides catalog.source")
		c.Flags().StringVar(&catalogSheet, "sheet", "", "catalog sheet name (default: first sheet)")
		c.Flags().Int64Var(&seedFlag, "seed", 0, "override classifier.seed")
	}
	predictCmd.Flags().IntVar(&topN, "top", nextskill.DefaultTopN, "number of recommendations (1-10)")
}

func loadPredictor(ctx context.Context, cmd *cobra.Command) (*nextskill.Predictor, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	lg := newLogger(cmd, cfg)

	overrideFile(&cfg.Catalog.Source, &cfg.Catalog.Path, catalogPath)
	if catalogSheet != "" {
		cfg.Catalog.Sheet = catalogSheet
	}
	if cmd.Flags().Changed("seed") {
		cfg.Classifier.Seed = seedFlag
	}

	skills, err := loadSkills(ctx, cfg)
	if err != nil {
		return nil, lg, err
	}
	pred, err := nextskill.Build(skills, app.ClassifierOptions(cfg.Classifier), nextskill.WithLogger(lg))
	if err != nil {
		return nil, lg, err
	}
	return pred, lg, nil
}

func loadSkills(ctx context.Context, cfg config.Config) ([]catalog.Skill, error) {
	if cfg.Catalog.Source == config.SourcePostgres {
		db, err := connectDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		repo, err := app.LearningSkillRepository(cfg, db)
		if err != nil {
			return nil, err
		}
		return repo.ListSkills(ctx)
	}

	repo, err := app.LearningSkillRepository(cfg, nil)
	if err != nil {
		return nil, err
	}
	return repo.ListSkills(ctx)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	pred, lg, err := loadPredictor(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	report := pred.Classifier().Report()
	lg.Info().Int("skills", pred.Catalog().Len()).Msg("catalog loaded")

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"skills":         pred.Catalog().Len(),
		"learning_paths": pred.Catalog().Paths(),
		"positives":      report.Positives,
		"negatives":      report.Negatives,
		"train_size":     report.TrainSize,
		"test_size":      report.TestSize,
		"train_accuracy": report.TrainAccuracy,
		"test_accuracy":  report.TestAccuracy,
	})
}

func runPredict(cmd *cobra.Command, args []string) error {
	if topN < 1 || topN > nextskill.MaxTopN {
		return fmt.Errorf("--top must be between 1 and %d", nextskill.MaxTopN)
	}
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	pred, _, err := loadPredictor(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	res, err := pred.Predict(query, topN)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), dto.NewNextSkillResponse(res))
}
