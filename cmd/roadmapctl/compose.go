package main

import (
	"context"
	"fmt"
	"strings"

	"learning-buddy/internal/app"
	"learning-buddy/internal/config"
	"learning-buddy/internal/delivery/http/dto"
	"learning-buddy/internal/domain/roadmap"

	"github.com/spf13/cobra"
)

var (
	workbookPath string
	composeEmail string
	composeUser  string
	composeAll   bool
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Print a learner's progress roadmap",
	Long: `Print the progress roadmap of one learner, looked up by email or user id,
or of every learner with --all.

Examples:
  roadmapctl compose --workbook data/roadmap_course.xlsx --email hana@example.com
  roadmapctl compose --user-id 7
  roadmapctl compose --all`,
	Args: cobra.NoArgs,
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&workbookPath, "workbook", "", "roadmap workbook (.xlsx); overrides roadmap.source")
	composeCmd.Flags().StringVar(&composeEmail, "email", "", "learner email")
	composeCmd.Flags().StringVar(&composeUser, "user-id", "", "learner user id")
	composeCmd.Flags().BoolVar(&composeAll, "all", false, "compose every learner in roster order")
	composeCmd.MarkFlagsMutuallyExclusive("email", "user-id", "all")
}

func runCompose(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(composeEmail) == "" && strings.TrimSpace(composeUser) == "" && !composeAll {
		return fmt.Errorf("one of --email, --user-id or --all is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideFile(&cfg.Roadmap.Source, &cfg.Roadmap.Path, workbookPath)

	tables, err := loadTables(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	comp := roadmap.NewCompositor(tables)

	if composeAll {
		return printJSON(cmd.OutOrStdout(), dto.NewAllRoadmapsResponse(comp.ComposeAll()))
	}

	var (
		view  roadmap.View
		found bool
		key   string
	)
	if composeEmail != "" {
		view, found = comp.ComposeByEmail(composeEmail)
		key = composeEmail
	} else {
		view, found = comp.ComposeByUserID(composeUser)
		key = composeUser
	}
	if !found {
		return fmt.Errorf("user %q not found in roadmap roster", key)
	}
	return printJSON(cmd.OutOrStdout(), view)
}

func loadTables(ctx context.Context, cfg config.Config) (roadmap.Tables, error) {
	if cfg.Roadmap.Source == config.SourcePostgres {
		db, err := connectDB(ctx, cfg)
		if err != nil {
			return roadmap.Tables{}, err
		}
		defer db.Close()

		repo, err := app.RoadmapRepository(cfg, db)
		if err != nil {
			return roadmap.Tables{}, err
		}
		return repo.LoadTables(ctx)
	}

	repo, err := app.RoadmapRepository(cfg, nil)
	if err != nil {
		return roadmap.Tables{}, err
	}
	return repo.LoadTables(ctx)
}
