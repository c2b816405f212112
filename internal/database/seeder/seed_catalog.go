package seeder

import (
	"context"
	"fmt"

	"learning-buddy/internal/database"
	"learning-buddy/internal/domain/catalog"
)

// CatalogSeeder replaces the learning_skills table with a catalog, keeping
// catalog order in the position column.
type CatalogSeeder struct {
	Skills []catalog.Skill
}

func (CatalogSeeder) Name() string { return "learning_skills" }

func (s CatalogSeeder) Run(ctx context.Context, db database.DB) error {
	if len(s.Skills) == 0 {
		return &catalog.ConfigurationError{Reason: "nothing to seed: catalog is empty"}
	}
	if err := EnsureTableColumns(ctx, db, "learning_skills",
		"position", "skill", "skill_level", "learning_path_name", "description", "prerequisite"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		return s.write(ctx, tx)
	})
}

func (s CatalogSeeder) write(ctx context.Context, tx database.Tx) error {
	for i, sk := range s.Skills {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO learning_skills (position, skill, skill_level, learning_path_name, description, prerequisite, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, now())
			 ON CONFLICT (position) DO UPDATE SET
			   skill = EXCLUDED.skill,
			   skill_level = EXCLUDED.skill_level,
			   learning_path_name = EXCLUDED.learning_path_name,
			   description = EXCLUDED.description,
			   prerequisite = EXCLUDED.prerequisite,
			   updated_at = now()`,
			i,
			sk.Name,
			sk.Level.String(),
			sk.LearningPath,
			sk.Description,
			sk.Prerequisite,
		)
		if err != nil {
			return fmt.Errorf("upsert skill %q: %w", sk.Name, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM learning_skills WHERE position >= $1`, len(s.Skills)); err != nil {
		return fmt.Errorf("trim stale skills: %w", err)
	}
	return nil
}
