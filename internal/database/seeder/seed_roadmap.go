package seeder

import (
	"context"
	"fmt"

	"learning-buddy/internal/database"
	"learning-buddy/internal/domain/roadmap"
)

// RoadmapSeeder loads roster, module and prediction rows. Existing rows with
// the same keys are overwritten; other rows are left alone.
type RoadmapSeeder struct {
	Tables roadmap.Tables
}

func (RoadmapSeeder) Name() string { return "roadmap" }

func (s RoadmapSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "roadmap_users", "user_id", "position", "name", "email", "course", "learning_path_name"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "roadmap_modules", "title_id", "title", "unlock_requirement"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "module_progress_predictions", "user_id", "title_id", "predicted_progress", "predicted_status"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		return s.write(ctx, tx)
	})
}

func (s RoadmapSeeder) write(ctx context.Context, tx database.Tx) error {
	for i, u := range s.Tables.Users {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO roadmap_users (user_id, position, name, email, course, learning_path_name)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (user_id) DO UPDATE SET
			   position = EXCLUDED.position,
			   name = EXCLUDED.name,
			   email = EXCLUDED.email,
			   course = EXCLUDED.course,
			   learning_path_name = EXCLUDED.learning_path_name`,
			u.UserID, i, u.Name, u.Email, u.Course, u.LearningPath,
		)
		if err != nil {
			return fmt.Errorf("upsert user %s: %w", u.UserID, err)
		}
	}

	for _, m := range s.Tables.Modules {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO roadmap_modules (title_id, title, unlock_requirement)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (title_id) DO UPDATE SET
			   title = EXCLUDED.title,
			   unlock_requirement = EXCLUDED.unlock_requirement`,
			m.TitleID, m.Title, m.UnlockRequirement,
		)
		if err != nil {
			return fmt.Errorf("upsert module %d: %w", m.TitleID, err)
		}
	}

	for _, p := range s.Tables.Predictions {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO module_progress_predictions (user_id, title_id, predicted_progress, predicted_status, updated_at)
			 VALUES ($1, $2, $3, $4, now())
			 ON CONFLICT (user_id, title_id) DO UPDATE SET
			   predicted_progress = EXCLUDED.predicted_progress,
			   predicted_status = EXCLUDED.predicted_status,
			   updated_at = now()`,
			p.UserID, p.TitleID, p.Progress, p.Status,
		)
		if err != nil {
			return fmt.Errorf("upsert prediction %s/%d: %w", p.UserID, p.TitleID, err)
		}
	}

	return nil
}
