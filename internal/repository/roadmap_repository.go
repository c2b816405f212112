package repository

import (
	"context"

	"learning-buddy/internal/database"
	"learning-buddy/internal/domain/roadmap"
	"learning-buddy/internal/infrastructure/sheet"
)

// RoadmapRepository supplies the roster, module metadata and pre-scored
// progress rows consumed by the compositor.
type RoadmapRepository interface {
	LoadTables(ctx context.Context) (roadmap.Tables, error)
}

type PostgresRoadmapRepository struct {
	db database.Querier
}

func NewPostgresRoadmapRepository(db database.Querier) *PostgresRoadmapRepository {
	return &PostgresRoadmapRepository{db: db}
}

func (r *PostgresRoadmapRepository) LoadTables(ctx context.Context) (roadmap.Tables, error) {
	var out roadmap.Tables
	var err error

	if out.Users, err = r.listUsers(ctx); err != nil {
		return roadmap.Tables{}, err
	}
	if out.Modules, err = r.listModules(ctx); err != nil {
		return roadmap.Tables{}, err
	}
	if out.Predictions, err = r.listPredictions(ctx); err != nil {
		return roadmap.Tables{}, err
	}
	return out, nil
}

func (r *PostgresRoadmapRepository) listUsers(ctx context.Context) ([]roadmap.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, name, email, course, learning_path_name
		 FROM roadmap_users
		 ORDER BY position ASC, user_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roadmap.User, 0)
	for rows.Next() {
		var u roadmap.User
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Course, &u.LearningPath); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRoadmapRepository) listModules(ctx context.Context) ([]roadmap.Module, error) {
	rows, err := r.db.Query(ctx,
		`SELECT title_id, title, unlock_requirement
		 FROM roadmap_modules
		 ORDER BY title_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roadmap.Module, 0)
	for rows.Next() {
		var m roadmap.Module
		if err := rows.Scan(&m.TitleID, &m.Title, &m.UnlockRequirement); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRoadmapRepository) listPredictions(ctx context.Context) ([]roadmap.Prediction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, title_id, predicted_progress, predicted_status
		 FROM module_progress_predictions
		 ORDER BY user_id ASC, title_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roadmap.Prediction, 0)
	for rows.Next() {
		var p roadmap.Prediction
		if err := rows.Scan(&p.UserID, &p.TitleID, &p.Progress, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FileRoadmapRepository reads the User, User Progress and Title sheets of a
// workbook on every call.
type FileRoadmapRepository struct {
	Path string
}

func NewFileRoadmapRepository(path string) *FileRoadmapRepository {
	return &FileRoadmapRepository{Path: path}
}

func (r *FileRoadmapRepository) LoadTables(_ context.Context) (roadmap.Tables, error) {
	return sheet.LoadRoadmap(r.Path)
}
