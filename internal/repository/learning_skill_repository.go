package repository

import (
	"context"

	"learning-buddy/internal/database"
	"learning-buddy/internal/domain/catalog"
	"learning-buddy/internal/infrastructure/sheet"
)

// LearningSkillRepository supplies the skill catalog in catalog order.
type LearningSkillRepository interface {
	ListSkills(ctx context.Context) ([]catalog.Skill, error)
}

type PostgresLearningSkillRepository struct {
	db database.Querier
}

func NewPostgresLearningSkillRepository(db database.Querier) *PostgresLearningSkillRepository {
	return &PostgresLearningSkillRepository{db: db}
}

func (r *PostgresLearningSkillRepository) ListSkills(ctx context.Context) ([]catalog.Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT skill, skill_level, learning_path_name, description, prerequisite
		 FROM learning_skills
		 ORDER BY position ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]catalog.Record, 0)
	for rows.Next() {
		var rec catalog.Record
		if err := rows.Scan(&rec.Skill, &rec.SkillLevel, &rec.LearningPath, &rec.Description, &rec.Prerequisite); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return catalog.FromRecords(records)
}

// FileLearningSkillRepository reads the catalog from an xlsx or CSV file on
// every call.
type FileLearningSkillRepository struct {
	Path  string
	Sheet string
}

func NewFileLearningSkillRepository(path, sheetName string) *FileLearningSkillRepository {
	return &FileLearningSkillRepository{Path: path, Sheet: sheetName}
}

func (r *FileLearningSkillRepository) ListSkills(_ context.Context) ([]catalog.Skill, error) {
	return sheet.LoadCatalog(r.Path, r.Sheet)
}
