package seeder

import (
	"context"

	"learning-buddy/internal/database"
)

// Seeder loads one group of tables from already-parsed source data.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
