package seeder

import (
	"context"
	"fmt"

	"learning-buddy/internal/database"
)

// Runner applies seeders in order and stops at the first failure. Each seeder
// commits its own transaction, so earlier seeders stay applied.
type Runner struct {
	Seeders []Seeder
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}
	return nil
}
