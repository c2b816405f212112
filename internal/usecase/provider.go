package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"learning-buddy/internal/domain/nextskill"
	"learning-buddy/internal/domain/roadmap"
	"learning-buddy/internal/domain/transition"
	"learning-buddy/internal/metrics"
	"learning-buddy/internal/repository"

	"github.com/rs/zerolog"
)

// lazy builds a value at most once. A failed build is remembered and returned
// to every later caller; recovering requires a new process.
type lazy[T any] struct {
	once  sync.Once
	build func(ctx context.Context) (T, error)
	val   T
	err   error
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.once.Do(func() {
		// The first caller's cancellation must not poison the shared result.
		l.val, l.err = l.build(context.WithoutCancel(ctx))
	})
	return l.val, l.err
}

// PredictorProvider loads the catalog and trains the predictor on first use.
type PredictorProvider struct {
	l lazy[*nextskill.Predictor]
}

func NewPredictorProvider(skills repository.LearningSkillRepository, opts transition.Options, logger zerolog.Logger) *PredictorProvider {
	p := &PredictorProvider{}
	p.l.build = func(ctx context.Context) (*nextskill.Predictor, error) {
		start := time.Now()
		pred, err := buildPredictor(ctx, skills, opts, logger)
		metrics.RecordProviderBuild("predictor", time.Since(start), err)
		if err != nil {
			logger.Error().Err(err).Msg("roadmap predictor initialization failed")
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return pred, nil
	}
	return p
}

// NewStaticPredictorProvider serves an already built predictor.
func NewStaticPredictorProvider(p *nextskill.Predictor) *PredictorProvider {
	pp := &PredictorProvider{}
	pp.l.build = func(context.Context) (*nextskill.Predictor, error) { return p, nil }
	return pp
}

func (p *PredictorProvider) Get(ctx context.Context) (*nextskill.Predictor, error) {
	return p.l.get(ctx)
}

func buildPredictor(ctx context.Context, skills repository.LearningSkillRepository, opts transition.Options, logger zerolog.Logger) (*nextskill.Predictor, error) {
	list, err := skills.ListSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	pred, err := nextskill.Build(list, opts, nextskill.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	report := pred.Classifier().Report()
	metrics.RecordTraining(report)
	logger.Info().
		Int("skills", pred.Catalog().Len()).
		Int("learning_paths", len(pred.Catalog().Paths())).
		Int("positives", report.Positives).
		Int("negatives", report.Negatives).
		Float64("train_accuracy", report.TrainAccuracy).
		Float64("test_accuracy", report.TestAccuracy).
		Msg("transition classifier trained")
	return pred, nil
}

// RoadmapProvider loads roadmap tables and indexes them on first use.
type RoadmapProvider struct {
	l lazy[*roadmap.Compositor]
}

func NewRoadmapProvider(tables repository.RoadmapRepository, logger zerolog.Logger) *RoadmapProvider {
	p := &RoadmapProvider{}
	p.l.build = func(ctx context.Context) (*roadmap.Compositor, error) {
		start := time.Now()
		t, err := tables.LoadTables(ctx)
		metrics.RecordProviderBuild("compositor", time.Since(start), err)
		if err != nil {
			logger.Error().Err(err).Msg("roadmap tables initialization failed")
			return nil, fmt.Errorf("%w: load roadmap tables: %w", ErrUnavailable, err)
		}
		logger.Info().
			Int("users", len(t.Users)).
			Int("modules", len(t.Modules)).
			Int("predictions", len(t.Predictions)).
			Msg("roadmap tables loaded")
		return roadmap.NewCompositor(t), nil
	}
	return p
}

func (p *RoadmapProvider) Get(ctx context.Context) (*roadmap.Compositor, error) {
	return p.l.get(ctx)
}
