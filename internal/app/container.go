package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learning-buddy/internal/config"
	"learning-buddy/internal/database"
	dbpostgres "learning-buddy/internal/database/postgres"
	"learning-buddy/internal/domain/transition"
	"learning-buddy/internal/infrastructure/cache"
	"learning-buddy/internal/repository"
	"learning-buddy/internal/usecase"
	"learning-buddy/internal/ws"

	"github.com/rs/zerolog"
)

// Container owns every long-lived dependency of the server and the CLI.
type Container struct {
	Config config.Config
	Logger zerolog.Logger

	DB    database.DB
	Cache *cache.Redis
	Hub   *ws.Hub

	Predictors *usecase.PredictorProvider
	Roadmaps   *usecase.RoadmapProvider

	NextSkill *usecase.NextSkill
	Roadmap   *usecase.ProgressRoadmap
}

func NewContainer(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if cfg.Database.Enabled {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := dbpostgres.Connect(connectCtx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		c.DB = db
	}

	skills, err := LearningSkillRepository(cfg, c.DB)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	tables, err := RoadmapRepository(cfg, c.DB)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Cache = cache.NewRedis(cfg.Redis, logger.With().Str("component", "cache").Logger())
	c.Hub = ws.NewHub(logger.With().Str("component", "ws").Logger())

	c.Predictors = usecase.NewPredictorProvider(skills, ClassifierOptions(cfg.Classifier), logger.With().Str("component", "predictor").Logger())
	c.Roadmaps = usecase.NewRoadmapProvider(tables, logger.With().Str("component", "roadmap").Logger())

	var jsonCache usecase.JSONCache
	if c.Cache.Enabled() {
		jsonCache = c.Cache
	}
	c.NextSkill = usecase.NewNextSkillUsecase(c.Predictors, jsonCache, cfg.Redis.TTL, logger)
	c.Roadmap = usecase.NewProgressRoadmapUsecase(c.Roadmaps, ws.NewNotifier(c.Hub), logger)

	return c, nil
}

// Warmup builds the predictor and the compositor now instead of at first use.
func (c *Container) Warmup(ctx context.Context) error {
	_, perr := c.Predictors.Get(ctx)
	_, rerr := c.Roadmaps.Get(ctx)
	return errors.Join(perr, rerr)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

func LearningSkillRepository(cfg config.Config, db database.DB) (repository.LearningSkillRepository, error) {
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		if db == nil {
			return nil, errors.New("catalog source postgres requires a database connection")
		}
		return repository.NewPostgresLearningSkillRepository(db), nil
	default:
		return repository.NewFileLearningSkillRepository(cfg.Catalog.Path, cfg.Catalog.Sheet), nil
	}
}

func RoadmapRepository(cfg config.Config, db database.DB) (repository.RoadmapRepository, error) {
	switch cfg.Roadmap.Source {
	case config.SourcePostgres:
		if db == nil {
			return nil, errors.New("roadmap source postgres requires a database connection")
		}
		return repository.NewPostgresRoadmapRepository(db), nil
	default:
		return repository.NewFileRoadmapRepository(cfg.Roadmap.Path), nil
	}
}

func ClassifierOptions(cfg config.ClassifierConfig) transition.Options {
	opts := transition.DefaultOptions()
	opts.Seed = cfg.Seed
	if cfg.Trees > 0 {
		opts.Trees = cfg.Trees
	}
	if cfg.MaxDepth > 0 {
		opts.MaxDepth = cfg.MaxDepth
	}
	if cfg.MinSamplesSplit > 0 {
		opts.MinSamplesSplit = cfg.MinSamplesSplit
	}
	opts.TestFraction = cfg.TestFraction
	return opts
}
