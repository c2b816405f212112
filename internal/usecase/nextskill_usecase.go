package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"learning-buddy/internal/domain/nextskill"
	"learning-buddy/internal/domain/transition"
	"learning-buddy/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type predictorSource interface {
	Get(ctx context.Context) (*nextskill.Predictor, error)
}

type NextSkillParams struct {
	Query string
	TopN  int
}

type NextSkillUsecase interface {
	PredictNextSkills(ctx context.Context, params NextSkillParams) (nextskill.Result, error)
}

type NextSkill struct {
	predictors predictorSource
	cache      JSONCache
	ttl        time.Duration
	logger     zerolog.Logger
	group      singleflight.Group
}

func NewNextSkillUsecase(predictors predictorSource, cache JSONCache, ttl time.Duration, logger zerolog.Logger) *NextSkill {
	return &NextSkill{predictors: predictors, cache: cache, ttl: ttl, logger: logger}
}

// PredictNextSkills validates input, then serves from cache or runs the
// predictor. Concurrent identical queries share one computation.
func (u *NextSkill) PredictNextSkills(ctx context.Context, params NextSkillParams) (nextskill.Result, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nextskill.Result{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	topN := params.TopN
	if topN == 0 {
		topN = nextskill.DefaultTopN
	}
	if topN < 1 || topN > nextskill.MaxTopN {
		return nextskill.Result{}, fmt.Errorf("%w: top_n must be between 1 and %d", ErrInvalidInput, nextskill.MaxTopN)
	}

	key := NextSkillCacheKey(query, topN)
	if u.cache != nil {
		var cached nextskill.Result
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			metrics.PredictionCacheHits.Inc()
			u.logger.Debug().Str("key", key).Msg("next skill cache hit")
			cached.Query = query
			return cached, nil
		}
		metrics.PredictionCacheMisses.Inc()
	}

	v, err, shared := u.group.Do(key, func() (any, error) {
		return u.predict(ctx, key, query, topN)
	})
	if err != nil {
		return nextskill.Result{}, err
	}
	res := v.(nextskill.Result)
	if shared {
		res.Query = query
	}
	return res, nil
}

func (u *NextSkill) predict(ctx context.Context, key, query string, topN int) (nextskill.Result, error) {
	pred, err := u.predictors.Get(ctx)
	if err != nil {
		return nextskill.Result{}, err
	}

	start := time.Now()
	res, err := pred.Predict(query, topN)
	if err != nil {
		if errors.Is(err, transition.ErrNotTrained) {
			return nextskill.Result{}, fmt.Errorf("%w: %w", ErrInternal, err)
		}
		return nextskill.Result{}, err
	}
	metrics.RecordPrediction(string(res.Outcome), time.Since(start))

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, res, u.ttl); err != nil {
			u.logger.Warn().Err(err).Str("key", key).Msg("next skill cache write failed")
		}
	}
	return res, nil
}
