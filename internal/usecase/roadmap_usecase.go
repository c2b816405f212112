package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"learning-buddy/internal/domain/roadmap"
	"learning-buddy/internal/metrics"

	"github.com/rs/zerolog"
)

// UnlockNotifier pushes "next module unlocked" events to a learner.
type UnlockNotifier interface {
	ModuleUnlocked(email string, titleID, nextTitleID int, message string)
}

type compositorSource interface {
	Get(ctx context.Context) (*roadmap.Compositor, error)
}

type RoadmapUsecase interface {
	RoadmapByEmail(ctx context.Context, email string) (roadmap.View, error)
	RoadmapByUserID(ctx context.Context, userID string) (roadmap.View, error)
	AllRoadmaps(ctx context.Context) ([]roadmap.View, error)
}

type ProgressRoadmap struct {
	compositors compositorSource
	notifier    UnlockNotifier
	logger      zerolog.Logger

	mu       sync.Mutex
	notified map[string]struct{}
}

func NewProgressRoadmapUsecase(compositors compositorSource, notifier UnlockNotifier, logger zerolog.Logger) *ProgressRoadmap {
	return &ProgressRoadmap{
		compositors: compositors,
		notifier:    notifier,
		logger:      logger,
		notified:    make(map[string]struct{}),
	}
}

func (u *ProgressRoadmap) RoadmapByEmail(ctx context.Context, email string) (roadmap.View, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return roadmap.View{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	c, err := u.compositors.Get(ctx)
	if err != nil {
		return roadmap.View{}, err
	}

	v, ok := c.ComposeByEmail(email)
	metrics.RecordCompose("email", ok)
	if !ok {
		return roadmap.View{}, ErrRoadmapUserNotFound
	}
	u.notify(v)
	return v, nil
}

func (u *ProgressRoadmap) RoadmapByUserID(ctx context.Context, userID string) (roadmap.View, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return roadmap.View{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	c, err := u.compositors.Get(ctx)
	if err != nil {
		return roadmap.View{}, err
	}

	v, ok := c.ComposeByUserID(userID)
	metrics.RecordCompose("user_id", ok)
	if !ok {
		return roadmap.View{}, ErrRoadmapUserNotFound
	}
	u.notify(v)
	return v, nil
}

func (u *ProgressRoadmap) AllRoadmaps(ctx context.Context) ([]roadmap.View, error) {
	c, err := u.compositors.Get(ctx)
	if err != nil {
		return nil, err
	}

	views := c.ComposeAll()
	metrics.RecordCompose("all", true)
	for _, v := range views {
		u.notify(v)
	}
	return views, nil
}

// notify publishes each (email, module) unlock at most once per process.
func (u *ProgressRoadmap) notify(v roadmap.View) {
	if u.notifier == nil || v.Unlock == nil || v.Email == "" {
		return
	}
	key := v.Email + "\x00" + strconv.Itoa(v.Unlock.Current.TitleID)

	u.mu.Lock()
	_, seen := u.notified[key]
	if !seen {
		u.notified[key] = struct{}{}
	}
	u.mu.Unlock()
	if seen {
		return
	}

	u.notifier.ModuleUnlocked(v.Email, v.Unlock.Current.TitleID, v.Unlock.Next.TitleID, v.NextModuleMessage)
	metrics.ModuleUnlocksTotal.Inc()
	u.logger.Info().
		Str("email", v.Email).
		Int("title_id", v.Unlock.Current.TitleID).
		Int("next_title_id", v.Unlock.Next.TitleID).
		Msg("module unlock notification published")
}
