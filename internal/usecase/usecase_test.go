package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"learning-buddy/internal/domain/catalog"
	"learning-buddy/internal/domain/nextskill"
	"learning-buddy/internal/domain/roadmap"
	"learning-buddy/internal/domain/transition"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type mockSkillRepo struct {
	skills []catalog.Skill
	err    error
	calls  atomic.Int32
}

func (m *mockSkillRepo) ListSkills(context.Context) ([]catalog.Skill, error) {
	m.calls.Add(1)
	return m.skills, m.err
}

type mockRoadmapRepo struct {
	tables roadmap.Tables
	err    error
	calls  atomic.Int32
}

func (m *mockRoadmapRepo) LoadTables(context.Context) (roadmap.Tables, error) {
	m.calls.Add(1)
	return m.tables, m.err
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	c.sets++
	return nil
}

type unlockEvent struct {
	email           string
	titleID, nextID int
	message         string
}

type recordingNotifier struct {
	events []unlockEvent
}

func (n *recordingNotifier) ModuleUnlocked(email string, titleID, nextTitleID int, message string) {
	n.events = append(n.events, unlockEvent{email, titleID, nextTitleID, message})
}

func webCatalog() []catalog.Skill {
	return []catalog.Skill{
		{Name: "HTML", Level: catalog.LevelBeginner, LearningPath: "Web", Description: "struktur halaman web"},
		{Name: "CSS", Level: catalog.LevelBeginner, LearningPath: "Web", Description: "styling halaman web", Prerequisite: "HTML"},
		{Name: "JavaScript", Level: catalog.LevelIntermediate, LearningPath: "Web", Description: "interaksi halaman web", Prerequisite: "CSS"},
	}
}

func TestPredictorProvider_BuildsOnce(t *testing.T) {
	repo := &mockSkillRepo{skills: webCatalog()}
	p := NewPredictorProvider(repo, transition.DefaultOptions(), zerolog.Nop())

	var wg sync.WaitGroup
	got := make([]*nextskill.Predictor, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pred, err := p.Get(context.Background())
			if err != nil {
				t.Errorf("Get: %v", err)
			}
			got[i] = pred
		}(i)
	}
	wg.Wait()

	if n := repo.calls.Load(); n != 1 {
		t.Fatalf("expected one catalog load, got %d", n)
	}
	for _, pred := range got[1:] {
		if pred != got[0] {
			t.Fatalf("callers received different predictors")
		}
	}
}

func TestPredictorProvider_RemembersFailure(t *testing.T) {
	repo := &mockSkillRepo{}
	p := NewPredictorProvider(repo, transition.DefaultOptions(), zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := p.Get(context.Background())
		if !errors.Is(err, ErrUnavailable) || !errors.Is(err, catalog.ErrConfiguration) {
			t.Fatalf("expected unavailable configuration error, got %v", err)
		}
	}
	if n := repo.calls.Load(); n != 1 {
		t.Fatalf("failed build should not be retried, got %d loads", n)
	}
}

func TestNextSkill_Validation(t *testing.T) {
	uc := NewNextSkillUsecase(NewPredictorProvider(&mockSkillRepo{skills: webCatalog()}, transition.DefaultOptions(), zerolog.Nop()), nil, 0, zerolog.Nop())

	for _, params := range []NextSkillParams{{Query: "  "}, {Query: "html", TopN: 11}, {Query: "html", TopN: -1}} {
		if _, err := uc.PredictNextSkills(context.Background(), params); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", params, err)
		}
	}
}

func TestNextSkill_CachesByNormalizedQuery(t *testing.T) {
	repo := &mockSkillRepo{skills: webCatalog()}
	cache := newMemoryCache()
	uc := NewNextSkillUsecase(NewPredictorProvider(repo, transition.DefaultOptions(), zerolog.Nop()), cache, time.Minute, zerolog.Nop())

	first, err := uc.PredictNextSkills(context.Background(), NextSkillParams{Query: "sehabis HTML apa lagi?"})
	if err != nil {
		t.Fatalf("PredictNextSkills: %v", err)
	}
	if len(first.Recommendations) != 1 || first.Recommendations[0].Skill != "CSS" {
		t.Fatalf("unexpected result %+v", first)
	}

	second, err := uc.PredictNextSkills(context.Background(), NextSkillParams{Query: "Sehabis  html apa LAGI?", TopN: 5})
	if err != nil {
		t.Fatalf("PredictNextSkills: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected a single cache write, got %d", cache.sets)
	}
	if second.Query != "Sehabis  html apa LAGI?" {
		t.Fatalf("cached result should echo the caller's query, got %q", second.Query)
	}
	if second.Recommendations[0].Probability != first.Recommendations[0].Probability {
		t.Fatalf("cached probability differs")
	}
}

func TestNextSkill_Unavailable(t *testing.T) {
	uc := NewNextSkillUsecase(NewPredictorProvider(&mockSkillRepo{err: errors.New("db down")}, transition.DefaultOptions(), zerolog.Nop()), nil, 0, zerolog.Nop())

	_, err := uc.PredictNextSkills(context.Background(), NextSkillParams{Query: "html"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func roadmapTables() roadmap.Tables {
	return roadmap.Tables{
		Users: []roadmap.User{
			{UserID: "1", Name: "Hana", Email: "hana@example.com"},
			{UserID: "2", Name: "Rafi", Email: "rafi@example.com"},
		},
		Modules: []roadmap.Module{
			{TitleID: 1, Title: "HTML", UnlockRequirement: 80},
			{TitleID: 2, Title: "CSS", UnlockRequirement: 80},
		},
		Predictions: []roadmap.Prediction{
			{UserID: "1", TitleID: 1, Progress: 85, Status: roadmap.StatusInProgress},
			{UserID: "1", TitleID: 2, Progress: 0, Status: "Not Started"},
		},
	}
}

func TestProgressRoadmap_ByEmail(t *testing.T) {
	notifier := &recordingNotifier{}
	uc := NewProgressRoadmapUsecase(NewRoadmapProvider(&mockRoadmapRepo{tables: roadmapTables()}, zerolog.Nop()), notifier, zerolog.Nop())

	v, err := uc.RoadmapByEmail(context.Background(), " hana@example.com ")
	if err != nil {
		t.Fatalf("RoadmapByEmail: %v", err)
	}
	if v.Unlock == nil || v.Unlock.Next.Title != "CSS" {
		t.Fatalf("expected unlock of CSS, got %+v", v.Unlock)
	}
	if _, err := uc.RoadmapByUserID(context.Background(), "1"); err != nil {
		t.Fatalf("RoadmapByUserID: %v", err)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("unlock should be published once, got %d", len(notifier.events))
	}
	ev := notifier.events[0]
	if ev.email != "hana@example.com" || ev.titleID != 1 || ev.nextID != 2 || ev.message != v.NextModuleMessage {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestProgressRoadmap_Errors(t *testing.T) {
	uc := NewProgressRoadmapUsecase(NewRoadmapProvider(&mockRoadmapRepo{tables: roadmapTables()}, zerolog.Nop()), nil, zerolog.Nop())

	if _, err := uc.RoadmapByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrRoadmapUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.RoadmapByEmail(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	broken := NewProgressRoadmapUsecase(NewRoadmapProvider(&mockRoadmapRepo{err: errors.New("missing sheet")}, zerolog.Nop()), nil, zerolog.Nop())
	if _, err := broken.AllRoadmaps(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestProgressRoadmap_All(t *testing.T) {
	notifier := &recordingNotifier{}
	uc := NewProgressRoadmapUsecase(NewRoadmapProvider(&mockRoadmapRepo{tables: roadmapTables()}, zerolog.Nop()), notifier, zerolog.Nop())

	views, err := uc.AllRoadmaps(context.Background())
	if err != nil {
		t.Fatalf("AllRoadmaps: %v", err)
	}
	if len(views) != 2 || views[1].NextModuleMessage != roadmap.MessageNoProgress {
		t.Fatalf("unexpected views %+v", views)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.events))
	}
}

func TestNextSkillCacheKey(t *testing.T) {
	a := NextSkillCacheKey("  Belajar   HTML ", 5)
	if a != NextSkillCacheKey("belajar html", 5) {
		t.Fatalf("normalized queries should share a key")
	}
	if a == NextSkillCacheKey("belajar html", 6) {
		t.Fatalf("top_n must be part of the key")
	}
}
