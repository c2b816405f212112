// Package nextskill predicts which catalog skills a learner should study next,
// given a free-text description of what they already know.
package nextskill

import (
	"sort"
	"strings"
	"unicode/utf8"

	"learning-buddy/internal/domain/catalog"
	"learning-buddy/internal/domain/prereq"
	"learning-buddy/internal/domain/transition"

	"github.com/rs/zerolog"
)

const (
	DefaultTopN = 5
	MaxTopN     = 10

	// FallbackProbability is attached to entry-point skills returned when no
	// current skill is detected; no transition score applies to them.
	FallbackProbability = 0.8

	boostNextLevel = 1.2
	boostSameLevel = 1.1
)

// TechKeywords are scanned, in this order, against the lower-cased query.
var TechKeywords = []string{
	"html", "css", "javascript", "js", "react", "vue", "angular",
	"python", "java", "php", "nodejs", "node.js", "typescript", "swift",
	"kotlin", "flutter", "dart", "sql", "mysql", "mongodb", "postgresql",
	"git", "docker", "kubernetes", "aws", "azure", "gcp",
	"bootstrap", "tailwind", "sass", "webpack", "jest", "redux",
	"express", "django", "flask", "spring", "laravel", "rails",
	"restful", "graphql", "api", "json", "xml", "ajax",
	"responsive", "frontend", "backend", "fullstack", "devops",
	"android", "ios", "mobile", "web", "cloud", "database",
}

// Outcome tells callers which branch produced a Result.
type Outcome string

const (
	// OutcomeRanked: current skills were detected and candidates were scored.
	// Recommendations may still be empty when filtering left nothing.
	OutcomeRanked Outcome = "ranked"
	// OutcomeFallback: nothing detected; beginner skills of the detected path.
	OutcomeFallback Outcome = "fallback"
	// OutcomeEmpty: nothing detected and the fallback path had no beginner skills.
	OutcomeEmpty Outcome = "empty"
)

type Recommendation struct {
	SkillID           int
	Skill             string
	SkillLevel        string
	Level             catalog.Level
	Prerequisite      string
	PrerequisiteCount int
	Probability       float64
}

type Result struct {
	Query           string
	Outcome         Outcome
	LearningPath    string
	DetectedSkills  []string
	MaxLevel        catalog.Level
	CandidateCount  int
	Recommendations []Recommendation
}

// Predictor is immutable after construction and safe for concurrent use.
type Predictor struct {
	catalog    *catalog.Catalog
	graph      *prereq.Graph
	classifier *transition.Classifier
	keywords   []string
	logger     zerolog.Logger
}

type Option func(*Predictor)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Predictor) { p.logger = l }
}

func WithKeywords(keywords []string) Option {
	return func(p *Predictor) { p.keywords = keywords }
}

func New(cat *catalog.Catalog, graph *prereq.Graph, clf *transition.Classifier, opts ...Option) *Predictor {
	p := &Predictor{
		catalog:    cat,
		graph:      graph,
		classifier: clf,
		keywords:   TechKeywords,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Build loads the catalog, resolves the prerequisite graph once and trains the
// transition classifier. Any failure aborts construction.
func Build(skills []catalog.Skill, trainOpts transition.Options, opts ...Option) (*Predictor, error) {
	cat, err := catalog.New(skills)
	if err != nil {
		return nil, err
	}

	prereqs := make([]string, cat.Len())
	for i := range prereqs {
		prereqs[i] = cat.Skill(i).Prerequisite
	}
	graph := prereq.BuildGraph(cat.Names(), prereqs)

	clf, err := transition.Train(cat, graph, trainOpts)
	if err != nil {
		return nil, err
	}
	return New(cat, graph, clf, opts...), nil
}

func (p *Predictor) Catalog() *catalog.Catalog { return p.catalog }

func (p *Predictor) Classifier() *transition.Classifier { return p.classifier }

// DetectCurrentSkills maps query text to catalog skills. Each known keyword in
// the query selects the lowest-level skill whose name contains it; without any
// keyword hit, every word longer than two characters is tried the same way.
// Results are unique by name, in first-seen order.
func (p *Predictor) DetectCurrentSkills(query string) []int {
	q := strings.ToLower(query)

	var hits []int
	for _, kw := range p.keywords {
		if !strings.Contains(q, kw) {
			continue
		}
		if id, ok := p.lowestLevelContaining(kw); ok {
			hits = append(hits, id)
		}
	}

	if len(hits) == 0 {
		for _, w := range strings.Fields(q) {
			if utf8.RuneCountInString(w) <= 2 {
				continue
			}
			if id, ok := p.lowestLevelContaining(w); ok {
				hits = append(hits, id)
			}
		}
	}

	seen := make(map[string]struct{}, len(hits))
	out := make([]int, 0, len(hits))
	for _, id := range hits {
		name := p.catalog.Skill(id).Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, id)
	}
	return out
}

// lowestLevelContaining picks the lowest-level skill whose lower-cased name
// contains term; ties go to the earliest skill in the catalog.
func (p *Predictor) lowestLevelContaining(term string) (int, bool) {
	best := -1
	for id := 0; id < p.catalog.Len(); id++ {
		s := p.catalog.Skill(id)
		if !strings.Contains(strings.ToLower(s.Name), term) {
			continue
		}
		if best < 0 || s.Level < p.catalog.Skill(best).Level {
			best = id
		}
	}
	return best, best >= 0
}

// Predict runs one query through detection, filtering, scoring and ranking.
// Only an untrained classifier is an error; every other dead end is an empty
// Result.
func (p *Predictor) Predict(query string, topN int) (Result, error) {
	if !p.classifier.Trained() {
		return Result{}, transition.ErrNotTrained
	}
	topN = clampTopN(topN)

	res := Result{Query: query}
	current := p.DetectCurrentSkills(query)
	if len(current) == 0 {
		return p.fallback(res, topN), nil
	}

	for _, id := range current {
		res.DetectedSkills = append(res.DetectedSkills, p.catalog.Skill(id).Name)
	}
	res.Outcome = OutcomeRanked
	res.LearningPath = p.catalog.Skill(current[0]).LearningPath
	for _, id := range current {
		if lvl := p.catalog.Level(id); lvl > res.MaxLevel {
			res.MaxLevel = lvl
		}
	}

	candidates := p.filterCandidates(current, res.LearningPath, res.MaxLevel)
	res.CandidateCount = len(candidates)

	scored, err := p.score(current, candidates, res.MaxLevel)
	if err != nil {
		return Result{}, err
	}
	res.Recommendations = rank(scored, topN)

	p.logger.Debug().
		Str("query", query).
		Strs("detected", res.DetectedSkills).
		Str("learning_path", res.LearningPath).
		Int("max_level", int(res.MaxLevel)).
		Int("candidates", res.CandidateCount).
		Int("returned", len(res.Recommendations)).
		Msg("next skills predicted")
	return res, nil
}

func (p *Predictor) fallback(res Result, topN int) Result {
	res.LearningPath = p.catalog.DetectLearningPath(res.Query)

	for _, id := range p.catalog.InPath(res.LearningPath) {
		s := p.catalog.Skill(id)
		if s.Level != catalog.LevelBeginner {
			continue
		}
		res.Recommendations = append(res.Recommendations, p.recommendation(id, FallbackProbability))
		if len(res.Recommendations) == topN {
			break
		}
	}

	res.Outcome = OutcomeFallback
	if len(res.Recommendations) == 0 {
		res.Outcome = OutcomeEmpty
	}
	p.logger.Debug().
		Str("query", res.Query).
		Str("learning_path", res.LearningPath).
		Int("returned", len(res.Recommendations)).
		Msg("no current skill detected, using learning path fallback")
	return res
}

// filterCandidates keeps skills of the path at or above maxLevel whose resolved
// prerequisites match the detected skills. With a single detected name one
// matching prerequisite is enough; with several, every detected name must be
// matched by some prerequisite. The asymmetry is intentional.
func (p *Predictor) filterCandidates(current []int, path string, maxLevel catalog.Level) []int {
	resolver := p.graph.Resolver()

	names := make([]string, 0, len(current))
	seen := make(map[string]struct{}, len(current))
	for _, id := range current {
		n := resolver.Stripped(id)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}

	var out []int
	for _, id := range p.catalog.InPath(path) {
		if p.catalog.Level(id) < maxLevel {
			continue
		}
		parents := p.graph.Parents(id)
		if len(parents) == 0 {
			continue
		}

		matched := 0
		for _, cur := range names {
			for _, parent := range parents {
				if prereq.Overlaps(cur, resolver.Stripped(parent)) {
					matched++
					break
				}
			}
		}

		if len(names) == 1 && matched >= 1 || len(names) > 1 && matched == len(names) {
			out = append(out, id)
		}
	}
	return out
}

func (p *Predictor) score(current, candidates []int, maxLevel catalog.Level) ([]Recommendation, error) {
	out := make([]Recommendation, 0, len(candidates))
	for _, id := range candidates {
		var sum float64
		for _, cur := range current {
			sum += p.catalog.Similarity(cur, id)
		}
		meanSim := sum / float64(len(current))

		lvl := p.catalog.Level(id)
		prob, err := p.classifier.Probability(transition.NewFeatures(meanSim, maxLevel, lvl))
		if err != nil {
			return nil, err
		}
		out = append(out, p.recommendation(id, prob*LevelBoost(lvl, maxLevel)))
	}
	return out, nil
}

// LevelBoost favours the immediate next level, then lateral skills at the
// current level.
func LevelBoost(candidate, current catalog.Level) float64 {
	switch candidate {
	case current + 1:
		return boostNextLevel
	case current:
		return boostSameLevel
	default:
		return 1.0
	}
}

// rank orders by level ascending, written prerequisite count ascending and
// boosted probability descending; remaining ties keep catalog order. Level
// always dominates probability. Duplicate names keep their first occurrence.
func rank(recs []Recommendation, topN int) []Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.PrerequisiteCount != b.PrerequisiteCount {
			return a.PrerequisiteCount < b.PrerequisiteCount
		}
		if a.Probability != b.Probability {
			return a.Probability > b.Probability
		}
		return a.SkillID < b.SkillID
	})

	seen := make(map[string]struct{}, len(recs))
	out := make([]Recommendation, 0, topN)
	for _, r := range recs {
		if _, dup := seen[r.Skill]; dup {
			continue
		}
		seen[r.Skill] = struct{}{}
		out = append(out, r)
		if len(out) == topN {
			break
		}
	}
	return out
}

func (p *Predictor) recommendation(id int, prob float64) Recommendation {
	s := p.catalog.Skill(id)
	return Recommendation{
		SkillID:           id,
		Skill:             s.Name,
		SkillLevel:        s.Level.String(),
		Level:             s.Level,
		Prerequisite:      s.Prerequisite,
		PrerequisiteCount: p.graph.TokenCount(id),
		Probability:       prob,
	}
}

func clampTopN(n int) int {
	if n <= 0 {
		return DefaultTopN
	}
	if n > MaxTopN {
		return MaxTopN
	}
	return n
}
