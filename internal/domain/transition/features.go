// Package transition learns whether moving from one skill to another is a
// valid prerequisite progression.
package transition

import (
	"math/rand"

	"learning-buddy/internal/domain/catalog"
)

const NumFeatures = 4

// Features is [similarity, next_level - current_level, current_level, next_level].
// The same layout is used at training and inference time.
type Features [NumFeatures]float64

func NewFeatures(similarity float64, currentLevel, nextLevel catalog.Level) Features {
	cur := float64(currentLevel)
	next := float64(nextLevel)
	return Features{similarity, next - cur, cur, next}
}

// Dataset is the read-only view of the skill catalog needed to build pairs.
type Dataset interface {
	Len() int
	Level(id int) catalog.Level
	Similarity(a, b int) float64
}

// Prerequisites exposes resolved prerequisite parents per skill.
type Prerequisites interface {
	Resolutions(id int) []int
}

type Pair struct {
	Current        int
	Next           int
	IsPrerequisite bool
}

// Sampler draws two distinct skill ids out of n.
type Sampler interface {
	SamplePair(n int) (int, int)
}

// SeededSampler draws uniformly from a deterministic source. It does not check
// drawn pairs against known prerequisites, so a negative can occasionally be a
// real progression; that label noise is accepted.
type SeededSampler struct {
	rng *rand.Rand
}

func NewSeededSampler(seed int64) *SeededSampler {
	return &SeededSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *SeededSampler) SamplePair(n int) (int, int) {
	a := s.rng.Intn(n)
	b := s.rng.Intn(n - 1)
	if b >= a {
		b++
	}
	return a, b
}

// BuildPairs emits one positive pair per resolved prerequisite token, followed
// by the same number of sampled negative pairs.
func BuildPairs(ds Dataset, prereqs Prerequisites, sampler Sampler) []Pair {
	var pairs []Pair
	for child := 0; child < ds.Len(); child++ {
		for _, parent := range prereqs.Resolutions(child) {
			pairs = append(pairs, Pair{Current: parent, Next: child, IsPrerequisite: true})
		}
	}

	positives := len(pairs)
	if positives == 0 || ds.Len() < 2 {
		return pairs
	}
	for i := 0; i < positives; i++ {
		a, b := sampler.SamplePair(ds.Len())
		pairs = append(pairs, Pair{Current: a, Next: b})
	}
	return pairs
}

func PairFeatures(ds Dataset, p Pair) Features {
	return NewFeatures(ds.Similarity(p.Current, p.Next), ds.Level(p.Current), ds.Level(p.Next))
}
