package transition

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	ErrNotTrained       = errors.New("transition classifier not trained")
	ErrInsufficientData = errors.New("not enough prerequisite pairs to train transition classifier")
)

type Options struct {
	Seed            int64
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	TestFraction    float64
	// Sampler draws negative pairs. Defaults to a SeededSampler using Seed.
	Sampler Sampler
}

func DefaultOptions() Options {
	return Options{
		Seed:            42,
		Trees:           120,
		MaxDepth:        7,
		MinSamplesSplit: 4,
		TestFraction:    0.2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Trees <= 0 {
		o.Trees = d.Trees
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = d.MinSamplesSplit
	}
	if o.TestFraction < 0 || o.TestFraction >= 1 {
		o.TestFraction = d.TestFraction
	}
	if o.Sampler == nil {
		o.Sampler = NewSeededSampler(o.Seed)
	}
	return o
}

// Report is diagnostic output of a training run.
type Report struct {
	Positives     int
	Negatives     int
	TrainSize     int
	TestSize      int
	TrainAccuracy float64
	TestAccuracy  float64
}

func (r Report) String() string {
	return fmt.Sprintf("positives=%d negatives=%d train=%d test=%d train_acc=%.3f test_acc=%.3f",
		r.Positives, r.Negatives, r.TrainSize, r.TestSize, r.TrainAccuracy, r.TestAccuracy)
}

// Classifier scores (current, next) skill transitions. The zero value is
// untrained and every scoring call returns ErrNotTrained.
type Classifier struct {
	ds     Dataset
	forest *Forest
	report Report
}

// Train builds the pair set from the catalog and its prerequisite graph, splits
// it 80/20 stratified by label and fits the ensemble.
func Train(ds Dataset, prereqs Prerequisites, opts Options) (*Classifier, error) {
	opts = opts.withDefaults()

	pairs := BuildPairs(ds, prereqs, opts.Sampler)
	var positives int
	for _, p := range pairs {
		if p.IsPrerequisite {
			positives++
		}
	}
	if positives == 0 || positives == len(pairs) {
		return nil, ErrInsufficientData
	}

	samples := make([]sample, len(pairs))
	for i, p := range pairs {
		samples[i] = sample{x: PairFeatures(ds, p), y: p.IsPrerequisite}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	train, test := stratifiedSplit(samples, opts.TestFraction, rng)

	forest := fitForest(train, ForestOptions{
		Trees:           opts.Trees,
		MaxDepth:        opts.MaxDepth,
		MinSamplesSplit: opts.MinSamplesSplit,
		MaxFeatures:     int(math.Max(1, math.Floor(math.Sqrt(NumFeatures)))),
	}, rng)

	return &Classifier{
		ds:     ds,
		forest: forest,
		report: Report{
			Positives:     positives,
			Negatives:     len(pairs) - positives,
			TrainSize:     len(train),
			TestSize:      len(test),
			TrainAccuracy: accuracy(forest, train),
			TestAccuracy:  accuracy(forest, test),
		},
	}, nil
}

func (c *Classifier) Trained() bool {
	return c != nil && c.forest != nil
}

func (c *Classifier) Report() Report {
	if c == nil {
		return Report{}
	}
	return c.report
}

// Probability returns the probability that the features describe a valid
// prerequisite progression.
func (c *Classifier) Probability(f Features) (float64, error) {
	if !c.Trained() {
		return 0, ErrNotTrained
	}
	return c.forest.Proba(f), nil
}

// Score rates moving from one catalog skill to another.
func (c *Classifier) Score(current, next int) (float64, error) {
	if !c.Trained() {
		return 0, ErrNotTrained
	}
	return c.forest.Proba(PairFeatures(c.ds, Pair{Current: current, Next: next})), nil
}

// stratifiedSplit holds out a share of each label. Each label keeps at least
// one training sample.
func stratifiedSplit(samples []sample, fraction float64, rng *rand.Rand) ([]sample, []sample) {
	var byLabel [2][]int
	for i, s := range samples {
		if s.y {
			byLabel[1] = append(byLabel[1], i)
		} else {
			byLabel[0] = append(byLabel[0], i)
		}
	}

	var train, test []sample
	for _, ids := range byLabel {
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		nTest := int(math.Round(fraction * float64(len(ids))))
		if nTest >= len(ids) {
			nTest = len(ids) - 1
		}
		for k, i := range ids {
			if k < nTest {
				test = append(test, samples[i])
			} else {
				train = append(train, samples[i])
			}
		}
	}
	return train, test
}

func accuracy(f *Forest, samples []sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var correct int
	for _, s := range samples {
		if (f.Proba(s.x) > 0.5) == s.y {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}
