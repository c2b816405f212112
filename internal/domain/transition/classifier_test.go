package transition

import (
	"errors"
	"testing"

	"learning-buddy/internal/domain/catalog"
)

// chainDataset is a linear prerequisite chain 0 -> 1 -> ... -> n-1. Similarity
// is 0.9 along chain edges and 0 elsewhere so the label is learnable.
type chainDataset struct {
	n int
}

func (d chainDataset) Len() int { return d.n }

func (d chainDataset) Level(id int) catalog.Level {
	return catalog.Level(1 + id*3/d.n)
}

func (d chainDataset) Similarity(a, b int) float64 {
	if b == a+1 {
		return 0.9
	}
	return 0
}

func (d chainDataset) Resolutions(id int) []int {
	if id == 0 {
		return nil
	}
	return []int{id - 1}
}

type noPrereqs struct{}

func (noPrereqs) Resolutions(int) []int { return nil }

func TestNewFeatures(t *testing.T) {
	f := NewFeatures(0.5, catalog.LevelBeginner, catalog.LevelAdvanced)
	want := Features{0.5, 2, 1, 3}
	if f != want {
		t.Fatalf("got %v, want %v", f, want)
	}
}

func TestSeededSampler(t *testing.T) {
	a := NewSeededSampler(7)
	b := NewSeededSampler(7)
	for i := 0; i < 200; i++ {
		x1, y1 := a.SamplePair(5)
		x2, y2 := b.SamplePair(5)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("same seed produced different pairs")
		}
		if x1 == y1 {
			t.Fatalf("sampled identical ids %d", x1)
		}
		if x1 < 0 || x1 >= 5 || y1 < 0 || y1 >= 5 {
			t.Fatalf("out of range pair (%d, %d)", x1, y1)
		}
	}
}

func TestBuildPairs_BalancedLabels(t *testing.T) {
	ds := chainDataset{n: 10}
	pairs := BuildPairs(ds, ds, NewSeededSampler(1))

	var pos, neg int
	for i, p := range pairs {
		if p.IsPrerequisite {
			pos++
			if p.Next != p.Current+1 {
				t.Fatalf("pair %d is not a chain edge: %+v", i, p)
			}
			continue
		}
		neg++
		if p.Current == p.Next {
			t.Fatalf("negative pair %d uses the same skill twice", i)
		}
	}
	if pos != 9 || neg != 9 {
		t.Fatalf("positives=%d negatives=%d, want 9/9", pos, neg)
	}
}

func TestTrain_InsufficientData(t *testing.T) {
	_, err := Train(chainDataset{n: 5}, noPrereqs{}, DefaultOptions())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestClassifier_NotTrained(t *testing.T) {
	var zero Classifier
	if _, err := zero.Probability(Features{}); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("zero value: expected ErrNotTrained, got %v", err)
	}

	var nilClf *Classifier
	if _, err := nilClf.Score(0, 1); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("nil classifier: expected ErrNotTrained, got %v", err)
	}
}

func TestTrain_LearnsSeparableTransitions(t *testing.T) {
	ds := chainDataset{n: 30}
	clf, err := Train(ds, ds, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rep := clf.Report()
	if rep.Positives != 29 || rep.Negatives != 29 {
		t.Fatalf("unexpected report %s", rep)
	}
	if rep.TrainSize+rep.TestSize != 58 || rep.TestSize != 12 {
		t.Fatalf("unexpected split %s", rep)
	}

	good, err := clf.Probability(NewFeatures(0.9, catalog.LevelBeginner, catalog.LevelIntermediate))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	bad, err := clf.Probability(NewFeatures(0, catalog.LevelAdvanced, catalog.LevelBeginner))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if good <= 0.5 || bad >= 0.5 {
		t.Fatalf("good=%.3f bad=%.3f", good, bad)
	}

	score, err := clf.Score(3, 4)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if score < 0 || score > 1 {
		t.Fatalf("score out of range: %v", score)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	ds := chainDataset{n: 20}
	a, err := Train(ds, ds, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := Train(ds, ds, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	for cur := 0; cur < ds.n; cur++ {
		for next := 0; next < ds.n; next += 3 {
			pa, _ := a.Score(cur, next)
			pb, _ := b.Score(cur, next)
			if pa != pb {
				t.Fatalf("score(%d,%d) differs: %v vs %v", cur, next, pa, pb)
			}
		}
	}
	if a.Report() != b.Report() {
		t.Fatalf("reports differ: %s vs %s", a.Report(), b.Report())
	}
}
