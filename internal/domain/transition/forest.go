package transition

import (
	"math/rand"
	"sort"
)

type ForestOptions struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
}

// Forest is a bagged ensemble of CART trees using weighted Gini impurity.
type Forest struct {
	trees []*node
}

type node struct {
	leaf      bool
	prob      float64
	feature   int
	threshold float64
	left      *node
	right     *node
}

type sample struct {
	x Features
	y bool
}

// fitForest trains each tree on a bootstrap draw. Class weights balance the
// two labels over the full training set; bootstrap multiplicity is folded into
// the per-sample weight.
func fitForest(samples []sample, opts ForestOptions, rng *rand.Rand) *Forest {
	n := len(samples)
	var positives int
	for _, s := range samples {
		if s.y {
			positives++
		}
	}
	classWeight := [2]float64{1, 1}
	if positives > 0 && positives < n {
		classWeight[0] = float64(n) / (2 * float64(n-positives))
		classWeight[1] = float64(n) / (2 * float64(positives))
	}

	f := &Forest{trees: make([]*node, 0, opts.Trees)}
	for t := 0; t < opts.Trees; t++ {
		counts := make([]int, n)
		for i := 0; i < n; i++ {
			counts[rng.Intn(n)]++
		}

		idx := make([]int, 0, n)
		weights := make([]float64, n)
		for i, c := range counts {
			if c == 0 {
				continue
			}
			idx = append(idx, i)
			w := classWeight[0]
			if samples[i].y {
				w = classWeight[1]
			}
			weights[i] = w * float64(c)
		}

		b := treeBuilder{samples: samples, weights: weights, opts: opts, rng: rng}
		f.trees = append(f.trees, b.build(idx, 0))
	}
	return f
}

// Proba is the mean positive-class probability over all trees.
func (f *Forest) Proba(x Features) float64 {
	if f == nil || len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

func (n *node) predict(x Features) float64 {
	cur := n
	for !cur.leaf {
		if x[cur.feature] <= cur.threshold {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return cur.prob
}

type treeBuilder struct {
	samples []sample
	weights []float64
	opts    ForestOptions
	rng     *rand.Rand
}

func (b *treeBuilder) build(idx []int, depth int) *node {
	var total, pos float64
	for _, i := range idx {
		total += b.weights[i]
		if b.samples[i].y {
			pos += b.weights[i]
		}
	}
	leaf := &node{leaf: true}
	if total > 0 {
		leaf.prob = pos / total
	}

	if depth >= b.opts.MaxDepth || len(idx) < b.opts.MinSamplesSplit || pos == 0 || pos == total {
		return leaf
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if b.samples[i].x[feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit inspects MaxFeatures randomly chosen features and keeps looking at
// the remaining ones only while no valid split has been found.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	order := b.rng.Perm(NumFeatures)

	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := 0.0
	found := false

	sorted := make([]int, len(idx))
	for k, f := range order {
		if k >= b.opts.MaxFeatures && found {
			break
		}

		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.samples[sorted[i]].x[f] < b.samples[sorted[j]].x[f]
		})

		var total, totalPos float64
		for _, i := range sorted {
			total += b.weights[i]
			if b.samples[i].y {
				totalPos += b.weights[i]
			}
		}

		var leftW, leftPos float64
		for p := 0; p < len(sorted)-1; p++ {
			i := sorted[p]
			leftW += b.weights[i]
			if b.samples[i].y {
				leftPos += b.weights[i]
			}

			v, next := b.samples[i].x[f], b.samples[sorted[p+1]].x[f]
			if v == next {
				continue
			}

			rightW := total - leftW
			rightPos := totalPos - leftPos
			impurity := (leftW*gini(leftPos, leftW) + rightW*gini(rightPos, rightW)) / total
			if !found || impurity < bestImpurity {
				found = true
				bestFeature = f
				bestThreshold = (v + next) / 2
				bestImpurity = impurity
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func gini(pos, total float64) float64 {
	if total <= 0 {
		return 0
	}
	p := pos / total
	return 1 - p*p - (1-p)*(1-p)
}
