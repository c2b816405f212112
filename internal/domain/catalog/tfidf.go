package catalog

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lower-cases text and returns runs of two or more word characters.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Vector is a sparse, L2-normalized TF-IDF vector with indices in ascending order.
type Vector struct {
	idx []int
	val []float64
}

func (v Vector) IsZero() bool { return len(v.idx) == 0 }

// Cosine returns the cosine similarity of two normalized vectors, clamped to [0,1].
func Cosine(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.idx) && j < len(b.idx) {
		switch {
		case a.idx[i] == b.idx[j]:
			dot += a.val[i] * b.val[j]
			i++
			j++
		case a.idx[i] < b.idx[j]:
			i++
		default:
			j++
		}
	}
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}

// Vectorizer holds a vocabulary and smoothed IDF weights fitted on a corpus:
// idf(t) = ln((1+n)/(1+df(t))) + 1.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
}

func FitVectorizer(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(d) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vectorizer{vocab: make(map[string]int, len(terms)), idf: make([]float64, len(terms))}
	n := float64(len(docs))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

func (v *Vectorizer) VocabularySize() int { return len(v.idf) }

// Transform projects text into the fitted space. Out-of-vocabulary terms are
// ignored, so text with no known terms yields a zero vector.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if i, ok := v.vocab[tok]; ok {
			counts[i]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	idx := make([]int, 0, len(counts))
	for i := range counts {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	val := make([]float64, len(idx))
	var norm float64
	for k, i := range idx {
		w := counts[i] * v.idf[i]
		val[k] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for k := range val {
		val[k] /= norm
	}
	return Vector{idx: idx, val: val}
}

// Index is a fitted vectorizer together with one vector per document.
type Index struct {
	vec  *Vectorizer
	rows []Vector
}

func NewIndex(docs []string) *Index {
	vec := FitVectorizer(docs)
	rows := make([]Vector, len(docs))
	for i, d := range docs {
		rows[i] = vec.Transform(d)
	}
	return &Index{vec: vec, rows: rows}
}

func (ix *Index) Row(i int) Vector { return ix.rows[i] }

func (ix *Index) Query(text string) Vector { return ix.vec.Transform(text) }
