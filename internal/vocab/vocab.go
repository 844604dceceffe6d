// Package vocab builds a bounded tag vocabulary with rarity weights from
// a training corpus and encodes normalized tag strings into fixed-length
// feature vectors.
package vocab

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/moodlens/go-tag-mood-predictor/internal/tags"
)

// DefaultMaxSize bounds the vocabulary when no explicit cap is given.
const DefaultMaxSize = 300

// ErrEmptyCorpus is returned when Build receives a corpus with no usable
// tag strings.
var ErrEmptyCorpus = errors.New("empty training corpus")

// Vocabulary is an ordered, size-bounded mapping from tag token to column
// index, with a per-token inverse-document-frequency weight. It is built
// once from a training corpus and frozen thereafter: encoding never adds
// tokens, and tokens absent from the corpus are permanently absent.
//
// A frozen Vocabulary is safe for concurrent use.
type Vocabulary struct {
	// Tokens in column order: descending corpus frequency, ties broken by
	// ascending lexical order. This order is part of the model and must
	// not change without retraining.
	Tokens []string `json:"tokens"`

	// Weights holds the IDF weight for each column, aligned with Tokens.
	Weights []float64 `json:"weights"`

	index map[string]int
}

// Build learns a Vocabulary from a corpus of normalized tag strings.
// The maxSize most frequent tokens survive; if the corpus has fewer
// distinct tokens, the full set is kept. maxSize <= 0 selects
// DefaultMaxSize.
//
// Each surviving token's weight is the smoothed inverse document
// frequency ln((1+N)/(1+df)) + 1, so common tags contribute less per
// occurrence than rare, distinctive ones.
//
// Build is deterministic for a fixed corpus and size bound.
func Build(corpus []string, maxSize int) (*Vocabulary, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	// Corpus-level token frequency and per-token document frequency.
	freq := make(map[string]int)
	docFreq := make(map[string]int)
	docs := 0

	for _, doc := range corpus {
		tokens := tags.Split(doc)
		if len(tokens) == 0 {
			continue
		}
		docs++

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	if docs == 0 {
		return nil, fmt.Errorf("%w: no rows with tags", ErrEmptyCorpus)
	}

	// Stable selection order: frequency descending, then lexical.
	ordered := make([]string, 0, len(freq))
	for tok := range freq {
		ordered = append(ordered, tok)
	}
	sort.Slice(ordered, func(i, j int) bool {
		fi, fj := freq[ordered[i]], freq[ordered[j]]
		if fi != fj {
			return fi > fj
		}
		return ordered[i] < ordered[j]
	})

	n := min(maxSize, len(ordered))
	v := &Vocabulary{
		Tokens:  ordered[:n:n],
		Weights: make([]float64, n),
	}
	for i, tok := range v.Tokens {
		v.Weights[i] = idf(docs, docFreq[tok])
	}
	v.Reindex()

	return v, nil
}

// idf is the smoothed inverse document frequency: ln((1+n)/(1+df)) + 1.
// The +1 terms keep every in-vocabulary token's weight positive even when
// it appears in every document.
func idf(docs, docFreq int) float64 {
	return math.Log(float64(1+docs)/float64(1+docFreq)) + 1
}

// Size returns the number of vocabulary entries.
func (v *Vocabulary) Size() int {
	return len(v.Tokens)
}

// Index returns the column index for a token and whether it is in the
// vocabulary.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.lookup()[token]
	return i, ok
}

// Encode maps a normalized tag string to a feature vector of length
// Size(). Each entry is the token's occurrence count in the input times
// its IDF weight; out-of-vocabulary tokens contribute nothing. The empty
// string encodes to the all-zero vector, which is a representable state,
// not an error.
//
// Encode is pure: it never mutates or extends the vocabulary, and the
// same input always yields the same vector.
func (v *Vocabulary) Encode(normalized string) []float64 {
	vec := make([]float64, len(v.Tokens))
	for _, tok := range tags.Split(normalized) {
		if i, ok := v.lookup()[tok]; ok {
			vec[i] += v.Weights[i]
		}
	}
	return vec
}

// Reindex rebuilds the token index map from Tokens. Deserialization
// paths must call it once before the vocabulary is shared across
// goroutines; Build calls it automatically.
func (v *Vocabulary) Reindex() {
	v.index = make(map[string]int, len(v.Tokens))
	for i, tok := range v.Tokens {
		v.index[tok] = i
	}
}

func (v *Vocabulary) lookup() map[string]int {
	if v.index == nil {
		v.Reindex()
	}
	return v.index
}
