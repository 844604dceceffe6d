package regress

import (
	"errors"
	"fmt"
)

// Training input errors.
var (
	// ErrNoTrainingData is returned when X has no rows.
	ErrNoTrainingData = errors.New("no training data")

	// ErrShapeMismatch is returned when X and Y row counts disagree or a
	// Y row does not have one value per attribute.
	ErrShapeMismatch = errors.New("training matrix shape mismatch")
)

// MultiTarget predicts one continuous value per target attribute from a
// single feature vector. It holds one independently trained Forest per
// attribute: each forest sees the same X and one column of Y, so a
// pathological distribution in one attribute cannot poison another's
// model, and per-attribute hyperparameter tuning stays isolated.
//
// The attribute order is fixed at training time; prediction output is
// positionally aligned to it and must never be re-ordered without
// retraining.
type MultiTarget struct {
	Attributes []string  `json:"attributes"`
	Forests    []*Forest `json:"forests"`
}

// TrainMultiTarget trains one forest per column of y. Rows of x and y
// are aligned; y[i] holds one ground-truth value per attribute, in
// attribute order.
//
// Per-tree seeds are derived from (cfg.Seed, attribute index, tree
// index), so retraining with fixed inputs and hyperparameters reproduces
// the model exactly.
func TrainMultiTarget(x [][]float64, y [][]float64, attributes []string, cfg Config) (*MultiTarget, error) {
	cfg = cfg.withDefaults()

	if len(x) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(y) != len(x) {
		return nil, fmt.Errorf("%w: %d feature rows, %d target rows", ErrShapeMismatch, len(x), len(y))
	}
	for i, row := range y {
		if len(row) != len(attributes) {
			return nil, fmt.Errorf("%w: target row %d has %d values, want %d", ErrShapeMismatch, i, len(row), len(attributes))
		}
	}

	m := &MultiTarget{
		Attributes: attributes,
		Forests:    make([]*Forest, len(attributes)),
	}

	column := make([]float64, len(y))
	for a := range attributes {
		for i, row := range y {
			column[i] = row[a]
		}
		// Disjoint seed range per attribute keeps its ensemble
		// independent of how many attributes precede it.
		seed := cfg.Seed + int64(a)*int64(cfg.Trees)
		m.Forests[a] = trainForest(x, column, cfg, seed)
	}

	return m, nil
}

// Predict returns one predicted value per attribute, in attribute order.
// No clamping is applied: the output range is whatever the ensembles
// produce, and callers needing [0,1] bounds must clamp explicitly.
//
// A zero vector (every input token out of vocabulary) is valid input and
// yields each forest's fallback for unsplittable regions, which
// approximates the training-set mean of that attribute. The exact value
// is a property of the tree ensemble, not a designed constant.
func (m *MultiTarget) Predict(x []float64) []float64 {
	out := make([]float64, len(m.Forests))
	for a, f := range m.Forests {
		out[a] = f.Predict(x)
	}
	return out
}

// PredictBatch predicts every row of x, preserving row order.
func (m *MultiTarget) PredictBatch(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = m.Predict(row)
	}
	return out
}
