package regress

import (
	"math"
	"math/rand"
)

// DefaultTestFraction is the holdout share used when none is given.
const DefaultTestFraction = 0.2

// AttributeMetrics holds diagnostic scores for one target attribute.
type AttributeMetrics struct {
	Name string  `json:"name"`
	R2   float64 `json:"r2"`
	MAE  float64 `json:"mae"`
}

// Report summarizes holdout evaluation. Scores are diagnostic only:
// training always produces a usable model regardless of how poor they
// are.
type Report struct {
	PerAttribute []AttributeMetrics `json:"per_attribute"`
	// OverallR2 is the uniform average of the per-attribute R² scores.
	OverallR2 float64 `json:"overall_r2"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// SplitIndices shuffles row indices with the given seed and splits them
// into train and test sets. testFraction <= 0 selects
// DefaultTestFraction. At least one row stays in the training set.
func SplitIndices(n int, testFraction float64, seed int64) (train, test []int) {
	if testFraction <= 0 {
		testFraction = DefaultTestFraction
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})

	nTest := int(float64(n) * testFraction)
	if nTest >= n {
		nTest = n - 1
	}
	return idx[nTest:], idx[:nTest]
}

// Evaluate scores the model on aligned feature and target rows,
// computing R² and mean absolute error per attribute.
func Evaluate(m *MultiTarget, x [][]float64, y [][]float64) Report {
	pred := m.PredictBatch(x)

	report := Report{
		PerAttribute: make([]AttributeMetrics, len(m.Attributes)),
		TestRows:     len(x),
	}

	var r2Sum float64
	for a, name := range m.Attributes {
		truth := make([]float64, len(y))
		est := make([]float64, len(y))
		for i := range y {
			truth[i] = y[i][a]
			est[i] = pred[i][a]
		}

		metrics := AttributeMetrics{
			Name: name,
			R2:   rSquared(truth, est),
			MAE:  meanAbsError(truth, est),
		}
		report.PerAttribute[a] = metrics
		r2Sum += metrics.R2
	}

	if len(m.Attributes) > 0 {
		report.OverallR2 = r2Sum / float64(len(m.Attributes))
	}
	return report
}

// rSquared is the coefficient of determination 1 - SSres/SStot.
// A constant truth vector scores 0 unless predictions match it exactly.
func rSquared(truth, est []float64) float64 {
	if len(truth) == 0 {
		return 0
	}

	var mean float64
	for _, v := range truth {
		mean += v
	}
	mean /= float64(len(truth))

	var ssRes, ssTot float64
	for i := range truth {
		d := truth[i] - est[i]
		ssRes += d * d
		t := truth[i] - mean
		ssTot += t * t
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func meanAbsError(truth, est []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var s float64
	for i := range truth {
		s += math.Abs(truth[i] - est[i])
	}
	return s / float64(len(truth))
}
