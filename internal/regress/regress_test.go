package regress

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// trainingData builds a small separable dataset: feature 0 active for
// high-energy rows, feature 1 active for low-energy rows.
func trainingData() (x [][]float64, y [][]float64) {
	for i := 0; i < 10; i++ {
		x = append(x, []float64{1.2, 0, 0})
		y = append(y, []float64{0.9})
		x = append(x, []float64{0, 1.5, 0})
		y = append(y, []float64{0.1})
	}
	return x, y
}

func smallConfig() Config {
	return Config{Trees: 20, MaxDepth: 5, MinLeaf: 2, Seed: 42}
}

func TestTrainMultiTarget_InputValidation(t *testing.T) {
	x, y := trainingData()

	t.Run("empty X", func(t *testing.T) {
		_, err := TrainMultiTarget(nil, nil, []string{"energy"}, smallConfig())
		if !errors.Is(err, ErrNoTrainingData) {
			t.Errorf("error = %v, want ErrNoTrainingData", err)
		}
	})

	t.Run("row count mismatch", func(t *testing.T) {
		_, err := TrainMultiTarget(x, y[:len(y)-1], []string{"energy"}, smallConfig())
		if !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("error = %v, want ErrShapeMismatch", err)
		}
	})

	t.Run("attribute count mismatch", func(t *testing.T) {
		_, err := TrainMultiTarget(x, y, []string{"energy", "valence"}, smallConfig())
		if !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("error = %v, want ErrShapeMismatch", err)
		}
	})
}

func TestTrainMultiTarget_SeparatesTargets(t *testing.T) {
	x, y := trainingData()

	m, err := TrainMultiTarget(x, y, []string{"energy"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}

	high := m.Predict([]float64{1.2, 0, 0})[0]
	low := m.Predict([]float64{0, 1.5, 0})[0]

	if math.Abs(high-0.9) > math.Abs(high-0.1) {
		t.Errorf("high-energy input predicted %v, want closer to 0.9 than 0.1", high)
	}
	if math.Abs(low-0.1) > math.Abs(low-0.9) {
		t.Errorf("low-energy input predicted %v, want closer to 0.1 than 0.9", low)
	}
}

func TestPredict_ZeroVectorApproximatesMean(t *testing.T) {
	x, y := trainingData()

	m, err := TrainMultiTarget(x, y, []string{"energy"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}

	// Fully out-of-vocabulary input encodes to the zero vector; the
	// ensemble should land between the training extremes.
	got := m.Predict([]float64{0, 0, 0})[0]
	if got <= 0.1 || got >= 0.9 {
		t.Errorf("zero-vector prediction = %v, want strictly between 0.1 and 0.9", got)
	}
}

func TestTrainMultiTarget_Deterministic(t *testing.T) {
	x, y := trainingData()
	probe := []float64{1.2, 0.2, 0}

	a, err := TrainMultiTarget(x, y, []string{"energy"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}
	b, err := TrainMultiTarget(x, y, []string{"energy"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}

	// Bit-identical models and predictions: per-tree RNG depends only on
	// the seed and tree index, never on worker scheduling.
	if pa, pb := a.Predict(probe), b.Predict(probe); !reflect.DeepEqual(pa, pb) {
		t.Errorf("predictions differ across retrains: %v vs %v", pa, pb)
	}
	if !reflect.DeepEqual(a.Forests, b.Forests) {
		t.Error("forests differ across retrains with identical seed and data")
	}
}

func TestTrainMultiTarget_AttributesIndependent(t *testing.T) {
	x, y := trainingData()
	// Append a second attribute column.
	y2 := make([][]float64, len(y))
	for i := range y {
		y2[i] = []float64{y[i][0], 0.5}
	}

	single, err := TrainMultiTarget(x, y, []string{"energy"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}
	double, err := TrainMultiTarget(x, y2, []string{"energy", "valence"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}

	// The first attribute's ensemble must not depend on how many other
	// attributes were trained alongside it.
	if !reflect.DeepEqual(single.Forests[0], double.Forests[0]) {
		t.Error("first attribute's forest changed when a second attribute was added")
	}
}

func TestPredictBatch_PreservesRowOrder(t *testing.T) {
	x, y := trainingData()

	m, err := TrainMultiTarget(x, y, []string{"energy"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}

	batch := [][]float64{
		{1.2, 0, 0},
		{0, 1.5, 0},
	}
	got := m.PredictBatch(batch)

	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0][0] <= got[1][0] {
		t.Errorf("row order broken: high-energy row %v should exceed low-energy row %v", got[0][0], got[1][0])
	}
}

func TestSplitIndices(t *testing.T) {
	train, test := SplitIndices(10, 0.2, 42)

	if len(test) != 2 || len(train) != 8 {
		t.Fatalf("split sizes = %d/%d, want 8/2", len(train), len(test))
	}

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("index %d appears twice", i)
		}
		seen[i] = true
	}
	if len(seen) != 10 {
		t.Errorf("split covers %d indices, want 10", len(seen))
	}

	// Same seed, same split.
	train2, test2 := SplitIndices(10, 0.2, 42)
	if !reflect.DeepEqual(train, train2) || !reflect.DeepEqual(test, test2) {
		t.Error("split not reproducible for a fixed seed")
	}
}

func TestSplitIndices_KeepsTrainingRow(t *testing.T) {
	train, test := SplitIndices(2, 0.9, 1)
	if len(train) < 1 {
		t.Errorf("training set empty: train=%v test=%v", train, test)
	}
}

func TestRSquared(t *testing.T) {
	tests := []struct {
		name  string
		truth []float64
		est   []float64
		want  float64
	}{
		{
			name:  "perfect predictions",
			truth: []float64{0.1, 0.5, 0.9},
			est:   []float64{0.1, 0.5, 0.9},
			want:  1,
		},
		{
			name:  "mean predictions score zero",
			truth: []float64{0, 1},
			est:   []float64{0.5, 0.5},
			want:  0,
		},
		{
			name:  "constant truth with exact match",
			truth: []float64{0.5, 0.5},
			est:   []float64{0.5, 0.5},
			want:  1,
		},
		{
			name:  "constant truth with miss",
			truth: []float64{0.5, 0.5},
			est:   []float64{0.4, 0.6},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rSquared(tt.truth, tt.est)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("rSquared() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	x, y := trainingData()

	m, err := TrainMultiTarget(x, y, []string{"energy"}, smallConfig())
	if err != nil {
		t.Fatalf("TrainMultiTarget() error = %v", err)
	}

	report := Evaluate(m, x, y)

	if len(report.PerAttribute) != 1 {
		t.Fatalf("PerAttribute has %d entries, want 1", len(report.PerAttribute))
	}
	if report.PerAttribute[0].Name != "energy" {
		t.Errorf("attribute name = %q, want %q", report.PerAttribute[0].Name, "energy")
	}
	// The dataset is perfectly separable, so in-sample scores should be
	// strong; this is a sanity check, not a gate.
	if report.PerAttribute[0].R2 < 0.4 {
		t.Errorf("R2 = %v, want >= 0.4 on separable data", report.PerAttribute[0].R2)
	}
	if report.PerAttribute[0].MAE > 0.3 {
		t.Errorf("MAE = %v, want <= 0.3 on separable data", report.PerAttribute[0].MAE)
	}
	if report.OverallR2 != report.PerAttribute[0].R2 {
		t.Errorf("OverallR2 = %v, want %v for a single attribute", report.OverallR2, report.PerAttribute[0].R2)
	}
}
