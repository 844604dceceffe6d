package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
	"github.com/moodlens/go-tag-mood-predictor/internal/mood"
	"github.com/moodlens/go-tag-mood-predictor/internal/regress"
)

// trainingTable builds a small, cleanly separable corpus: energetic rock
// tracks against calm ambient ones.
func trainingTable() *dataset.Table {
	var rows []dataset.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, dataset.Row{
			Tags:     "Rock, Energetic",
			Features: map[string]float64{"energy": 0.9, "valence": 0.7},
		})
		rows = append(rows, dataset.Row{
			Tags:     "Ambient, Calm",
			Features: map[string]float64{"energy": 0.1, "valence": 0.3},
		})
	}
	return dataset.FromRows(rows)
}

func testConfig() Config {
	return Config{
		Attributes: []string{"energy", "valence"},
		Forest:     regress.Config{Trees: 20, MaxDepth: 5, MinLeaf: 2, Seed: 42},
	}
}

func trainedEngine(t *testing.T) *Engine {
	t.Helper()
	e, _, err := Train(trainingTable(), testConfig())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return e
}

func TestTrain_SeparatesCorpus(t *testing.T) {
	e := trainedEngine(t)

	rock := e.Predict("rock, energetic")
	ambient := e.Predict("ambient, calm")

	if rock["energy"] <= 0.7 {
		t.Errorf("rock energy = %v, want > 0.7", rock["energy"])
	}
	if ambient["energy"] >= 0.3 {
		t.Errorf("ambient energy = %v, want < 0.3", ambient["energy"])
	}

	// Tags the model has never seen encode to the zero vector and land
	// between the two extremes.
	unknown := e.Predict("vocaloid")
	if unknown["energy"] <= ambient["energy"] || unknown["energy"] >= rock["energy"] {
		t.Errorf("unknown-tag energy = %v, want between %v and %v",
			unknown["energy"], ambient["energy"], rock["energy"])
	}
}

func TestTrain_Report(t *testing.T) {
	_, report, err := Train(trainingTable(), testConfig())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if report.TrainRows == 0 || report.TestRows == 0 {
		t.Errorf("report rows = %d/%d, want a non-empty split", report.TrainRows, report.TestRows)
	}
	if len(report.PerAttribute) != 2 {
		t.Fatalf("got %d attribute metrics, want 2", len(report.PerAttribute))
	}
	// The corpus is perfectly separable, so the holdout should score well.
	if report.OverallR2 < 0.5 {
		t.Errorf("overall R2 = %v, want >= 0.5 on separable data", report.OverallR2)
	}
}

func TestTrain_MissingTargetColumn(t *testing.T) {
	table := dataset.FromRows([]dataset.Row{
		{Tags: "rock", Features: map[string]float64{"energy": 0.9}},
	})

	cfg := testConfig()
	cfg.Attributes = []string{"energy", "tempo"}

	_, _, err := Train(table, cfg)
	var de *dataset.DataError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want a DataError for the missing column", err)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	a := trainedEngine(t)
	b := trainedEngine(t)

	for _, probe := range []string{"rock, energetic", "ambient", "vocaloid", ""} {
		va, vb := a.PredictVector(probe), b.PredictVector(probe)
		for i := range va {
			if va[i] != vb[i] {
				t.Errorf("probe %q attribute %d: %v vs %v", probe, i, va[i], vb[i])
			}
		}
	}
}

func TestPredictTable(t *testing.T) {
	e := trainedEngine(t)

	table := dataset.FromRows([]dataset.Row{
		{Name: "Anthem", Tags: "rock, energetic"},
		{Name: "Drift", Tags: "ambient, calm"},
		{Name: "Untagged", Tags: ""},
	})

	e.PredictTable(table)

	for i, row := range table.Rows {
		if len(row.Predicted) != 2 {
			t.Fatalf("row %d: %d predictions, want 2", i, len(row.Predicted))
		}
	}
	if table.Rows[0].Predicted["energy"] <= table.Rows[1].Predicted["energy"] {
		t.Error("rock row should predict higher energy than ambient row")
	}
	// The empty-tag row degrades to the zero-vector fallback, it must not
	// be skipped.
	if _, ok := table.Rows[2].Predicted["energy"]; !ok {
		t.Error("empty-tag row was not predicted")
	}
}

func TestSaveOpen_RoundTrip(t *testing.T) {
	e := trainedEngine(t)
	path := filepath.Join(t.TempDir(), "model.json")

	if err := e.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for _, probe := range []string{"rock, energetic", "vocaloid", ""} {
		orig, back := e.PredictVector(probe), loaded.PredictVector(probe)
		for i := range orig {
			if orig[i] != back[i] {
				t.Errorf("probe %q attribute %d: %v vs %v after round trip", probe, i, orig[i], back[i])
			}
		}
	}
}

func TestAnalyze_Predicted(t *testing.T) {
	e := trainedEngine(t)

	table := dataset.FromRows([]dataset.Row{
		{Tags: "rock, energetic"},
		{Tags: "rock, energetic"},
	})

	s, err := e.Analyze(table, mood.SourcePredicted)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if s.Source != mood.SourcePredicted {
		t.Errorf("source = %q, want predicted", s.Source)
	}
	if s.Tracks != 2 {
		t.Errorf("tracks = %d, want 2", s.Tracks)
	}
	if s.Mean("energy") <= 0.7 {
		t.Errorf("mean energy = %v, want > 0.7 for an all-rock table", s.Mean("energy"))
	}
}

func TestAnalyze_Actual(t *testing.T) {
	e := trainedEngine(t)

	table := dataset.FromRows([]dataset.Row{
		{Tags: "rock", Features: map[string]float64{"energy": 0.8, "valence": 0.6}},
		{Tags: "rock", Features: map[string]float64{"energy": 0.6, "valence": 0.4}},
	})

	s, err := e.Analyze(table, mood.SourceActual)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if s.Source != mood.SourceActual {
		t.Errorf("source = %q, want actual", s.Source)
	}
	if s.Mean("energy") != 0.7 {
		t.Errorf("mean energy = %v, want exactly 0.7 from ground truth", s.Mean("energy"))
	}
}

func TestAnalyze_ActualMissingColumns(t *testing.T) {
	e := trainedEngine(t)

	table := dataset.FromRows([]dataset.Row{{Tags: "rock"}})
	if _, err := e.Analyze(table, mood.SourceActual); err == nil {
		t.Error("expected an error when ground-truth columns are absent")
	}
}

func TestCompare(t *testing.T) {
	e := trainedEngine(t)

	rock := dataset.FromRows([]dataset.Row{{Tags: "rock, energetic"}, {Tags: "rock"}})
	calm := dataset.FromRows([]dataset.Row{{Tags: "ambient, calm"}, {Tags: "calm"}})

	c, err := e.Compare(rock, calm, "Workout", "Wind-down", mood.SourcePredicted)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if c.Differences["energy"] <= mood.SimilarityThreshold {
		t.Errorf("energy difference = %v, want above threshold", c.Differences["energy"])
	}
	if len(c.Interpretations) == 0 {
		t.Error("expected at least one interpretation")
	}
}
