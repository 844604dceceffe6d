// Package engine wires the tag vocabulary, the multi-target regressor,
// and the persisted bundle into one prediction session handle. There is
// no global state: every trained or loaded model lives in an Engine
// value owned by the caller.
package engine

import (
	"fmt"

	"github.com/moodlens/go-tag-mood-predictor/internal/bundle"
	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
	"github.com/moodlens/go-tag-mood-predictor/internal/mood"
	"github.com/moodlens/go-tag-mood-predictor/internal/regress"
	"github.com/moodlens/go-tag-mood-predictor/internal/tags"
	"github.com/moodlens/go-tag-mood-predictor/internal/vocab"
)

// DefaultAttributes are the audio features predicted when the caller
// does not choose their own target set.
var DefaultAttributes = []string{"valence", "energy", "danceability", "acousticness"}

// Config controls training. The zero value selects the defaults the
// model family was tuned with.
type Config struct {
	// Attributes are the target columns to learn, in output order.
	Attributes []string

	// VocabSize bounds the tag vocabulary; <= 0 selects
	// vocab.DefaultMaxSize.
	VocabSize int

	// Forest holds the ensemble hyperparameters; the zero value selects
	// regress.DefaultConfig.
	Forest regress.Config

	// TestFraction is the holdout share used for the diagnostic
	// evaluation report; <= 0 selects regress.DefaultTestFraction.
	TestFraction float64
}

func (c Config) withDefaults() Config {
	if len(c.Attributes) == 0 {
		c.Attributes = append([]string(nil), DefaultAttributes...)
	}
	if c.VocabSize <= 0 {
		c.VocabSize = vocab.DefaultMaxSize
	}
	if c.Forest == (regress.Config{}) {
		c.Forest = regress.DefaultConfig()
	}
	if c.TestFraction <= 0 {
		c.TestFraction = regress.DefaultTestFraction
	}
	return c
}

// Engine is a prediction session over one trained model. After Train or
// Open it is read-only and safe for concurrent prediction calls.
type Engine struct {
	bundle *bundle.Bundle
}

// Train learns a model from a table: vocabulary from the tag corpus,
// then one forest per attribute on a seeded train split, evaluated on
// the held-out rows. The returned report is diagnostic only; poor scores
// never fail training.
func Train(t *dataset.Table, cfg Config) (*Engine, *regress.Report, error) {
	cfg = cfg.withDefaults()

	corpus, y, err := t.TrainingSet(cfg.Attributes)
	if err != nil {
		return nil, nil, err
	}

	voc, err := vocab.Build(corpus, cfg.VocabSize)
	if err != nil {
		return nil, nil, err
	}

	x := make([][]float64, len(corpus))
	for i, doc := range corpus {
		x[i] = voc.Encode(doc)
	}

	trainIdx, testIdx := regress.SplitIndices(len(x), cfg.TestFraction, cfg.Forest.Seed)
	xTrain, yTrain := selectRows(x, y, trainIdx)

	model, err := regress.TrainMultiTarget(xTrain, yTrain, cfg.Attributes, cfg.Forest)
	if err != nil {
		return nil, nil, err
	}

	xTest, yTest := selectRows(x, y, testIdx)
	report := regress.Evaluate(model, xTest, yTest)
	report.TrainRows = len(trainIdx)

	return &Engine{bundle: bundle.New(voc, model)}, &report, nil
}

func selectRows(x, y [][]float64, idx []int) (xs, ys [][]float64) {
	xs = make([][]float64, len(idx))
	ys = make([][]float64, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}

// Open restores an engine from a saved bundle.
func Open(path string) (*Engine, error) {
	b, err := bundle.Load(path)
	if err != nil {
		return nil, err
	}
	return &Engine{bundle: b}, nil
}

// Save persists the engine's model atomically.
func (e *Engine) Save(path string) error {
	return bundle.Save(e.bundle, path)
}

// Attributes returns the target attributes in model output order.
func (e *Engine) Attributes() []string {
	return e.bundle.Attributes()
}

// Predict maps a raw comma-separated tag string to one predicted value
// per attribute. Tags unknown to the vocabulary contribute nothing; an
// entirely unknown or empty tag string yields the model's zero-vector
// fallback rather than an error.
func (e *Engine) Predict(rawTags string) map[string]float64 {
	vec := e.PredictVector(rawTags)

	out := make(map[string]float64, len(vec))
	for i, attr := range e.Attributes() {
		out[attr] = vec[i]
	}
	return out
}

// PredictVector is Predict with positional output, aligned to
// Attributes. The cheaper form for batch callers.
func (e *Engine) PredictVector(rawTags string) []float64 {
	x := e.bundle.Vocabulary.Encode(tags.Normalize(rawTags))
	return e.bundle.Model.Predict(x)
}

// PredictTable fills Row.Predicted for every row of the table. Rows with
// unusable tag strings degrade to the zero-vector prediction; one bad
// row never aborts the batch.
func (e *Engine) PredictTable(t *dataset.Table) {
	attrs := e.Attributes()
	for i := range t.Rows {
		vec := e.PredictVector(t.Rows[i].Tags)
		pred := make(map[string]float64, len(vec))
		for a, attr := range attrs {
			pred[attr] = vec[a]
		}
		t.Rows[i].Predicted = pred
	}
}

// Analyze summarizes a table's mood profile. With SourcePredicted the
// engine predicts every row first; with SourceActual it reads the
// ground-truth feature columns, which must all be present.
func (e *Engine) Analyze(t *dataset.Table, source mood.Source) (*mood.Summary, error) {
	rows, err := e.featureRows(t, source)
	if err != nil {
		return nil, err
	}
	return mood.Summarize(e.Attributes(), rows, source)
}

// Compare analyzes two tables from the same source and contrasts them.
func (e *Engine) Compare(a, b *dataset.Table, nameA, nameB string, source mood.Source) (*mood.Comparison, error) {
	sa, err := e.Analyze(a, source)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", nameA, err)
	}
	sb, err := e.Analyze(b, source)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", nameB, err)
	}
	return mood.Compare(sa, sb, nameA, nameB), nil
}

// featureRows materializes the per-track value matrix for a summary,
// positionally aligned with the engine's attributes.
func (e *Engine) featureRows(t *dataset.Table, source mood.Source) ([][]float64, error) {
	attrs := e.Attributes()

	if source == mood.SourceActual {
		if !t.HasFeatures(attrs) {
			return nil, fmt.Errorf("table lacks ground-truth columns for %v", attrs)
		}
		var rows [][]float64
		for i := range t.Rows {
			vals := make([]float64, len(attrs))
			ok := true
			for a, attr := range attrs {
				v, has := t.Rows[i].Feature(attr)
				if !has {
					ok = false
					break
				}
				vals[a] = v
			}
			if ok {
				rows = append(rows, vals)
			}
		}
		return rows, nil
	}

	e.PredictTable(t)
	rows := make([][]float64, len(t.Rows))
	for i := range t.Rows {
		vals := make([]float64, len(attrs))
		for a, attr := range attrs {
			vals[a] = t.Rows[i].Predicted[attr]
		}
		rows[i] = vals
	}
	return rows, nil
}
