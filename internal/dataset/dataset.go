// Package dataset is the typed tabular boundary between external data
// sources (CSV files, database rows, API payloads) and the prediction
// engine. Adapters decide the concrete format here, so the engine core
// only ever sees Tables.
package dataset

import (
	"fmt"
	"strings"

	"github.com/moodlens/go-tag-mood-predictor/internal/tags"
)

// minTagLength filters out rows whose raw tag string is too short to
// carry a usable tag (e.g. "-" or "n/a") before training.
const minTagLength = 3

// DataError reports input data the engine cannot work with: required
// columns absent, an empty training corpus after filtering, malformed
// rows. It is raised immediately and never silently defaulted.
type DataError struct {
	msg string
}

func (e *DataError) Error() string { return e.msg }

func dataErrorf(format string, args ...any) *DataError {
	return &DataError{msg: fmt.Sprintf(format, args...)}
}

// Row is one track's worth of tabular input. Tags holds the raw
// comma-separated tag string; Features holds whatever numeric columns
// the source provided (ground truth), keyed by attribute name.
type Row struct {
	ID     string
	Artist string
	Name   string
	Album  string
	Tags   string
	// Features are ground-truth attribute values from the source.
	Features map[string]float64
	// Predicted values are filled in by the engine, never by adapters.
	Predicted map[string]float64
}

// Feature returns a ground-truth value and whether the row has it.
func (r *Row) Feature(attr string) (float64, bool) {
	v, ok := r.Features[attr]
	return v, ok
}

// Table is an ordered collection of rows plus the column names the
// source declared, for presence checks at the boundary.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the source declared the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// HasFeatures reports whether every given attribute was declared as a
// column by the source.
func (t *Table) HasFeatures(attrs []string) bool {
	for _, a := range attrs {
		if !t.HasColumn(a) {
			return false
		}
	}
	return true
}

// FromRows builds a Table from in-memory rows, deriving the column list
// from the row contents. Useful for API payloads and tests.
func FromRows(rows []Row) *Table {
	cols := []string{"tags"}
	seen := map[string]bool{"tags": true}
	for _, r := range rows {
		for attr := range r.Features {
			if !seen[attr] {
				seen[attr] = true
				cols = append(cols, attr)
			}
		}
	}
	return &Table{Columns: cols, Rows: rows}
}

// TrainingSet extracts the training corpus and target matrix for the
// given attributes. Rows with missing or too-short tag strings, or with
// any target value missing, are excluded; this mirrors the filtering the
// model was designed around, so training and retraining see the same
// population.
//
// The returned corpus is normalized; Y rows align with it, one column
// per attribute in the given order. Returns a DataError if a required
// column is absent or no usable rows remain.
func (t *Table) TrainingSet(attrs []string) (corpus []string, y [][]float64, err error) {
	if !t.HasColumn("tags") {
		return nil, nil, dataErrorf("training input missing required column %q", "tags")
	}
	for _, attr := range attrs {
		if !t.HasColumn(attr) {
			return nil, nil, dataErrorf("training input missing target column %q", attr)
		}
	}

	for _, row := range t.Rows {
		if len(strings.TrimSpace(row.Tags)) <= minTagLength {
			continue
		}

		targets := make([]float64, len(attrs))
		ok := true
		for i, attr := range attrs {
			v, has := row.Feature(attr)
			if !has {
				ok = false
				break
			}
			targets[i] = v
		}
		if !ok {
			continue
		}

		corpus = append(corpus, tags.Normalize(row.Tags))
		y = append(y, targets)
	}

	if len(corpus) == 0 {
		return nil, nil, dataErrorf("training corpus is empty after filtering rows with missing tags or targets")
	}
	return corpus, y, nil
}
