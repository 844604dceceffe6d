package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Track_Name,Artist,Tags,valence,energy",
		"Song A,Band X,\"rock, energetic\",0.8,0.9",
		"Song B,Band Y,\"ambient, calm\",0.3,0.1",
		"Song C,Band Z,,0.5,", // missing tags and energy
	}, "\n")

	table, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if len(table.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(table.Rows))
	}

	if !table.HasColumn("tags") || !table.HasColumn("valence") || !table.HasColumn("energy") {
		t.Errorf("columns = %v, want tags, valence, energy present", table.Columns)
	}
	// track_name maps onto the canonical name column.
	if !table.HasColumn("name") {
		t.Errorf("columns = %v, want track_name canonicalized to name", table.Columns)
	}

	first := table.Rows[0]
	if first.Name != "Song A" || first.Artist != "Band X" {
		t.Errorf("row 0 metadata = %q/%q, want Song A/Band X", first.Name, first.Artist)
	}
	if first.Tags != "rock, energetic" {
		t.Errorf("row 0 tags = %q", first.Tags)
	}
	if v, ok := first.Feature("energy"); !ok || v != 0.9 {
		t.Errorf("row 0 energy = %v/%v, want 0.9/true", v, ok)
	}

	// Empty cells leave features unset rather than defaulting to zero.
	if _, ok := table.Rows[2].Feature("energy"); ok {
		t.Error("row 2 energy should be unset for an empty cell")
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))

	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Errorf("error = %v, want *DataError", err)
	}
}

func TestTrainingSet(t *testing.T) {
	table := FromRows([]Row{
		{Tags: "Rock, Energetic", Features: map[string]float64{"energy": 0.9, "valence": 0.8}},
		{Tags: "ambient, calm", Features: map[string]float64{"energy": 0.1, "valence": 0.4}},
		{Tags: "", Features: map[string]float64{"energy": 0.5, "valence": 0.5}},             // no tags
		{Tags: "x", Features: map[string]float64{"energy": 0.5, "valence": 0.5}},            // too short
		{Tags: "pop, upbeat", Features: map[string]float64{"valence": 0.7}},                 // missing energy
	})

	corpus, y, err := table.TrainingSet([]string{"energy", "valence"})
	if err != nil {
		t.Fatalf("TrainingSet() error = %v", err)
	}

	if len(corpus) != 2 || len(y) != 2 {
		t.Fatalf("got %d/%d rows, want 2 surviving rows", len(corpus), len(y))
	}
	if corpus[0] != "rock,energetic" {
		t.Errorf("corpus[0] = %q, want normalized %q", corpus[0], "rock,energetic")
	}
	if y[0][0] != 0.9 || y[0][1] != 0.8 {
		t.Errorf("y[0] = %v, want [0.9 0.8]", y[0])
	}
}

func TestTrainingSet_Errors(t *testing.T) {
	t.Run("missing tags column", func(t *testing.T) {
		table := &Table{Columns: []string{"energy"}}
		_, _, err := table.TrainingSet([]string{"energy"})

		var dataErr *DataError
		if !errors.As(err, &dataErr) {
			t.Fatalf("error = %v, want *DataError", err)
		}
		if !strings.Contains(err.Error(), "tags") {
			t.Errorf("error %q does not name the missing column", err)
		}
	})

	t.Run("missing target column", func(t *testing.T) {
		table := &Table{Columns: []string{"tags", "energy"}}
		_, _, err := table.TrainingSet([]string{"energy", "valence"})

		var dataErr *DataError
		if !errors.As(err, &dataErr) {
			t.Fatalf("error = %v, want *DataError", err)
		}
		if !strings.Contains(err.Error(), "valence") {
			t.Errorf("error %q does not name the missing column", err)
		}
	})

	t.Run("empty after filtering", func(t *testing.T) {
		table := FromRows([]Row{
			{Tags: "", Features: map[string]float64{"energy": 0.5}},
			{Tags: "rock,pop"}, // tags but no target
		})
		_, _, err := table.TrainingSet([]string{"energy"})

		var dataErr *DataError
		if !errors.As(err, &dataErr) {
			t.Errorf("error = %v, want *DataError", err)
		}
	})
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	table := FromRows([]Row{
		{
			Name: "Song A", Artist: "Band X", Tags: "rock, energetic",
			Features:  map[string]float64{"energy": 0.9},
			Predicted: map[string]float64{"energy": 0.85, "valence": 0.7},
		},
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table, []string{"energy", "valence"}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	out, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() of written output error = %v", err)
	}

	if len(out.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(out.Rows))
	}
	row := out.Rows[0]
	if row.Tags != "rock, energetic" {
		t.Errorf("tags = %q", row.Tags)
	}
	if v, ok := row.Feature("pred_energy"); !ok || v != 0.85 {
		t.Errorf("pred_energy = %v/%v, want 0.85/true", v, ok)
	}
	if v, ok := row.Feature("pred_valence"); !ok || v != 0.7 {
		t.Errorf("pred_valence = %v/%v, want 0.7/true", v, ok)
	}
}
