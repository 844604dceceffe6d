package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Column name variants seen across exported catalogs, mapped to the
// canonical names Row uses.
var metaColumns = map[string]string{
	"id":          "id",
	"track_id":    "id",
	"name":        "name",
	"track_name":  "name",
	"track":       "name",
	"artist":      "artist",
	"artist_name": "artist",
	"artists":     "artist",
	"album":       "album",
	"album_name":  "album",
}

// ReadCSV parses a tabular source with a header row. Header names are
// lowercased and trimmed; known metadata columns map onto Row fields,
// the tags column onto Row.Tags, and every other column is treated as a
// numeric feature column (empty or non-numeric cells leave the feature
// unset for that row).
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, dataErrorf("CSV input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = normalizeColumn(h)
	}

	table := &Table{Columns: canonicalColumns(columns)}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		row := Row{Features: make(map[string]float64)}
		for i, cell := range record {
			if i >= len(columns) {
				break
			}
			cell = strings.TrimSpace(cell)
			col := columns[i]

			if canonical, ok := metaColumns[col]; ok {
				switch canonical {
				case "id":
					row.ID = cell
				case "name":
					row.Name = cell
				case "artist":
					row.Artist = cell
				case "album":
					row.Album = cell
				}
				continue
			}
			if col == "tags" {
				row.Tags = cell
				continue
			}
			if cell == "" {
				continue
			}
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				row.Features[col] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// WriteCSV writes the table back out, appending one "pred_<attr>" column
// per predicted attribute, in the given attribute order. Ground-truth
// feature columns not named in attrs are preserved.
func WriteCSV(w io.Writer, t *Table, attrs []string) error {
	writer := csv.NewWriter(w)

	featureCols := collectFeatureColumns(t)
	header := []string{"id", "artist", "name", "album", "tags"}
	header = append(header, featureCols...)
	for _, attr := range attrs {
		header = append(header, "pred_"+attr)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i := range t.Rows {
		row := &t.Rows[i]
		record := []string{row.ID, row.Artist, row.Name, row.Album, row.Tags}
		for _, col := range featureCols {
			if v, ok := row.Features[col]; ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		for _, attr := range attrs {
			if v, ok := row.Predicted[attr]; ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// normalizeColumn canonicalizes a header cell.
func normalizeColumn(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// canonicalColumns maps raw header names to their canonical forms so
// HasColumn checks work regardless of the source's naming.
func canonicalColumns(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		if canonical, ok := metaColumns[c]; ok {
			out[i] = canonical
		} else {
			out[i] = c
		}
	}
	return out
}

// collectFeatureColumns returns the sorted union of ground-truth feature
// names present in the table.
func collectFeatureColumns(t *Table) []string {
	seen := make(map[string]bool)
	for i := range t.Rows {
		for col := range t.Rows[i].Features {
			seen[col] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
