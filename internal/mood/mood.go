// Package mood summarizes per-track feature values into playlist-level
// statistics, classifies the overall mood, and compares playlists.
package mood

import (
	"errors"
	"math"
)

// Source records whether a summary was computed from model predictions
// or ground-truth feature values. The two must never be silently mixed
// within one aggregation, so every summary carries its source.
type Source string

const (
	SourcePredicted Source = "predicted"
	SourceActual    Source = "actual"
)

// Quadrant labels for the 2x2 valence/energy partition.
const (
	MoodHappyEnergetic  = "Happy/Energetic"
	MoodPeacefulContent = "Peaceful/Content"
	MoodAngryIntense    = "Angry/Intense"
	MoodSadMelancholic  = "Sad/Melancholic"
)

// ErrNoTracks is returned when a summary is requested over zero rows.
var ErrNoTracks = errors.New("no tracks to summarize")

// Stats holds aggregate statistics for one attribute.
type Stats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summary is the aggregate mood profile of a track collection.
type Summary struct {
	Attributes []string         `json:"attributes"`
	Stats      map[string]Stats `json:"stats"`
	Source     Source           `json:"source"`
	Tracks     int              `json:"tracks"`
	// Quadrant is set when both valence and energy are among the
	// attributes; otherwise it is empty.
	Quadrant    string `json:"quadrant,omitempty"`
	Description string `json:"description,omitempty"`
}

// Mean returns the mean for an attribute, or 0 if absent.
func (s *Summary) Mean(attr string) float64 {
	return s.Stats[attr].Mean
}

// Quadrant classifies mean valence and energy into a 2x2 mood partition
// with threshold 0.5 on each axis. Boundary values fall into the high
// branch: Quadrant(0.5, 0.5) is Happy/Energetic.
func Quadrant(valence, energy float64) string {
	highValence := valence >= 0.5
	highEnergy := energy >= 0.5

	switch {
	case highValence && highEnergy:
		return MoodHappyEnergetic
	case highValence && !highEnergy:
		return MoodPeacefulContent
	case !highValence && highEnergy:
		return MoodAngryIntense
	default:
		return MoodSadMelancholic
	}
}

// Describe returns a short characterization of a mood quadrant.
func Describe(quadrant string) string {
	switch quadrant {
	case MoodHappyEnergetic:
		return "Upbeat, party vibes, feel-good music"
	case MoodPeacefulContent:
		return "Relaxed, chill, acoustic vibes"
	case MoodAngryIntense:
		return "Aggressive, powerful, intense energy"
	case MoodSadMelancholic:
		return "Reflective, emotional, introspective"
	default:
		return ""
	}
}

// Summarize computes per-attribute mean, standard deviation, min, and
// max over rows of feature values. Rows align positionally with attrs,
// one value per attribute. All rows must come from the same source.
func Summarize(attrs []string, rows [][]float64, source Source) (*Summary, error) {
	if len(rows) == 0 {
		return nil, ErrNoTracks
	}

	s := &Summary{
		Attributes: attrs,
		Stats:      make(map[string]Stats, len(attrs)),
		Source:     source,
		Tracks:     len(rows),
	}

	for a, attr := range attrs {
		col := make([]float64, len(rows))
		for i, row := range rows {
			col[i] = row[a]
		}
		s.Stats[attr] = columnStats(col)
	}

	if hasAttr(attrs, "valence") && hasAttr(attrs, "energy") {
		s.Quadrant = Quadrant(s.Mean("valence"), s.Mean("energy"))
		s.Description = Describe(s.Quadrant)
	}

	return s, nil
}

// columnStats computes Stats for one attribute column. Std is the sample
// standard deviation; a single-row column has Std 0.
func columnStats(col []float64) Stats {
	st := Stats{Min: col[0], Max: col[0]}

	var sum float64
	for _, v := range col {
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean = sum / float64(len(col))

	if len(col) > 1 {
		var ss float64
		for _, v := range col {
			d := v - st.Mean
			ss += d * d
		}
		st.Std = math.Sqrt(ss / float64(len(col)-1))
	}

	return st
}

func hasAttr(attrs []string, name string) bool {
	for _, a := range attrs {
		if a == name {
			return true
		}
	}
	return false
}
