package mood

import "fmt"

// SimilarityThreshold is the absolute per-attribute mean difference
// below which two playlists are considered similar.
const SimilarityThreshold = 0.1

// Side is one playlist's half of a comparison.
type Side struct {
	Name     string             `json:"name"`
	Tracks   int                `json:"tracks"`
	Source   Source             `json:"source"`
	Means    map[string]float64 `json:"means"`
	Quadrant string             `json:"quadrant,omitempty"`
}

// Comparison is the structured result of comparing two playlists.
type Comparison struct {
	A Side `json:"playlist1"`
	B Side `json:"playlist2"`
	// Differences holds A minus B per attribute.
	Differences map[string]float64 `json:"differences"`
	// Interpretations are human-readable findings: one string per
	// attribute whose difference exceeds the threshold, or a single
	// "similar" statement when none do.
	Interpretations []string `json:"interpretations"`
}

// Compare contrasts two summaries attribute by attribute. Attributes are
// taken from summary a; both summaries are expected to cover the same
// attribute set, which holds whenever they come from the same model or
// the same source columns.
func Compare(a, b *Summary, nameA, nameB string) *Comparison {
	c := &Comparison{
		A:           side(a, nameA),
		B:           side(b, nameB),
		Differences: make(map[string]float64, len(a.Attributes)),
	}

	for _, attr := range a.Attributes {
		diff := a.Mean(attr) - b.Mean(attr)
		c.Differences[attr] = diff

		if interp := interpret(attr, diff, nameA, nameB); interp != "" {
			c.Interpretations = append(c.Interpretations, interp)
		}
	}

	if len(c.Interpretations) == 0 {
		c.Interpretations = []string{
			fmt.Sprintf("%s and %s have similar emotional features", nameA, nameB),
		}
	}

	return c
}

func side(s *Summary, name string) Side {
	means := make(map[string]float64, len(s.Attributes))
	for _, attr := range s.Attributes {
		means[attr] = s.Mean(attr)
	}
	return Side{
		Name:     name,
		Tracks:   s.Tracks,
		Source:   s.Source,
		Means:    means,
		Quadrant: s.Quadrant,
	}
}

// interpret phrases a single attribute difference, or returns "" when the
// difference is below the similarity threshold. Valence and energy get
// mood-specific wording; other attributes a generic one.
func interpret(attr string, diff float64, nameA, nameB string) string {
	if abs(diff) <= SimilarityThreshold {
		return ""
	}

	switch attr {
	case "valence":
		if diff > 0 {
			return fmt.Sprintf("%s is more positive/happy than %s (valence +%.2f)", nameA, nameB, diff)
		}
		return fmt.Sprintf("%s is more negative/melancholic than %s (valence %.2f)", nameA, nameB, diff)
	case "energy":
		if diff > 0 {
			return fmt.Sprintf("%s is more energetic than %s (energy +%.2f)", nameA, nameB, diff)
		}
		return fmt.Sprintf("%s is calmer/more soothing than %s (energy %.2f)", nameA, nameB, diff)
	default:
		if diff > 0 {
			return fmt.Sprintf("%s has higher %s than %s (+%.2f)", nameA, attr, nameB, diff)
		}
		return fmt.Sprintf("%s has lower %s than %s (%.2f)", nameA, attr, nameB, diff)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
