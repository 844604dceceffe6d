package mood

import (
	"fmt"
	"sort"
	"strings"
)

// FormatSummary returns a human-readable rendering of a playlist
// summary: overall mood first, then per-attribute statistics in
// attribute order.
func FormatSummary(title string, s *Summary) string {
	var sb strings.Builder

	sb.WriteString(title + "\n")

	if s.Quadrant != "" {
		sb.WriteString(fmt.Sprintf("Overall mood: %s\n", s.Quadrant))
		if s.Description != "" {
			sb.WriteString("  " + s.Description + "\n")
		}
		sb.WriteString(fmt.Sprintf("  Valence: %.3f | Energy: %.3f\n", s.Mean("valence"), s.Mean("energy")))
	}

	trackWord := "track"
	if s.Tracks != 1 {
		trackWord = "tracks"
	}
	sb.WriteString(fmt.Sprintf("%d %s (%s values)\n", s.Tracks, trackWord, s.Source))

	for _, attr := range s.Attributes {
		st := s.Stats[attr]
		sb.WriteString(fmt.Sprintf("  %-16s mean %.3f (±%.3f), range %.3f - %.3f\n",
			attr, st.Mean, st.Std, st.Min, st.Max))
	}

	return sb.String()
}

// FormatComparison renders a playlist comparison: both sides, the
// findings, and each side's mood quadrant.
func FormatComparison(c *Comparison) string {
	var sb strings.Builder

	sb.WriteString("Playlist comparison\n")
	writeSide(&sb, c.A)
	writeSide(&sb, c.B)

	sb.WriteString("Findings:\n")
	for _, interp := range c.Interpretations {
		sb.WriteString("  - " + interp + "\n")
	}

	if c.A.Quadrant != "" && c.B.Quadrant != "" {
		sb.WriteString(fmt.Sprintf("Quadrants: %s: %s | %s: %s\n",
			c.A.Name, c.A.Quadrant, c.B.Name, c.B.Quadrant))
	}

	return sb.String()
}

func writeSide(sb *strings.Builder, s Side) {
	trackWord := "track"
	if s.Tracks != 1 {
		trackWord = "tracks"
	}
	sb.WriteString(fmt.Sprintf("%s (%d %s, %s values)\n", s.Name, s.Tracks, trackWord, s.Source))

	for _, attr := range sortedKeys(s.Means) {
		sb.WriteString(fmt.Sprintf("  %-16s %.3f\n", attr, s.Means[attr]))
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
