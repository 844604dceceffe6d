package mood

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestQuadrant(t *testing.T) {
	tests := []struct {
		name    string
		valence float64
		energy  float64
		want    string
	}{
		{
			name:    "high valence high energy",
			valence: 0.8, energy: 0.9,
			want: MoodHappyEnergetic,
		},
		{
			name:    "high valence low energy",
			valence: 0.7, energy: 0.2,
			want: MoodPeacefulContent,
		},
		{
			name:    "low valence high energy",
			valence: 0.3, energy: 0.8,
			want: MoodAngryIntense,
		},
		{
			name:    "low valence low energy",
			valence: 0.2, energy: 0.1,
			want: MoodSadMelancholic,
		},
		{
			name:    "boundary exactly 0.5/0.5 falls high",
			valence: 0.5, energy: 0.5,
			want: MoodHappyEnergetic,
		},
		{
			name:    "boundary valence 0.5 low energy",
			valence: 0.5, energy: 0.49,
			want: MoodPeacefulContent,
		},
		{
			name:    "boundary energy 0.5 low valence",
			valence: 0.49, energy: 0.5,
			want: MoodAngryIntense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quadrant(tt.valence, tt.energy)
			if got != tt.want {
				t.Errorf("Quadrant(%v, %v) = %q, want %q", tt.valence, tt.energy, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	for _, q := range []string{MoodHappyEnergetic, MoodPeacefulContent, MoodAngryIntense, MoodSadMelancholic} {
		if Describe(q) == "" {
			t.Errorf("Describe(%q) is empty", q)
		}
	}
	if Describe("bogus") != "" {
		t.Error("Describe of unknown quadrant should be empty")
	}
}

func TestSummarize(t *testing.T) {
	attrs := []string{"valence", "energy"}
	rows := [][]float64{
		{0.8, 0.9},
		{0.6, 0.7},
		{1.0, 0.8},
	}

	s, err := Summarize(attrs, rows, SourcePredicted)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if s.Tracks != 3 {
		t.Errorf("Tracks = %d, want 3", s.Tracks)
	}
	if s.Source != SourcePredicted {
		t.Errorf("Source = %q, want %q", s.Source, SourcePredicted)
	}

	v := s.Stats["valence"]
	if math.Abs(v.Mean-0.8) > 1e-12 {
		t.Errorf("valence mean = %v, want 0.8", v.Mean)
	}
	if v.Min != 0.6 || v.Max != 1.0 {
		t.Errorf("valence min/max = %v/%v, want 0.6/1.0", v.Min, v.Max)
	}
	// Sample standard deviation of {0.8, 0.6, 1.0} is 0.2.
	if math.Abs(v.Std-0.2) > 1e-12 {
		t.Errorf("valence std = %v, want 0.2", v.Std)
	}

	if s.Quadrant != MoodHappyEnergetic {
		t.Errorf("Quadrant = %q, want %q", s.Quadrant, MoodHappyEnergetic)
	}
}

func TestSummarize_NoRows(t *testing.T) {
	_, err := Summarize([]string{"energy"}, nil, SourceActual)
	if !errors.Is(err, ErrNoTracks) {
		t.Errorf("error = %v, want ErrNoTracks", err)
	}
}

func TestSummarize_SingleRow(t *testing.T) {
	s, err := Summarize([]string{"energy"}, [][]float64{{0.4}}, SourceActual)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	st := s.Stats["energy"]
	if st.Std != 0 {
		t.Errorf("single-row std = %v, want 0", st.Std)
	}
	if st.Mean != 0.4 || st.Min != 0.4 || st.Max != 0.4 {
		t.Errorf("stats = %+v, want all 0.4", st)
	}
	// No valence column, so no quadrant.
	if s.Quadrant != "" {
		t.Errorf("Quadrant = %q, want empty without valence", s.Quadrant)
	}
}

func summaryWithMeans(t *testing.T, valence, energy float64, source Source) *Summary {
	t.Helper()
	s, err := Summarize([]string{"valence", "energy"}, [][]float64{{valence, energy}}, source)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	return s
}

func TestCompare_FlagsLargeDifference(t *testing.T) {
	a := summaryWithMeans(t, 0.8, 0.5, SourcePredicted)
	b := summaryWithMeans(t, 0.3, 0.5, SourcePredicted)

	c := Compare(a, b, "Playlist 1", "Playlist 2")

	if diff := c.Differences["valence"]; math.Abs(diff-0.5) > 1e-12 {
		t.Errorf("valence difference = %v, want 0.5", diff)
	}

	var found bool
	for _, interp := range c.Interpretations {
		if strings.Contains(interp, "Playlist 1 is more positive/happy than Playlist 2") {
			found = true
		}
	}
	if !found {
		t.Errorf("no interpretation flags playlist 1 as more positive: %v", c.Interpretations)
	}
}

func TestCompare_SimilarBelowThreshold(t *testing.T) {
	a := summaryWithMeans(t, 0.55, 0.52, SourceActual)
	b := summaryWithMeans(t, 0.50, 0.48, SourceActual)

	c := Compare(a, b, "A", "B")

	if len(c.Interpretations) != 1 {
		t.Fatalf("got %d interpretations, want exactly 1 similarity statement: %v", len(c.Interpretations), c.Interpretations)
	}
	if !strings.Contains(c.Interpretations[0], "similar") {
		t.Errorf("interpretation = %q, want a similarity statement", c.Interpretations[0])
	}
}

func TestCompare_RecordsSourcesAndQuadrants(t *testing.T) {
	a := summaryWithMeans(t, 0.8, 0.9, SourcePredicted)
	b := summaryWithMeans(t, 0.2, 0.3, SourceActual)

	c := Compare(a, b, "Hype", "Wind-down")

	if c.A.Source != SourcePredicted || c.B.Source != SourceActual {
		t.Errorf("sources = %q/%q, want predicted/actual", c.A.Source, c.B.Source)
	}
	if c.A.Quadrant != MoodHappyEnergetic {
		t.Errorf("A quadrant = %q, want %q", c.A.Quadrant, MoodHappyEnergetic)
	}
	if c.B.Quadrant != MoodSadMelancholic {
		t.Errorf("B quadrant = %q, want %q", c.B.Quadrant, MoodSadMelancholic)
	}
}

func TestFormatComparison(t *testing.T) {
	a := summaryWithMeans(t, 0.8, 0.9, SourcePredicted)
	b := summaryWithMeans(t, 0.2, 0.3, SourcePredicted)

	out := FormatComparison(Compare(a, b, "Party", "Sleep"))

	for _, want := range []string{"Party", "Sleep", "Findings:", MoodHappyEnergetic, MoodSadMelancholic} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatComparison output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	s := summaryWithMeans(t, 0.8, 0.9, SourcePredicted)
	out := FormatSummary("My Playlist", s)

	for _, want := range []string{"My Playlist", "Overall mood", MoodHappyEnergetic, "valence", "energy"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatSummary output missing %q:\n%s", want, out)
		}
	}
}

func TestGroupByMood(t *testing.T) {
	attrs := []string{"valence", "energy"}

	// Two well-separated blobs.
	var points []TrackPoint
	for i := 0; i < 5; i++ {
		points = append(points, TrackPoint{ID: "happy", Values: []float64{0.9, 0.85}})
		points = append(points, TrackPoint{ID: "sad", Values: []float64{0.1, 0.15}})
	}

	groups, err := GroupByMood(attrs, points, 2)
	if err != nil {
		t.Fatalf("GroupByMood() error = %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	labels := map[string]bool{}
	total := 0
	for _, g := range groups {
		labels[g.Label] = true
		total += len(g.Tracks)
	}
	if total != len(points) {
		t.Errorf("groups cover %d tracks, want %d", total, len(points))
	}
	if !labels[MoodHappyEnergetic] || !labels[MoodSadMelancholic] {
		t.Errorf("labels = %v, want both %q and %q", labels, MoodHappyEnergetic, MoodSadMelancholic)
	}
}

func TestGroupByMood_TooFewTracks(t *testing.T) {
	_, err := GroupByMood([]string{"energy"}, []TrackPoint{{Values: []float64{0.5}}}, 3)
	if err == nil {
		t.Error("expected an error for fewer tracks than groups")
	}
}
