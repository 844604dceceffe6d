package mood

import (
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// TrackPoint is one track positioned in attribute space, with Values
// aligned positionally to the attribute list the grouping runs on.
type TrackPoint struct {
	ID     string
	Name   string
	Artist string
	Values []float64
}

// Group is a cluster of tracks with a similar feature profile.
type Group struct {
	// Label is the mood quadrant of the cluster centroid when valence
	// and energy are among the attributes, otherwise "Cluster N".
	Label    string
	Centroid map[string]float64
	Tracks   []TrackPoint
}

// pointObservation adapts a TrackPoint to the clusters.Observation
// interface.
type pointObservation struct {
	point  *TrackPoint
	coords clusters.Coordinates
}

func (o pointObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o pointObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// GroupByMood partitions tracks into numGroups clusters by k-means over
// their attribute values, labeling each cluster by its centroid's mood
// quadrant. Useful for splitting one playlist into coherent mood
// sub-lists.
//
// Fewer tracks than groups is an error: the caller should either lower
// numGroups or skip grouping.
func GroupByMood(attrs []string, points []TrackPoint, numGroups int) ([]Group, error) {
	if numGroups <= 0 {
		return nil, fmt.Errorf("invalid group count %d", numGroups)
	}
	if len(points) < numGroups {
		return nil, fmt.Errorf("%d tracks cannot form %d groups", len(points), numGroups)
	}

	var obs clusters.Observations
	for i := range points {
		coords := make(clusters.Coordinates, len(points[i].Values))
		copy(coords, points[i].Values)
		obs = append(obs, pointObservation{point: &points[i], coords: coords})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, numGroups)
	if err != nil {
		return nil, fmt.Errorf("partitioning tracks: %w", err)
	}

	groups := make([]Group, 0, len(result))
	for i, cluster := range result {
		g := Group{Centroid: make(map[string]float64, len(attrs))}
		for a, attr := range attrs {
			if a < len(cluster.Center) {
				g.Centroid[attr] = cluster.Center[a]
			}
		}

		if hasAttr(attrs, "valence") && hasAttr(attrs, "energy") {
			g.Label = Quadrant(g.Centroid["valence"], g.Centroid["energy"])
		} else {
			g.Label = fmt.Sprintf("Cluster %d", i+1)
		}

		for _, o := range cluster.Observations {
			if po, ok := o.(pointObservation); ok {
				g.Tracks = append(g.Tracks, *po.point)
			}
		}
		groups = append(groups, g)
	}

	return groups, nil
}
