package db

import (
	"time"

	"github.com/google/uuid"
)

// Track is a stored track with its metadata.
type Track struct {
	ID        string
	Name      string
	Artist    string
	Album     *string // nullable
	CreatedAt time.Time
}

// TrackTag is one Last.fm tag attached to a track.
type TrackTag struct {
	TrackID   string
	TagName   string
	TagCount  int
	Source    string // "track" or "artist"
	FetchedAt time.Time
}

// PredictionBatch groups the predictions of one engine run, so results
// from different models or different days never mix.
type PredictionBatch struct {
	ID         uuid.UUID
	BundlePath string
	Attributes []string
	CreatedAt  time.Time
}

// Prediction is one predicted attribute value for a track within a
// batch.
type Prediction struct {
	BatchID   uuid.UUID
	TrackID   string
	Attribute string
	Value     float64
}
