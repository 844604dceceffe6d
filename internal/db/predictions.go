package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
)

// PredictionRepository stores prediction batches: one batch per engine
// run, with per-track per-attribute values.
type PredictionRepository struct {
	pool *pgxpool.Pool
}

// CreateBatch records a new prediction batch and returns its ID.
func (r *PredictionRepository) CreateBatch(ctx context.Context, bundlePath string, attributes []string) (uuid.UUID, error) {
	id := uuid.New()

	query := `
		INSERT INTO prediction_batches (id, bundle_path, attributes, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := r.pool.Exec(ctx, query, id, bundlePath, attributes); err != nil {
		return uuid.Nil, fmt.Errorf("creating prediction batch: %w", err)
	}
	return id, nil
}

// StoreTable persists the predicted values of a table under a batch ID.
// Rows without an ID or without predictions are skipped.
func (r *PredictionRepository) StoreTable(ctx context.Context, batchID uuid.UUID, t *dataset.Table, attributes []string) error {
	var preds []Prediction
	for _, row := range t.Rows {
		if row.ID == "" || len(row.Predicted) == 0 {
			continue
		}
		for _, attr := range attributes {
			v, ok := row.Predicted[attr]
			if !ok {
				continue
			}
			preds = append(preds, Prediction{
				BatchID:   batchID,
				TrackID:   row.ID,
				Attribute: attr,
				Value:     v,
			})
		}
	}
	return r.insertBatch(ctx, preds)
}

func (r *PredictionRepository) insertBatch(ctx context.Context, preds []Prediction) error {
	if len(preds) == 0 {
		return nil
	}

	query := `
		INSERT INTO predictions (batch_id, track_id, attribute, value)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::text[], $4::float8[])
		ON CONFLICT (batch_id, track_id, attribute) DO UPDATE SET
			value = EXCLUDED.value
	`

	batchIDs := make([]uuid.UUID, len(preds))
	trackIDs := make([]string, len(preds))
	attrs := make([]string, len(preds))
	values := make([]float64, len(preds))

	for i, p := range preds {
		batchIDs[i] = p.BatchID
		trackIDs[i] = p.TrackID
		attrs[i] = p.Attribute
		values[i] = p.Value
	}

	_, err := r.pool.Exec(ctx, query, batchIDs, trackIDs, attrs, values)
	if err != nil {
		return fmt.Errorf("batch inserting predictions: %w", err)
	}
	return nil
}

// GetBatch retrieves a batch's metadata.
func (r *PredictionRepository) GetBatch(ctx context.Context, id uuid.UUID) (*PredictionBatch, error) {
	query := `
		SELECT id, bundle_path, attributes, created_at
		FROM prediction_batches
		WHERE id = $1
	`
	var batch PredictionBatch
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&batch.ID,
		&batch.BundlePath,
		&batch.Attributes,
		&batch.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying prediction batch: %w", err)
	}
	return &batch, nil
}

// LatestBatch retrieves the most recently created batch.
func (r *PredictionRepository) LatestBatch(ctx context.Context) (*PredictionBatch, error) {
	query := `
		SELECT id, bundle_path, attributes, created_at
		FROM prediction_batches
		ORDER BY created_at DESC
		LIMIT 1
	`
	var batch PredictionBatch
	err := r.pool.QueryRow(ctx, query).Scan(
		&batch.ID,
		&batch.BundlePath,
		&batch.Attributes,
		&batch.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest batch: %w", err)
	}
	return &batch, nil
}

// Values retrieves a batch's predictions keyed by track ID, each an
// attribute-to-value map in the form dataset rows carry.
func (r *PredictionRepository) Values(ctx context.Context, batchID uuid.UUID) (map[string]map[string]float64, error) {
	query := `
		SELECT track_id, attribute, value
		FROM predictions
		WHERE batch_id = $1
	`
	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	defer rows.Close()

	result := make(map[string]map[string]float64)
	for rows.Next() {
		var p Prediction
		if err := rows.Scan(&p.TrackID, &p.Attribute, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		if result[p.TrackID] == nil {
			result[p.TrackID] = make(map[string]float64)
		}
		result[p.TrackID][p.Attribute] = p.Value
	}
	return result, rows.Err()
}

// PruneBefore deletes batches created before the cutoff, predictions
// included.
func (r *PredictionRepository) PruneBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM predictions WHERE batch_id IN
			(SELECT id FROM prediction_batches WHERE created_at < $1)`, cutoff)
	if err != nil {
		return fmt.Errorf("pruning predictions: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`DELETE FROM prediction_batches WHERE created_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("pruning prediction batches: %w", err)
	}
	return nil
}
