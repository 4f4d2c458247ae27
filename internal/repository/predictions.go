package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/metrics"
	"github.com/humatwin/BCR/internal/models"
)

// PredictionRepository handles persisted prediction sets
type PredictionRepository struct {
	db *Database
}

// CreatePrediction inserts a prediction snapshot
func (r *PredictionRepository) CreatePrediction(ctx context.Context, snap *models.PredictionSnapshot) error {
	if snap == nil {
		return fmt.Errorf("prediction snapshot cannot be nil")
	}
	if snap.Target == "" {
		return fmt.Errorf("prediction target is required")
	}
	if len(snap.Payload) == 0 {
		return fmt.Errorf("prediction payload is required")
	}

	query := `
		INSERT INTO prediction_sets (
			target, category, computed_at,
			matchups, payload, created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, NOW()
		)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		snap.Target, snap.Category, snap.ComputedAt,
		snap.Matchups, snap.Payload,
	).Scan(&snap.ID, &snap.CreatedAt)

	if err != nil {
		metrics.RecordDBQuery("insert", "prediction_sets", "error")
		log.Error().Err(err).Str("target", snap.Target).Msg("Failed to insert prediction set")
		return fmt.Errorf("failed to create prediction set: %w", err)
	}

	metrics.RecordDBQuery("insert", "prediction_sets", "success")
	log.Info().Int64("id", snap.ID).Str("target", snap.Target).Msg("Prediction set stored")
	return nil
}

// GetLatestPrediction retrieves the most recent prediction set for a target
func (r *PredictionRepository) GetLatestPrediction(ctx context.Context, target, category string) (*models.PredictionSnapshot, error) {
	query := `
		SELECT id, target, category, computed_at,
			   matchups, payload, created_at
		FROM prediction_sets
		WHERE target = $1 AND category = $2
		ORDER BY computed_at DESC
		LIMIT 1
	`

	snap := &models.PredictionSnapshot{}
	err := r.db.Pool.QueryRow(ctx, query, target, category).Scan(
		&snap.ID, &snap.Target, &snap.Category, &snap.ComputedAt,
		&snap.Matchups, &snap.Payload, &snap.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBQuery("select", "prediction_sets", "error")
		return nil, fmt.Errorf("failed to get latest prediction set: %w", err)
	}

	metrics.RecordDBQuery("select", "prediction_sets", "success")
	return snap, nil
}

// DeletePredictionsByTarget removes all stored sets for a target (for recomputation)
func (r *PredictionRepository) DeletePredictionsByTarget(ctx context.Context, target string) error {
	query := `DELETE FROM prediction_sets WHERE target = $1`

	result, err := r.db.Pool.Exec(ctx, query, target)
	if err != nil {
		metrics.RecordDBQuery("delete", "prediction_sets", "error")
		return fmt.Errorf("failed to delete prediction sets: %w", err)
	}

	metrics.RecordDBQuery("delete", "prediction_sets", "success")
	log.Warn().Int64("rows_affected", result.RowsAffected()).Str("target", target).Msg("Prediction sets deleted")
	return nil
}
