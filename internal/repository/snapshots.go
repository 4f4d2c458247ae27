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

// SnapshotRepository handles persisted ranking computations
type SnapshotRepository struct {
	db *Database
}

// CreateSnapshot inserts a ranking snapshot
func (r *SnapshotRepository) CreateSnapshot(ctx context.Context, snap *models.RankingSnapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if snap.Category == "" {
		return fmt.Errorf("snapshot category is required")
	}
	if len(snap.Payload) == 0 {
		return fmt.Errorf("snapshot payload is required")
	}

	query := `
		INSERT INTO ranking_snapshots (
			category, scope, computed_at,
			real_matches, simulated_matches, payload,
			created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			NOW()
		)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		snap.Category, snap.Scope, snap.ComputedAt,
		snap.RealMatches, snap.SimulatedMatches, snap.Payload,
	).Scan(&snap.ID, &snap.CreatedAt)

	if err != nil {
		metrics.RecordDBQuery("insert", "ranking_snapshots", "error")
		log.Error().Err(err).Str("category", snap.Category).Msg("Failed to insert ranking snapshot")
		return fmt.Errorf("failed to create ranking snapshot: %w", err)
	}

	metrics.RecordDBQuery("insert", "ranking_snapshots", "success")
	log.Info().Int64("id", snap.ID).Str("category", snap.Category).Msg("Ranking snapshot stored")
	return nil
}

// GetLatestSnapshot retrieves the most recent snapshot for a category
func (r *SnapshotRepository) GetLatestSnapshot(ctx context.Context, category string) (*models.RankingSnapshot, error) {
	query := `
		SELECT id, category, scope, computed_at,
			   real_matches, simulated_matches, payload,
			   created_at
		FROM ranking_snapshots
		WHERE category = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`

	snap := &models.RankingSnapshot{}
	err := r.db.Pool.QueryRow(ctx, query, category).Scan(
		&snap.ID, &snap.Category, &snap.Scope, &snap.ComputedAt,
		&snap.RealMatches, &snap.SimulatedMatches, &snap.Payload,
		&snap.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBQuery("select", "ranking_snapshots", "error")
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	metrics.RecordDBQuery("select", "ranking_snapshots", "success")
	return snap, nil
}

// ListSnapshots returns the most recent snapshots for a category, newest first
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, category string, limit int) ([]models.RankingSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, category, scope, computed_at,
			   real_matches, simulated_matches, payload,
			   created_at
		FROM ranking_snapshots
		WHERE category = $1
		ORDER BY computed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, category, limit)
	if err != nil {
		metrics.RecordDBQuery("select", "ranking_snapshots", "error")
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.RankingSnapshot
	for rows.Next() {
		var snap models.RankingSnapshot
		if err := rows.Scan(
			&snap.ID, &snap.Category, &snap.Scope, &snap.ComputedAt,
			&snap.RealMatches, &snap.SimulatedMatches, &snap.Payload,
			&snap.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows iteration failed: %w", err)
	}

	metrics.RecordDBQuery("select", "ranking_snapshots", "success")
	return snaps, nil
}

// PruneSnapshots deletes snapshots older than the newest keep entries per category
func (r *SnapshotRepository) PruneSnapshots(ctx context.Context, category string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive")
	}

	query := `
		DELETE FROM ranking_snapshots
		WHERE category = $1
		  AND id NOT IN (
			SELECT id FROM ranking_snapshots
			WHERE category = $1
			ORDER BY computed_at DESC
			LIMIT $2
		  )
	`

	result, err := r.db.Pool.Exec(ctx, query, category, keep)
	if err != nil {
		metrics.RecordDBQuery("delete", "ranking_snapshots", "error")
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	metrics.RecordDBQuery("delete", "ranking_snapshots", "success")
	if result.RowsAffected() > 0 {
		log.Info().Int64("rows_affected", result.RowsAffected()).Str("category", category).Msg("Pruned old ranking snapshots")
	}
	return result.RowsAffected(), nil
}
