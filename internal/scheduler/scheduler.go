package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/config"
	"github.com/humatwin/BCR/internal/engine"
	"github.com/humatwin/BCR/internal/metrics"
	"github.com/humatwin/BCR/internal/models"
	"github.com/humatwin/BCR/internal/repository"
)

// rankedCategories are the categories precomputed by background jobs.
// Elo is singles-only, so doubles categories never appear here.
var rankedCategories = []models.Category{models.MensSingles, models.WomensSingles}

// Scheduler manages background ranking maintenance:
// - Nightly full recompute of every ranked category
// - Periodic cache warming so a TTL expiry never lands on a request
type Scheduler struct {
	cfg      *config.Config
	engine   *engine.Engine
	db       *repository.Database
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance. db may be nil when
// snapshot persistence is disabled.
func NewScheduler(cfg *config.Config, eng *engine.Engine, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		engine:   eng,
		db:       db,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Setup nightly refresh cron job
	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly ranking refresh...")
		if err := s.refreshRankings(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly ranking refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	// Start cron scheduler
	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly ranking refresh scheduled")

	// Start cache warming ticker
	s.ticker = time.NewTicker(s.cfg.RefreshInterval)
	log.Info().
		Dur("interval", s.cfg.RefreshInterval).
		Msg("Cache warming started")

	go s.warmLoop(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// warmLoop keeps cached rankings warm between nightly refreshes.
func (s *Scheduler) warmLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping cache warming")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping cache warming")
			return
		case <-s.ticker.C:
			if err := s.WarmRankings(ctx); err != nil {
				log.Error().Err(err).Msg("Cache warming pass failed")
			}
		}
	}
}

// WarmRankings computes any ranking whose cached copy has expired.
// Categories with a live cached copy are served from it and cost
// nothing.
func (s *Scheduler) WarmRankings(ctx context.Context) error {
	start := time.Now()
	for _, cat := range rankedCategories {
		if _, err := s.engine.ComputeRanking(ctx, string(cat)); err != nil {
			return fmt.Errorf("failed to warm %s ranking: %w", cat, err)
		}
	}
	log.Debug().
		Dur("duration", time.Since(start)).
		Msg("Cache warming pass complete")
	return nil
}

// refreshRankings recomputes every ranked category from source,
// bypassing the cache, and persists a snapshot when a database is
// configured. A failed category does not stop the remaining ones.
func (s *Scheduler) refreshRankings(ctx context.Context) error {
	start := time.Now()
	var firstErr error

	for _, cat := range rankedCategories {
		result, err := s.engine.RefreshRanking(ctx, cat)
		if err != nil {
			metrics.RecordError("scheduler", "refresh")
			log.Error().Err(err).Str("category", string(cat)).Msg("Failed to refresh ranking")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Info().
			Str("category", string(cat)).
			Int("players", result.TotalCount).
			Msg("Ranking refreshed")

		if s.db == nil {
			continue
		}
		if err := s.persistSnapshot(ctx, result); err != nil {
			log.Error().Err(err).Str("category", string(cat)).Msg("Failed to persist ranking snapshot")
		}
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Msg("Nightly ranking refresh complete")
	return firstErr
}

// snapshotsKept bounds per-category snapshot history.
const snapshotsKept = 60

func (s *Scheduler) persistSnapshot(ctx context.Context, result *models.EloRanking) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking payload: %w", err)
	}

	snap := &models.RankingSnapshot{
		Category:   string(result.Category),
		Scope:      result.Scope,
		ComputedAt: result.LastUpdated,
		Payload:    payload,
	}
	if result.Diagnostics != nil {
		snap.RealMatches = result.Diagnostics.SeenMatches
		snap.SimulatedMatches = result.Diagnostics.SimulatedMatches
	}

	if err := s.db.Snapshots.CreateSnapshot(ctx, snap); err != nil {
		return err
	}
	if _, err := s.db.Snapshots.PruneSnapshots(ctx, snap.Category, snapshotsKept); err != nil {
		log.Warn().Err(err).Str("category", snap.Category).Msg("Snapshot pruning failed")
	}
	return nil
}
