// Command manualfetch runs one ranking or prediction computation from
// the command line and prints the result as JSON. Useful for debugging
// source data and for priming snapshots outside the scheduler.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/cache"
	"github.com/humatwin/BCR/internal/client"
	"github.com/humatwin/BCR/internal/config"
	"github.com/humatwin/BCR/internal/engine"
	"github.com/humatwin/BCR/internal/models"
	"github.com/humatwin/BCR/internal/repository"
)

func main() {
	category := flag.String("category", "MS", "category code (MS or WS)")
	tournament := flag.String("tournament", "", "predict matchups for this tournament id")
	player := flag.String("player", "", "predict matchups for this player id")
	resolve := flag.String("resolve", "", "resolve a free-form player name")
	persist := flag.Bool("persist", false, "store the result in the database")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	srcClient := client.NewClient(cfg.SourceBaseURL, cfg.SourceAPIKey, cfg.SourceTimeout)

	// One-shot runs use an in-process cache; there is nothing to share.
	store := cache.NewMemory(cfg.CacheTTL)
	defer store.Close()

	eng := engine.New(srcClient, store, engine.Options{
		FetchConcurrency: cfg.FetchConcurrency,
		UpcomingLimit:    cfg.UpcomingLimit,
	})

	var db *repository.Database
	if *persist {
		if !cfg.DatabaseEnabled {
			log.Fatal().Msg("-persist requires DATABASE_ENABLED")
		}
		var err error
		db, err = repository.NewDatabase(ctx, repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     strconv.Itoa(cfg.DatabasePort),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
	}

	switch {
	case *resolve != "":
		rows, err := eng.ResolveIdentity(ctx, *resolve)
		if err != nil {
			log.Fatal().Err(err).Str("name", *resolve).Msg("Identity resolution failed")
		}
		printJSON(rows)

	case *tournament != "":
		set, err := eng.PredictTournament(ctx, *tournament, *category)
		if err != nil {
			log.Fatal().Err(err).Str("tournament_id", *tournament).Msg("Tournament prediction failed")
		}
		printJSON(set)
		if db != nil {
			persistPredictions(ctx, db, set)
		}

	case *player != "":
		set, err := eng.PredictPlayer(ctx, *player, *category)
		if err != nil {
			log.Fatal().Err(err).Str("player_id", *player).Msg("Player prediction failed")
		}
		printJSON(set)
		if db != nil {
			persistPredictions(ctx, db, set)
		}

	default:
		result, err := eng.ComputeRanking(ctx, *category)
		if err != nil {
			log.Fatal().Err(err).Str("category", *category).Msg("Ranking computation failed")
		}
		printJSON(result)
		if db != nil {
			persistRanking(ctx, db, result)
		}
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

func persistRanking(ctx context.Context, db *repository.Database, result *models.EloRanking) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal ranking payload")
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
	if err := db.Snapshots.CreateSnapshot(ctx, snap); err != nil {
		log.Fatal().Err(err).Msg("Failed to store ranking snapshot")
	}
	log.Info().Int64("id", snap.ID).Msg("Ranking snapshot stored")
}

func persistPredictions(ctx context.Context, db *repository.Database, set *models.PredictionSet) {
	payload, err := json.Marshal(set)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal prediction payload")
	}
	snap := &models.PredictionSnapshot{
		Target:     set.Target,
		Category:   string(set.Category),
		ComputedAt: set.LastUpdated,
		Matchups:   set.TotalCount,
		Payload:    payload,
	}
	if err := db.Predictions.CreatePrediction(ctx, snap); err != nil {
		log.Fatal().Err(err).Msg("Failed to store prediction set")
	}
	log.Info().Int64("id", snap.ID).Msg("Prediction set stored")
}
