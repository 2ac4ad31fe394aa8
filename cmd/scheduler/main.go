package main

import (
	"context"
	"log"
	"time"

	"github.com/drewmudry/vibecast-api/internal/config"
	"github.com/drewmudry/vibecast-api/internal/platform"
	"github.com/drewmudry/vibecast-api/runs"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := platform.NewDBConnection(cfg.Runs)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if db == nil {
		log.Fatal("DATABASE_URL is required to prune stored runs")
	}

	store := runs.NewStore(db, nil, 0)
	if err := store.Migrate(); err != nil {
		log.Fatalf("Failed to migrate runs table: %v", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Runs.PruneSchedule, func() {
		pruneRuns(context.Background(), store, cfg.Runs.Retention)
	}); err != nil {
		log.Fatalf("Invalid RUN_PRUNE_SCHEDULE %q: %v", cfg.Runs.PruneSchedule, err)
	}
	c.Start()
	defer c.Stop()

	log.Printf("Scheduler started, pruning runs older than %s on %q", cfg.Runs.Retention, cfg.Runs.PruneSchedule)
	// Keep the main thread alive
	select {}
}

// pruneRuns deletes runs older than retention. Only the database is pruned;
// cache entries expire on their own TTL.
func pruneRuns(ctx context.Context, store *runs.Store, retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	deleted, err := store.Prune(ctx, cutoff)
	if err != nil {
		log.Printf("Error pruning runs: %v", err)
		return
	}
	log.Printf("Pruned %d runs created before %s", deleted, cutoff.Format(time.RFC3339))
}
