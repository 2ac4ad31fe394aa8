package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/drewmudry/vibecast-api/models"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no completed run exists for a run id.
var ErrNotFound = errors.New("run not found")

const cacheKeyPrefix = "vibecast:run:"

// Store keeps completed runs. Both backends are optional: Postgres holds the
// history and Redis caches recent lookups. With neither, nothing is kept.
type Store struct {
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewStore(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *Store {
	return &Store{DB: db, Redis: rdb, CacheTTL: cacheTTL}
}

// Enabled reports whether any backend is configured.
func (s *Store) Enabled() bool {
	return s != nil && (s.DB != nil || s.Redis != nil)
}

// Migrate creates or updates the runs table.
func (s *Store) Migrate() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.AutoMigrate(&models.Run{})
}

// Lookup returns the completed run for runID, checking the cache first.
func (s *Store) Lookup(ctx context.Context, runID string) (*models.Run, error) {
	if !s.Enabled() {
		return nil, ErrNotFound
	}

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, cacheKey(runID)).Result()
		switch {
		case err == nil:
			var run models.Run
			if err := json.Unmarshal([]byte(cached), &run); err == nil {
				return &run, nil
			}
			log.Printf("[runs] Discarding unreadable cache entry for %s", runID)
		case !errors.Is(err, redis.Nil):
			log.Printf("[runs] Cache lookup failed for %s: %v", runID, err)
		}
	}

	if s.DB == nil {
		return nil, ErrNotFound
	}

	var run models.Run
	if err := s.DB.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	s.cache(ctx, &run)
	return &run, nil
}

// Save records a completed run. A run id that already exists is left alone:
// the stored run, not the new one, ends up in the cache.
func (s *Store) Save(ctx context.Context, run *models.Run) error {
	if !s.Enabled() {
		return nil
	}
	if run.Status == "" {
		run.Status = models.RunStatusCompleted
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	if s.DB == nil {
		s.cacheOnce(ctx, run)
		return nil
	}

	stored, err := s.insertOnce(ctx, run)
	if err != nil {
		return err
	}
	s.cache(ctx, stored)
	return nil
}

// insertOnce inserts run unless its run id is taken, and returns the row the
// table holds afterwards.
func (s *Store) insertOnce(ctx context.Context, run *models.Run) (*models.Run, error) {
	result := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "run_id"}}, DoNothing: true}).
		Create(run)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save run %s: %w", run.RunID, result.Error)
	}
	if result.RowsAffected > 0 {
		return run, nil
	}

	log.Printf("[runs] Run %s already stored, keeping the first result", run.RunID)
	var existing models.Run
	if err := s.DB.WithContext(ctx).Where("run_id = ?", run.RunID).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", run.RunID, err)
	}
	return &existing, nil
}

// Prune deletes stored runs created before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.DB == nil {
		return 0, nil
	}
	result := s.DB.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Run{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Ping checks every configured backend.
func (s *Store) Ping(ctx context.Context) map[string]error {
	status := map[string]error{}
	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		status["database"] = err
	}
	if s.Redis != nil {
		status["redis"] = s.Redis.Ping(ctx).Err()
	}
	return status
}

func (s *Store) cache(ctx context.Context, run *models.Run) {
	if s.Redis == nil {
		return
	}
	payload, err := json.Marshal(run)
	if err != nil {
		log.Printf("[runs] Error marshalling run %s: %v", run.RunID, err)
		return
	}
	if err := s.Redis.Set(ctx, cacheKey(run.RunID), payload, s.CacheTTL).Err(); err != nil {
		log.Printf("[runs] Error caching run %s: %v", run.RunID, err)
	}
}

// cacheOnce is the Redis-only write path, where the cache is the record.
func (s *Store) cacheOnce(ctx context.Context, run *models.Run) {
	payload, err := json.Marshal(run)
	if err != nil {
		log.Printf("[runs] Error marshalling run %s: %v", run.RunID, err)
		return
	}
	written, err := s.Redis.SetNX(ctx, cacheKey(run.RunID), payload, s.CacheTTL).Result()
	if err != nil {
		log.Printf("[runs] Error caching run %s: %v", run.RunID, err)
		return
	}
	if !written {
		log.Printf("[runs] Run %s already cached, keeping the first result", run.RunID)
	}
}

func cacheKey(runID string) string {
	return cacheKeyPrefix + runID
}
