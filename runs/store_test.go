package runs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/drewmudry/vibecast-api/models"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestStore_DisabledKeepsNothing(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]*Store{"nil store": nil, "no backends": NewStore(nil, nil, time.Hour)} {
		t.Run(name, func(t *testing.T) {
			if s.Enabled() {
				t.Fatal("expected store disabled")
			}
			if err := s.Save(ctx, &models.Run{RunID: "abc", VideoURL: "https://cdn/v.mp4"}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if _, err := s.Lookup(ctx, "abc"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Lookup() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_PruneWithoutDatabase(t *testing.T) {
	n, err := NewStore(nil, nil, time.Hour).Prune(context.Background(), time.Now())
	if err != nil || n != 0 {
		t.Errorf("Prune() = %d, %v", n, err)
	}
}

func TestCacheKey(t *testing.T) {
	if got := cacheKey("abc"); got != "vibecast:run:abc" {
		t.Errorf("cacheKey() = %q", got)
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "runs.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := NewStore(db, nil, 0).Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestStore_LookupServesCacheHit(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Set(cacheKey("abc"), `{"runId":"abc","videoUrl":"https://cdn/v.mp4","status":"completed"}`)

	run, err := NewStore(nil, rdb, time.Hour).Lookup(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if run.VideoURL != "https://cdn/v.mp4" || run.Status != models.RunStatusCompleted {
		t.Errorf("run = %+v", run)
	}
}

func TestStore_LookupFallsBackToDatabaseAndRecaches(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewStore(newDB(t), rdb, time.Hour)

	if err := s.Save(ctx, &models.Run{RunID: "abc", VideoURL: "https://cdn/v.mp4"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	mr.Del(cacheKey("abc"))

	run, err := s.Lookup(ctx, "abc")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if run.VideoURL != "https://cdn/v.mp4" {
		t.Errorf("VideoURL = %q", run.VideoURL)
	}
	if !mr.Exists(cacheKey("abc")) {
		t.Error("run was not cached after database hit")
	}
	if ttl := mr.TTL(cacheKey("abc")); ttl != time.Hour {
		t.Errorf("cache TTL = %v, want 1h", ttl)
	}

	if _, err := s.Lookup(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveKeepsFirstRun(t *testing.T) {
	ctx := context.Background()
	backends := map[string]func(t *testing.T) *Store{
		"redis only": func(t *testing.T) *Store {
			_, rdb := newRedis(t)
			return NewStore(nil, rdb, time.Hour)
		},
		"database only": func(t *testing.T) *Store {
			return NewStore(newDB(t), nil, time.Hour)
		},
		"database and redis": func(t *testing.T) *Store {
			_, rdb := newRedis(t)
			return NewStore(newDB(t), rdb, time.Hour)
		},
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			if err := s.Save(ctx, &models.Run{RunID: "abc", VideoURL: "https://cdn/first.mp4"}); err != nil {
				t.Fatalf("first Save() error = %v", err)
			}
			if err := s.Save(ctx, &models.Run{RunID: "abc", VideoURL: "https://cdn/second.mp4"}); err != nil {
				t.Fatalf("second Save() error = %v", err)
			}

			run, err := s.Lookup(ctx, "abc")
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if run.VideoURL != "https://cdn/first.mp4" {
				t.Errorf("VideoURL = %q, want the first run", run.VideoURL)
			}
			if run.CreatedAt.IsZero() {
				t.Error("CreatedAt not set")
			}

			if s.DB != nil {
				var count int64
				s.DB.Model(&models.Run{}).Where("run_id = ?", "abc").Count(&count)
				if count != 1 {
					t.Errorf("stored %d rows, want 1", count)
				}
				if s.Redis != nil {
					// Drop to the database to make sure it agrees with the cache.
					s.Redis.Del(ctx, cacheKey("abc"))
					run, _ := s.Lookup(ctx, "abc")
					if run == nil || run.VideoURL != "https://cdn/first.mp4" {
						t.Errorf("database run = %+v, want the first run", run)
					}
				}
			}
		})
	}
}

func TestStore_PruneDeletesOldRuns(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newDB(t), nil, time.Hour)

	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for id, created := range map[string]time.Time{
		"old":    cutoff.Add(-48 * time.Hour),
		"older":  cutoff.Add(-720 * time.Hour),
		"recent": cutoff.Add(24 * time.Hour),
	} {
		if err := s.Save(ctx, &models.Run{RunID: id, VideoURL: "https://cdn/" + id + ".mp4", CreatedAt: created}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	n, err := s.Prune(ctx, cutoff)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d runs, want 2", n)
	}
	if _, err := s.Lookup(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(old) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Lookup(ctx, "recent"); err != nil {
		t.Errorf("Lookup(recent) error = %v", err)
	}
}

func TestStore_Ping(t *testing.T) {
	_, rdb := newRedis(t)
	status := NewStore(newDB(t), rdb, time.Hour).Ping(context.Background())
	for _, backend := range []string{"database", "redis"} {
		err, ok := status[backend]
		if !ok {
			t.Errorf("%s missing from Ping()", backend)
		} else if err != nil {
			t.Errorf("%s Ping() error = %v", backend, err)
		}
	}
}
