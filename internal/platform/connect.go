package platform

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/drewmudry/vibecast-api/fal"
	"github.com/drewmudry/vibecast-api/internal/config"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the run history database. It returns nil, nil when no
// DATABASE_URL is configured.
func NewDBConnection(cfg config.RunsConfig) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Println("No DATABASE_URL configured, run history disabled")
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	log.Println("Database connected successfully")
	return db, nil
}

// NewRedisClient returns a client for REDIS_URL, which may be a redis:// URL
// or a bare host:port. It returns nil, nil when REDIS_URL is empty.
func NewRedisClient(cfg config.RunsConfig) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Println("No REDIS_URL configured, run cache disabled")
		return nil, nil
	}

	opts := &redis.Options{Addr: cfg.RedisURL}
	if strings.HasPrefix(cfg.RedisURL, "redis://") || strings.HasPrefix(cfg.RedisURL, "rediss://") {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	log.Println("Redis client initialized")
	return rdb, nil
}

// NewHTTPClient is shared by every provider call so they all get the same timeout.
func NewHTTPClient(cfg *config.Config) *http.Client {
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// NewFalClient returns nil when no fal credentials are configured.
func NewFalClient(cfg *config.Config, httpClient *http.Client) *fal.Client {
	credentials := cfg.Fal.Credentials()
	if credentials == "" {
		return nil
	}
	return fal.NewClient(credentials,
		fal.WithQueueURL(cfg.Fal.QueueURL),
		fal.WithHTTPClient(httpClient),
		fal.WithPollInterval(cfg.Fal.PollInterval),
	)
}
