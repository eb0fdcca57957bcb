// Package bootstrap connects the stores a process needs and picks the search backend.
package bootstrap

import (
	"fmt"
	"log/slog"

	"microblog/internal/cache"
	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/middleware"
	"microblog/internal/observability"
	"microblog/internal/repository"
	"microblog/internal/search"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime is the set of initialized shared dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Index search.Index
}

// InitRuntime connects to the database and Redis and selects the search index.
// Redis is optional: without it caching is off and search falls back to the
// database even when SEARCH_BACKEND=redis.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	observability.SetLogger(middleware.Logger)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	return &Runtime{DB: db, Redis: r, Index: SelectIndex(cfg, r, repository.NewPostRepository(db))}, nil
}

// SelectIndex returns the index SEARCH_BACKEND asks for, degrading to the
// database index when Redis is not connected.
func SelectIndex(cfg *config.Config, rdb *redis.Client, posts search.TermMatcher) search.Index {
	if cfg.SearchBackend == config.SearchBackendRedis {
		if rdb != nil {
			return search.NewRedisIndex(rdb)
		}
		middleware.Logger.Warn("SEARCH_BACKEND=redis but Redis is unavailable; searching the database instead",
			slog.String("redis_url", cfg.RedisURL))
	}
	return search.NewDBIndex(posts)
}
