package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	redisadapter "github.com/fooddash/console-api/internal/adapters/redis"

	"github.com/fooddash/console-api/internal/adapters/memstore"
	"github.com/fooddash/console-api/internal/ports"
)

// Stores groups the session store and state cache backing the gateway.
type Stores struct {
	Sessions ports.SessionStore
	Cache    ports.StateCache

	// Redis is nil when running in degraded in-process mode.
	Redis redis.UniversalClient
}

// BuildStores connects Redis and wraps it as the session store and
// state cache. When Redis is unreachable and the deployment allows it,
// the gateway degrades to in-process stores: logins still work on this
// instance but sessions are not shared and die with the process.
func BuildStores(cfg DatabaseConfig) (Stores, error) {
	client, err := ConnectRedis(cfg)
	if err != nil {
		if !cfg.RedisConfig.AllowDegraded {
			return Stores{}, fmt.Errorf("connect redis: %w", err)
		}

		logger := cfg.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("redis unreachable, running with in-process session store", "error", err)

		return Stores{
			Sessions: memstore.NewSessionStore(),
			Cache:    memstore.NewStateCache(),
		}, nil
	}

	return Stores{
		Sessions: redisadapter.NewSessionStore(client),
		Cache:    redisadapter.NewStateCache(client),
		Redis:    client,
	}, nil
}
