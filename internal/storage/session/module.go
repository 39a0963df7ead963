package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/domain/repository"
)

// Module provides the session store: Redis when REDIS_URL is set, memory otherwise.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newStore(p storeParams) (repository.SessionStore, error) {
	if p.Config.RedisURL == "" {
		p.Logger.Warn("REDIS_URL is not set, checkout drafts are kept in memory")
		return NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(p.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	store := NewRedisStore(redis.NewClient(opts))
	if err := store.Ping(p.Ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return store, nil
}
