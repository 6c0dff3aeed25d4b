package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/internal/config"
	pgInfra "github.com/fastygo/taskproof/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskproof/internal/infrastructure/redis"
	"github.com/fastygo/taskproof/repository"
	"github.com/fastygo/taskproof/repository/memory"
	"github.com/fastygo/taskproof/repository/postgres"
	redisRepo "github.com/fastygo/taskproof/repository/redis"
)

// backend is the set of data sources a command works against.
type backend struct {
	Tasks repository.TaskRepository
	Users repository.UserRepository
	Views repository.ViewRepository

	pool  *pgxpool.Pool
	redis *goRedis.Client
}

// openBackend connects to Postgres and, when reachable, Redis. Without Redis
// viewed marks live in memory for the life of the process.
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	pool, err := pgInfra.NewPool(ctx, cfg.Database, cfg.AppName, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	b := &backend{
		Tasks: postgres.NewTaskRepository(pool),
		Users: postgres.NewUserRepository(pool),
		pool:  pool,
	}

	client, err := redisInfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, viewed marks kept in memory", zap.Error(err))
		b.Views = memory.New()
		return b, nil
	}
	b.redis = client
	b.Views = redisRepo.NewViewRepository(client, cfg.Feed.ViewedTTL)
	return b, nil
}

// demoBackend is an in-memory world seeded with the demo fixtures.
func demoBackend(ctx context.Context, f memory.Fixtures) (*backend, error) {
	store := memory.New()
	if err := store.Seed(ctx, f); err != nil {
		return nil, fmt.Errorf("seed demo data: %w", err)
	}
	return &backend{Tasks: store, Users: store.Users(), Views: store}, nil
}

func (b *backend) Close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	if b.pool != nil {
		b.pool.Close()
	}
	return errors.Join(errs...)
}
