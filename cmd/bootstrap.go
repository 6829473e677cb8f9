package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/candidateboard/internal/adapters/repository"
	service "github.com/okian/candidateboard/internal/app"
	"github.com/okian/candidateboard/internal/config"
	"github.com/okian/candidateboard/internal/generator"
	"github.com/okian/candidateboard/pkg/logger"
)

const redisPingTimeout = 2 * time.Second

// newStorage builds the configured persistence backend. An unreachable Redis
// is logged and kept: reads then fall back to the default dataset.
func newStorage(ctx context.Context, cfg config.Storage, log logger.Logger) (repository.Storage, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return repository.NewMemoryStorage(), nil
	case config.BackendFile:
		return repository.NewFileStorage(cfg.Path), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		storage := repository.NewRedisStorage(client, cfg.RedisKey)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := storage.Ping(pingCtx); err != nil {
			log.Warn(ctx, "redis unreachable; continuing with fallback reads",
				logger.String("addr", cfg.RedisAddr),
				logger.Error(err),
			)
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage.backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

// newService wires storage, generator and service from configuration and
// starts the service.
func (st *cli) newService(ctx context.Context) (*service.Service, error) {
	storage, err := newStorage(ctx, st.cfg.Storage, st.log)
	if err != nil {
		return nil, err
	}

	gen := generator.New(
		generator.WithSeed(st.cfg.GeneratorSeed),
		generator.WithSkillPool(st.cfg.SkillPool),
	)

	svc := service.New(
		service.WithLogger(st.log),
		service.WithStorage(storage),
		service.WithGenerator(gen),
		service.WithPageSize(st.cfg.PageSize),
		service.WithCandidateCount(st.cfg.CandidateCount),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}
