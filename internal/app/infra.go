package app

import (
	"context"
	"errors"

	"connect-gateway/internal/config"
	"connect-gateway/internal/db"
	"connect-gateway/internal/logger"
	"connect-gateway/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.RunUserMigration(ctx, database.DB); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("database ready", nil)

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	return &Infra{
		DB:    database,
		Redis: redisClient,
	}, nil
}

func (i *Infra) Close() error {
	return errors.Join(i.Redis.Close(), i.DB.Close())
}

// Health pings the database and redis.
func (i *Infra) Health(ctx context.Context) error {
	if err := i.DB.PingContext(ctx); err != nil {
		return err
	}
	return i.Redis.Health(ctx)
}
