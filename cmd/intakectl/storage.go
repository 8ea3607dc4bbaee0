package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"github.com/petrijr/intakeflow"
	"github.com/petrijr/intakeflow/internal/config"
)

// openStorage connects the configured backend. The returned close function
// releases its connection.
func openStorage(ctx context.Context, cfg *config.Config) (intakeflow.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage {
	case config.StorageMemory:
		return intakeflow.NewInMemoryStorage(), noop, nil

	case config.StorageSQLite:
		db, err := sql.Open("sqlite", "file:"+cfg.SQLitePath+"?_pragma=journal_mode(WAL)")
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		st, err := intakeflow.NewSQLiteStorage(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return st, db.Close, nil

	case config.StoragePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		st, err := intakeflow.NewPostgresStorage(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return st, db.Close, nil

	case config.StorageRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return intakeflow.NewRedisStorage(client, ""), client.Close, nil

	case config.StorageMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return intakeflow.NewMongoStorage(client, cfg.MongoDatabase, cfg.MongoCollection), closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
