// Package cache provides a Redis read-through decorator for the slowly
// changing reference collections (buyers and suppliers).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/config"
	"github.com/mamadbah2/ganadero/internal/repository"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

const keyPrefix = "ganadero:records"

// DefaultCollections are cached unless overridden.
var DefaultCollections = []repository.Collection{repository.CollectionBuyers, repository.CollectionSuppliers}

// RecordCache wraps a gateway. Redis failures never fail a fetch; the
// decorator falls through to the wrapped gateway.
type RecordCache struct {
	next        repository.Gateway
	client      *redis.Client
	ttl         time.Duration
	collections map[repository.Collection]struct{}
	logger      *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	opt.DB = cfg.DB

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("redis connection established", zap.String("addr", opt.Addr), zap.Int("db", cfg.DB))
	return client, nil
}

// New decorates next. With no collections given, DefaultCollections are cached.
func New(next repository.Gateway, client *redis.Client, ttl time.Duration, logger *zap.Logger, collections ...repository.Collection) *RecordCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(collections) == 0 {
		collections = DefaultCollections
	}
	set := make(map[repository.Collection]struct{}, len(collections))
	for _, c := range collections {
		set[c] = struct{}{}
	}
	return &RecordCache{next: next, client: client, ttl: ttl, collections: set, logger: logger}
}

// Fetch implements repository.Gateway.
func (c *RecordCache) Fetch(ctx context.Context, collection repository.Collection, query repository.Query) ([]record.Record, error) {
	if _, ok := c.collections[collection]; !ok {
		return c.next.Fetch(ctx, collection, query)
	}

	key := Key(collection, query)
	if rows, err := c.get(ctx, key); err == nil {
		c.logger.Debug("cache hit", zap.String("key", key))
		return rows, nil
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	rows, err := c.next.Fetch(ctx, collection, query)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, key, rows); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rows, nil
}

// Key renders the Redis key of a query.
func Key(collection repository.Collection, query repository.Query) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, collection, query.Key())
}

func (c *RecordCache) get(ctx context.Context, key string) ([]record.Record, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var rows []record.Record
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode cached rows: %w", err)
	}
	return rows, nil
}

func (c *RecordCache) set(ctx context.Context, key string, rows []record.Record) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
