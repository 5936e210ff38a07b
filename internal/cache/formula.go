package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GislainLefranc/Zombieland-sub002/internal/pricing"
	"github.com/GislainLefranc/Zombieland-sub002/internal/quote"
)

const (
	formulaKeyPrefix = "formula:"
	defaultCacheTTL  = 5 * time.Minute
)

// Options configures the Redis connection backing the cache.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// FormulaCache is a read-through Redis cache in front of a formula source.
// Formulas are reference data, so a stale entry lives at most TTL.
type FormulaCache struct {
	client *redis.Client
	next   quote.FormulaSource
	ttl    time.Duration
	log    *zap.Logger
}

// NewFormulaCache connects to Redis and wraps next.
func NewFormulaCache(opts Options, next quote.FormulaSource, log *zap.Logger) *FormulaCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewFormulaCacheWithClient(client, opts.TTL, next, log)
}

// NewFormulaCacheWithClient wraps next using an existing Redis client. A non-positive ttl means 5 minutes.
func NewFormulaCacheWithClient(client *redis.Client, ttl time.Duration, next quote.FormulaSource, log *zap.Logger) *FormulaCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FormulaCache{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    log.Named("formula.cache"),
	}
}

// GetFormula returns the cached formula or loads it from the underlying source.
// Redis failures degrade to a direct read.
func (c *FormulaCache) GetFormula(ctx context.Context, id int64) (*pricing.Formula, error) {
	key := formulaKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var f pricing.Formula
		if err := json.Unmarshal(data, &f); err == nil {
			c.log.Debug("cache hit", zap.Int64("formula_id", id))
			return &f, nil
		}
		c.log.Warn("discarding undecodable cache entry", zap.Int64("formula_id", id))
	case errors.Is(err, redis.Nil):
		c.log.Debug("cache miss", zap.Int64("formula_id", id))
	default:
		c.log.Warn("cache get error", zap.Int64("formula_id", id), zap.Error(err))
	}

	f, err := c.next.GetFormula(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(f); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("cache set error", zap.Int64("formula_id", id), zap.Error(err))
		}
	}
	return f, nil
}

// Invalidate drops a cached formula.
func (c *FormulaCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, formulaKey(id)).Err()
}

// Ping checks the Redis connection.
func (c *FormulaCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis client.
func (c *FormulaCache) Close() error {
	return c.client.Close()
}

func formulaKey(id int64) string {
	return formulaKeyPrefix + strconv.FormatInt(id, 10)
}
