package scorer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// Cache stores remote analyses between requests.
type Cache interface {
	Get(ctx context.Context, lead model.Lead) (*model.LeadAnalysis, error)
	Set(ctx context.Context, lead model.Lead, a model.LeadAnalysis) error
}

// CacheKey identifies an analysis by lead id and lead content, so a changed
// dataset never serves a stale analysis.
func CacheKey(prefix string, lead model.Lead) string {
	data, _ := json.Marshal(lead)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%sanalysis:%d:%s", prefix, lead.ID, hex.EncodeToString(sum[:8]))
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // key prefix, default "leads:"
	TTL      time.Duration // default 24h
}

// RedisCache implements Cache on Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache. It does not dial until first use.
func NewRedisCache(opts RedisOptions) *RedisCache {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "leads:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix: prefix,
		ttl:    ttl,
	}
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return eris.Wrap(c.client.Ping(ctx).Err(), "cache: ping")
}

// Get returns the cached analysis, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, lead model.Lead) (*model.LeadAnalysis, error) {
	data, err := c.client.Get(ctx, CacheKey(c.prefix, lead)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: get lead %d", lead.ID)
	}
	var a model.LeadAnalysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrapf(err, "cache: decode lead %d", lead.ID)
	}
	return &a, nil
}

// Set stores a with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, lead model.Lead, a model.LeadAnalysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "cache: encode analysis")
	}
	if err := c.client.Set(ctx, CacheKey(c.prefix, lead), data, c.ttl).Err(); err != nil {
		return eris.Wrapf(err, "cache: set lead %d", lead.ID)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
