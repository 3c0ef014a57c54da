package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperp "github.com/markethub/backend/internal/application/erp"
	"github.com/markethub/backend/internal/domain/erp"
)

// RedisCountsCache caches the per-status document counts in Redis with a
// short TTL. Suitable for distributed deployments where multiple
// instances serve the dashboard.
type RedisCountsCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCountsCache creates a new Redis-backed counts cache
func NewRedisCountsCache(cfg RedisConfig, ttl time.Duration) (*RedisCountsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCountsCacheWithClient(client, ttl), nil
}

// NewRedisCountsCacheWithClient creates a cache with an existing Redis
// client, useful for testing or when sharing a client across components.
func NewRedisCountsCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCountsCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &RedisCountsCache{
		client:    client,
		keyPrefix: "erp:document_counts:",
		ttl:       ttl,
	}
}

// Get returns the cached counts for a tenant, or (nil, nil) on a miss
func (c *RedisCountsCache) Get(ctx context.Context, tenantID uuid.UUID) (*erp.StatusCounts, error) {
	data, err := c.client.Get(ctx, c.key(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read counts cache: %w", err)
	}

	var counts erp.StatusCounts
	if err := json.Unmarshal(data, &counts); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Set.
		return nil, nil
	}
	return &counts, nil
}

// Set stores the counts for a tenant with the configured TTL
func (c *RedisCountsCache) Set(ctx context.Context, tenantID uuid.UUID, counts erp.StatusCounts) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(tenantID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write counts cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached counts of a tenant after a mutation
func (c *RedisCountsCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate counts cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCountsCache) Close() error {
	return c.client.Close()
}

func (c *RedisCountsCache) key(tenantID uuid.UUID) string {
	return c.keyPrefix + tenantID.String()
}

// Ensure RedisCountsCache implements the application cache port
var _ apperp.CountsCache = (*RedisCountsCache)(nil)
