package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/config"
	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/redis/go-redis/v9"
)

const impactKeyPrefix = "impact:"

// ImpactCache stores impact summaries per batch and selection.
type ImpactCache interface {
	GetImpact(ctx context.Context, batchID string, ids []string) (*domain.ImpactSummary, bool, error)
	SetImpact(ctx context.Context, batchID string, ids []string, summary *domain.ImpactSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisImpactCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopImpactCache struct{}

// NewImpactCache returns a Redis-backed cache, or a no-op one when caching is disabled.
func NewImpactCache(ctx context.Context, cfg config.CacheConfig) (ImpactCache, error) {
	if !cfg.Enabled {
		return &noopImpactCache{}, nil
	}

	client, ttl, err := newRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &redisImpactCache{client: client, ttl: ttl}, nil
}

func NewNoopImpactCache() ImpactCache {
	return &noopImpactCache{}
}

func (c *redisImpactCache) GetImpact(ctx context.Context, batchID string, ids []string) (*domain.ImpactSummary, bool, error) {
	payload, err := c.client.Get(ctx, buildImpactKey(batchID, ids)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.ImpactSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode impact cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisImpactCache) SetImpact(ctx context.Context, batchID string, ids []string, summary *domain.ImpactSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode impact cache: %w", err)
	}

	if err := c.client.Set(ctx, buildImpactKey(batchID, ids), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisImpactCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, impactKeyPrefix, scanBatchSize)
}

func (c *noopImpactCache) GetImpact(context.Context, string, []string) (*domain.ImpactSummary, bool, error) {
	return nil, false, nil
}

func (c *noopImpactCache) SetImpact(context.Context, string, []string, *domain.ImpactSummary) error {
	return nil
}

func (c *noopImpactCache) InvalidateAll(context.Context) error {
	return nil
}

// buildImpactKey is independent of selection order and duplicates.
func buildImpactKey(batchID string, ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	sum := sha1.Sum([]byte(strings.Join(sorted, ",")))
	return impactKeyPrefix + batchID + ":" + hex.EncodeToString(sum[:])
}
