package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smartsupport/backend/internal/domain"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute
)

// StatsCache keeps the computed dashboard aggregates in Redis so the
// agent dashboard does not recount on every poll.
type StatsCache struct {
	client *Client
}

// NewStatsCache creates a new stats cache
func NewStatsCache(client *Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get retrieves cached dashboard stats, nil on a miss.
func (c *StatsCache) Get(ctx context.Context) (*domain.DashboardStats, error) {
	data, err := c.client.rdb.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return &stats, nil
}

// Set caches dashboard stats
func (c *StatsCache) Set(ctx context.Context, stats *domain.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return c.client.rdb.Set(ctx, statsCacheKey, data, statsCacheTTL).Err()
}

// Invalidate drops the cached stats, forcing a recount on the next read.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.rdb.Del(ctx, statsCacheKey).Err()
}
