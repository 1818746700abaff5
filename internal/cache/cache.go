// Package cache keeps a short-lived Redis copy of published campaigns
// keyed by slug. Landing pages are the hot path; a few seconds of
// staleness is acceptable there, so reads go through the cache and every
// campaign mutation drops the cached copy.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prizejet/prizejet/internal/domain"
)

const keyCampaignSlug = "cache:campaign:slug:%s"

// DefaultTTL bounds how stale a landing page can be after an edit on
// another replica.
const DefaultTTL = 30 * time.Second

// Cache is a read-through store for published campaigns. A nil client
// turns every operation into a no-op.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{redis: client, ttl: ttl}
}

// GetCampaign returns the cached campaign for slug, or nil on a miss.
// Redis errors are logged and treated as misses.
func (c *Cache) GetCampaign(ctx context.Context, slug string) *domain.Campaign {
	if c.redis == nil {
		return nil
	}
	raw, err := c.redis.Get(ctx, fmt.Sprintf(keyCampaignSlug, slug)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Printf("[Cache] Error reading campaign %s: %v", slug, err)
		return nil
	}
	var camp domain.Campaign
	if err := json.Unmarshal(raw, &camp); err != nil {
		log.Printf("[Cache] Corrupt cached campaign %s: %v", slug, err)
		return nil
	}
	return &camp
}

// SetCampaign stores camp under its slug. Campaigns without a slug are
// never cached.
func (c *Cache) SetCampaign(ctx context.Context, camp *domain.Campaign) {
	if c.redis == nil || camp == nil || camp.Slug == nil {
		return
	}
	raw, err := json.Marshal(camp)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, fmt.Sprintf(keyCampaignSlug, *camp.Slug), raw, c.ttl).Err(); err != nil {
		log.Printf("[Cache] Error caching campaign %s: %v", *camp.Slug, err)
	}
}

// Invalidate drops the cached copy for slug after a mutation.
func (c *Cache) Invalidate(ctx context.Context, slug string) {
	if c.redis == nil || slug == "" {
		return
	}
	if err := c.redis.Del(ctx, fmt.Sprintf(keyCampaignSlug, slug)).Err(); err != nil {
		log.Printf("[Cache] Error invalidating campaign %s: %v", slug, err)
	}
}
