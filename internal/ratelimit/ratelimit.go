// Package ratelimit throttles public entry submissions per client IP.
// Limits live in Redis so every API replica shares one window; when Redis
// is unavailable submissions are allowed rather than blocked.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyEntryWindow = "ratelimit:entries:%s:%s:%d" // campaign_id, ip, window

// Lua script for atomic check-and-increment within a fixed window.
const checkAndIncrLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")
if current >= limit then
    return {0, current}
end

local new = redis.call("INCR", key)
if new == 1 then
    redis.call("EXPIRE", key, ttl)
end
return {1, new}
`

// Limiter enforces a per-minute submission cap per (campaign, IP) pair.
type Limiter struct {
	redis     *redis.Client
	perMinute int

	checkAndIncrScript *redis.Script

	now func() time.Time
}

// New creates a limiter. A nil client disables limiting entirely.
func New(client *redis.Client, perMinute int) *Limiter {
	return &Limiter{
		redis:              client,
		perMinute:          perMinute,
		checkAndIncrScript: redis.NewScript(checkAndIncrLuaScript),
		now:                time.Now,
	}
}

// Allow reports whether one more submission from ip against campaignID
// fits in the current minute window, consuming a slot if it does.
func (l *Limiter) Allow(ctx context.Context, campaignID, ip string) bool {
	if l.redis == nil || l.perMinute <= 0 {
		return true
	}

	window := l.now().Unix() / 60
	key := fmt.Sprintf(keyEntryWindow, campaignID, ip, window)

	result, err := l.checkAndIncrScript.Run(ctx, l.redis,
		[]string{key},
		l.perMinute,
		120, // window TTL (1 minute + buffer)
	).Slice()
	if err != nil {
		log.Printf("[RateLimit] Error checking %s: %v", key, err)
		// Allow on error to avoid blocking all submissions
		return true
	}
	if len(result) < 1 {
		return true
	}
	allowed, _ := result[0].(int64)
	return allowed == 1
}
