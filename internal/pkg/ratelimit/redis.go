package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
)

// slidingWindowScript keeps one sorted set per key scored by attempt time in
// milliseconds. It returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, count, tonumber(oldest[2])}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)

if count == 0 then
	return {1, 1, now}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, count + 1, tonumber(oldest[2])}
`)

// Redis is a sliding-window limiter shared by every instance that talks to
// the same Redis.
type Redis struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clocker
	prefix string
}

// NewRedis builds a Redis-backed limiter. Keys are stored under prefix.
func NewRedis(client *redis.Client, cfg Config, clk clock.Clocker, prefix string) (*Redis, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Redis{client: client, cfg: cfg, clock: clk, prefix: "ratelimit:" + prefix + ":"}, nil
}

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string) (Info, error) {
	now := r.clock.Now()
	nowMs := now.UnixMilli()

	res, err := slidingWindowScript.Run(ctx, r.client,
		[]string{r.prefix + key},
		nowMs,
		r.cfg.WindowSize.Milliseconds(),
		r.cfg.MaxAttempts,
		fmt.Sprintf("%d-%s", nowMs, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return Info{}, err
	}
	if len(res) != 3 {
		return Info{}, fmt.Errorf("ratelimit: unexpected script result %v", res)
	}

	reset := time.UnixMilli(res[2]).Add(r.cfg.WindowSize)
	info := Info{
		Allowed:   res[0] == 1,
		Limit:     r.cfg.MaxAttempts,
		Remaining: max(r.cfg.MaxAttempts-int(res[1]), 0),
		ResetTime: reset,
	}
	if !info.Allowed {
		info.Remaining = 0
		info.RetryAfter = max(reset.Sub(now), 0)
	}

	return info, nil
}
