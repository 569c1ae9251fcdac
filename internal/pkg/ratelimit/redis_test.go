package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_Allow(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	clk := newFakeClock()

	limiter, err := NewRedis(client, Config{WindowSize: time.Minute, MaxAttempts: 2}, clk, "otp_send")
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}

	first, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil || !first.Allowed || first.Remaining != 1 {
		t.Fatalf("first Allow() = %+v, %v", first, err)
	}
	clk.Advance(20 * time.Second)

	second, _ := limiter.Allow(ctx, "10.0.0.1")
	if !second.Allowed || second.Remaining != 0 {
		t.Fatalf("second Allow() = %+v", second)
	}

	third, _ := limiter.Allow(ctx, "10.0.0.1")
	if third.Allowed {
		t.Fatal("third attempt must be rejected")
	}
	if third.RetryAfter != 40*time.Second {
		t.Fatalf("RetryAfter = %s, want 40s", third.RetryAfter)
	}

	clk.Advance(41 * time.Second)
	fourth, _ := limiter.Allow(ctx, "10.0.0.1")
	if !fourth.Allowed {
		t.Fatalf("oldest attempt left the window, got %+v", fourth)
	}
}
