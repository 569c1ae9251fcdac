package challenge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

const redisKeyPrefix = "otp:challenge:"

// incrementScript only touches a hash that still holds the expected id so a
// consumed or re-issued challenge is never charged for a late wrong guess.
var incrementScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") ~= ARGV[1] then
  return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

var deleteScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") ~= ARGV[1] then
  return 0
end
return redis.call("DEL", KEYS[1])
`)

// Redis stores each challenge as a hash that Redis expires itself, so Sweep
// has nothing to do.
type Redis struct {
	client *redis.Client
	grace  time.Duration
}

func NewRedis(client *redis.Client, grace time.Duration) *Redis {
	return &Redis{client: client, grace: grace}
}

func (r *Redis) Put(ctx context.Context, key string, c entity.Challenge) error {
	rk := redisKeyPrefix + key

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, rk)
		p.HSet(ctx, rk, map[string]any{
			"id":         c.ID,
			"identifier": c.Identifier,
			"kind":       c.Kind.String(),
			"secret":     c.Secret,
			"issued_at":  c.IssuedAt.UnixMilli(),
			"expires_at": c.ExpiresAt.UnixMilli(),
			"attempts":   c.Attempts,
		})
		p.PExpireAt(ctx, rk, c.ExpiresAt.Add(r.grace))
		return nil
	})
	return err
}

func (r *Redis) Get(ctx context.Context, key string) (*entity.Challenge, error) {
	fields, err := r.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, goerror.ErrNotFound
	}

	return decodeRedisHash(fields)
}

func (r *Redis) IncrementAttempts(ctx context.Context, key, id string) (int, error) {
	n, err := incrementScript.Run(ctx, r.client, []string{redisKeyPrefix + key}, id).Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, goerror.ErrNotFound
	}
	return n, nil
}

func (r *Redis) Delete(ctx context.Context, key, id string) (bool, error) {
	n, err := deleteScript.Run(ctx, r.client, []string{redisKeyPrefix + key}, id).Int()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func decodeRedisHash(f map[string]string) (*entity.Challenge, error) {
	issued, err := strconv.ParseInt(f["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("challenge: decode issued_at: %w", err)
	}
	expires, err := strconv.ParseInt(f["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("challenge: decode expires_at: %w", err)
	}
	attempts, err := strconv.Atoi(f["attempts"])
	if err != nil {
		return nil, fmt.Errorf("challenge: decode attempts: %w", err)
	}

	return &entity.Challenge{
		ID:         f["id"],
		Identifier: f["identifier"],
		Kind:       entity.Kind(f["kind"]),
		Secret:     f["secret"],
		IssuedAt:   time.UnixMilli(issued).UTC(),
		ExpiresAt:  time.UnixMilli(expires).UTC(),
		Attempts:   attempts,
	}, nil
}
