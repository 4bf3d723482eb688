package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtbook/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "courtbook:lock:"

// releaseScript deletes the key only if it still carries our token, so a lock
// that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	log    *logger.Logger
}

func NewRedis(client *redis.Client, ttl, wait time.Duration, log *logger.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		wait:   wait,
		log:    log,
	}
}

func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()
	redisKey := redisKeyPrefix + key

	err := poll(ctx, r.wait, func() (bool, error) {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.ttl)
			defer cancel()
			if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
				r.log.Warn("Failed to release lock", "key", key, "error", err)
			}
		})
	}, nil
}
