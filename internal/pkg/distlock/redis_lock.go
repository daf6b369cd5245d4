package distlock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces job locks in Redis.
const KeyPrefix = "joblock:"

// compare-and-delete so a job whose TTL lapsed cannot free a successor's lock
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// RedisLock holds a job lock as a Redis key with a TTL. The value names the
// holder so operators can see who owns a stuck lock.
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewRedisLock creates a lock stored under KeyPrefix+job.
func NewRedisLock(client *redis.Client, job string, ttl time.Duration) *RedisLock {
	host, _ := os.Hostname()
	return &RedisLock{
		client: client,
		key:    KeyPrefix + job,
		token:  fmt.Sprintf("%s/%d/%s", host, os.Getpid(), uuid.NewString()),
		ttl:    ttl,
	}
}

// Acquire sets the key only if nobody holds it.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	return ok, nil
}

// Release deletes the key if this lock still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
