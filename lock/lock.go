package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another holder owns the key.
var ErrLocked = errors.New("lock is held by another request")

// Locker hands out short-lived exclusive locks keyed by name.
type Locker interface {
	// Acquire returns a release func when the lock was taken, ErrLocked otherwise.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func BorrowKey(toolID string) string { return fmt.Sprintf("tool:borrow:%s", toolID) }

// RedisLocker uses SET NX PX. Release only deletes the key while it still
// holds our token, so an expired lock taken over by someone else survives.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		// 请求 ctx 可能已取消，释放用独立的短超时
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.rdb, []string{key}, token).Err()
	}, nil
}

// NopLocker always succeeds. Used when redis is not configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }
