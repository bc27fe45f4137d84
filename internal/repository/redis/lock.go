package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const LockKeyPrefix = "forum:lock"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// DistLock 多实例间的互斥，token 用于保证只释放自己持有的锁
type DistLock struct {
	RDB *redis.Client
}

func lockKey(name string) string {
	return fmt.Sprintf("%s:%s", LockKeyPrefix, name)
}

func (l *DistLock) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	return l.RDB.SetNX(ctx, lockKey(name), token, ttl).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, l.RDB, []string{lockKey(name)}, token).Err()
}
