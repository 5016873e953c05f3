package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// compare-and-delete: -1 when the key is gone, 0 when someone else holds it
const releaseScript = `
	local v = redis.call("get", KEYS[1])
	if not v then
		return -1
	end
	if v == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`

// RedisLock is an atomic alternative to FileLock for several scheduler
// processes sharing one Redis. SET NX with a TTL replaces the stale check.
type RedisLock struct {
	client redis.UniversalClient
	key    string
	owner  string
	ttl    time.Duration
	now    func() time.Time

	mu sync.Mutex
	// payload written by the last successful TryAcquire
	held string
}

var _ Locker = (*RedisLock)(nil)

func NewRedisLock(client redis.UniversalClient, key, owner string, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = DefaultStaleAfter
	}
	if owner == "" {
		owner = NewOwner()
	}
	return &RedisLock{
		client: client,
		key:    key,
		owner:  owner,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (l *RedisLock) TryAcquire(ctx context.Context) (bool, error) {
	raw, err := sonic.MarshalString(newRecord(l.owner, l.now()))
	if err != nil {
		return false, fmt.Errorf("marshal lock record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ok, err := l.client.SetNX(ctx, l.key, raw, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set lock: %w", err)
	}
	if ok {
		l.held = raw
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held == "" {
		return nil
	}

	res, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.held).Int()
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	l.held = ""
	if res == 0 {
		return ErrNotHeld
	}
	return nil
}

func (l *RedisLock) Holder(ctx context.Context) (Record, bool, error) {
	raw, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get lock: %w", err)
	}

	var rec Record
	if err := sonic.UnmarshalString(raw, &rec); err != nil {
		return Record{}, true, fmt.Errorf("decode lock record: %w", err)
	}
	return rec, true, nil
}

// Close releases the underlying client.
func (l *RedisLock) Close() error {
	return l.client.Close()
}
