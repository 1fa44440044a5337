package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
)

// IssueLocker serializes code issuance per (email, purpose). The lock is
// held only for the clear-then-create-then-send sequence and expires on its
// own if the holder dies.
type IssueLocker interface {
	// TryLock returns ErrIssueInProgress when someone else holds key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

func issueLockKey(email, purpose string) string {
	return fmt.Sprintf("verify:issue:%s:%s", purpose, email)
}

type lockEntry struct {
	owner   string
	expires time.Time
}

// LocalIssueLocker keeps locks in process memory; enough for a single
// instance deployment.
type LocalIssueLocker struct {
	held *xsync.MapOf[string, lockEntry]
	now  func() time.Time
}

func NewLocalIssueLocker() *LocalIssueLocker {
	return &LocalIssueLocker{held: xsync.NewMapOf[string, lockEntry](), now: time.Now}
}

func (l *LocalIssueLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), error) {
	owner := uuid.NewString()
	now := l.now()
	acquired := false
	l.held.Compute(key, func(old lockEntry, loaded bool) (lockEntry, bool) {
		if loaded && now.Before(old.expires) {
			return old, false
		}
		acquired = true
		return lockEntry{owner: owner, expires: now.Add(ttl)}, false
	})
	if !acquired {
		return nil, ErrIssueInProgress
	}
	return func() {
		l.held.Compute(key, func(old lockEntry, loaded bool) (lockEntry, bool) {
			if loaded && old.owner == owner {
				return lockEntry{}, true
			}
			return old, !loaded
		})
	}, nil
}

// release only if we still own the key
var redisUnlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisIssueLocker shares locks between instances through Redis SET NX PX.
type RedisIssueLocker struct {
	client *redis.Client
}

func NewRedisIssueLocker(client *redis.Client) *RedisIssueLocker {
	return &RedisIssueLocker{client: client}
}

func (l *RedisIssueLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("issue lock %q: %w", key, err)
	}
	if !ok {
		return nil, ErrIssueInProgress
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisUnlockScript.Run(ctx, l.client, []string{key}, owner).Err(); err != nil {
			log.Printf("[verify][lock] release %q failed: %v", key, err)
		}
	}, nil
}
