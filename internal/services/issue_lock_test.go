package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalIssueLocker(t *testing.T) {
	locks := NewLocalIssueLocker()
	ctx := context.Background()

	release, err := locks.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = locks.TryLock(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrIssueInProgress)

	_, err = locks.TryLock(ctx, "other", time.Minute)
	assert.NoError(t, err)

	release()
	release2, err := locks.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	release2()
}

func TestLocalIssueLocker_ExpiredLockIsTaken(t *testing.T) {
	locks := NewLocalIssueLocker()
	clock := newFakeClock()
	locks.now = clock.Now
	ctx := context.Background()

	staleRelease, err := locks.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	release, err := locks.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)

	// the stale holder must not drop the new owner's lock
	staleRelease()
	_, err = locks.TryLock(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrIssueInProgress)

	release()
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisIssueLocker(t *testing.T) {
	mr, client := newTestRedis(t)
	locks := NewRedisIssueLocker(client)
	ctx := context.Background()
	key := issueLockKey("a@x.com", "login")

	release, err := locks.TryLock(ctx, key, 15*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 15*time.Second, mr.TTL(key))

	_, err = locks.TryLock(ctx, key, 15*time.Second)
	assert.ErrorIs(t, err, ErrIssueInProgress)

	release()
	assert.False(t, mr.Exists(key))

	_, err = locks.TryLock(ctx, key, 15*time.Second)
	assert.NoError(t, err)
}

func TestRedisIssueLocker_ExpiresAndKeepsNewOwner(t *testing.T) {
	mr, client := newTestRedis(t)
	locks := NewRedisIssueLocker(client)
	ctx := context.Background()
	key := issueLockKey("b@x.com", "register")

	staleRelease, err := locks.TryLock(ctx, key, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	release, err := locks.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)

	staleRelease()
	assert.True(t, mr.Exists(key), "stale release removed the new owner's lock")

	release()
	assert.False(t, mr.Exists(key))
}

func TestRedisIssueLocker_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	_, err := NewRedisIssueLocker(client).TryLock(context.Background(), "k", time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIssueInProgress)
}
