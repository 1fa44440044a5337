package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbersapi/internal/models"
	"numbersapi/internal/repositories"
)

func newTestNumberService(t *testing.T) (*numberService, repositories.CounterRepository) {
	t.Helper()
	db := createTestDB(t)
	counters := repositories.NewCounterRepository(db)
	svc := NewNumberService(repositories.NewNumberRepository(db), NewSerialAllocator(counters)).(*numberService)
	return svc, counters
}

func TestSerialAllocator_Sequential(t *testing.T) {
	db := createTestDB(t)
	alloc := NewSerialAllocator(repositories.NewCounterRepository(db))
	ctx := context.Background()

	var got []int64
	for i := 0; i < 5; i++ {
		n, err := alloc.NextSerial(ctx, NumbersSequence)
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)

	cur, err := alloc.Current(ctx, NumbersSequence)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cur)

	cur, err = alloc.Current(ctx, "other")
	require.NoError(t, err)
	assert.Zero(t, cur)
}

type failingCounters struct {
	repositories.CounterRepository
}

func (failingCounters) Increment(context.Context, string) (int64, error) {
	return 0, errors.New("store unavailable")
}

func TestSerialAllocator_StoreFailure(t *testing.T) {
	alloc := NewSerialAllocator(failingCounters{})
	n, err := alloc.NextSerial(context.Background(), NumbersSequence)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "store unavailable")
}

func TestNumberService_CreateRecordSerialIncreases(t *testing.T) {
	svc, _ := newTestNumberService(t)
	ctx := context.Background()

	first, err := svc.CreateRandom(ctx)
	require.NoError(t, err)
	second, err := svc.CreateRandom(ctx)
	require.NoError(t, err)

	rec, err := svc.CreateRecord(ctx, 12345678)
	require.NoError(t, err)
	assert.Equal(t, int64(12345678), rec.Value)
	assert.NotZero(t, rec.ID)
	assert.Greater(t, rec.Serial, second.Serial)
	assert.Greater(t, second.Serial, first.Serial)
	assert.Equal(t, time.UTC, rec.SavedAt.Location())
}

func TestNumberService_CreateRandomInRange(t *testing.T) {
	svc, _ := newTestNumberService(t)
	for i := 0; i < 20; i++ {
		rec, err := svc.CreateRandom(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.Value, int64(MinValue))
		assert.LessOrEqual(t, rec.Value, int64(MaxValue))
	}
}

func TestNumberService_ValueOutOfRange(t *testing.T) {
	svc, counters := newTestNumberService(t)
	ctx := context.Background()

	for _, v := range []int64{0, MinValue - 1, MaxValue + 1} {
		_, err := svc.CreateRecord(ctx, v)
		assert.ErrorIs(t, err, ErrValueOutOfRange)
	}
	// no serial is burnt on validation errors
	seq, err := counters.Get(ctx, NumbersSequence)
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func TestNumberService_ConcurrentCreatesUniqueSerials(t *testing.T) {
	svc, _ := newTestNumberService(t)
	ctx := context.Background()

	const writers = 30
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		serials = map[int64]bool{}
		errs    []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := svc.CreateRandom(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			serials[rec.Serial] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, serials, writers)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers)
}

func TestNumberService_SerialConflictIsRetryable(t *testing.T) {
	svc, counters := newTestNumberService(t)
	ctx := context.Background()

	_, err := svc.CreateRecord(ctx, 11111111)
	require.NoError(t, err)
	_, err = svc.CreateRecord(ctx, 22222222)
	require.NoError(t, err)

	// simulate a restored backup: the counter falls behind the table
	stale := &models.NumberRecord{Value: 33333333, SavedAt: time.Now().UTC(), Serial: 3}
	require.NoError(t, svc.repo.Create(ctx, stale))

	_, err = svc.CreateRecord(ctx, 44444444)
	require.ErrorIs(t, err, ErrSerialConflict)

	// the conflicting serial is burnt; the next attempt succeeds
	rec, err := svc.CreateRecord(ctx, 44444444)
	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.Serial)

	seq, err := counters.Get(ctx, NumbersSequence)
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)
}

func TestNumberService_ReadOrder(t *testing.T) {
	svc, _ := newTestNumberService(t)
	ctx := context.Background()

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	clock := newFakeClock()
	svc.now = clock.Now

	_, err = svc.CreateRecord(ctx, 10000001)
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.CreateRecord(ctx, 10000002)
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.CreateRecord(ctx, 10000003)
	require.NoError(t, err)

	latest, err = svc.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(10000003), latest.Value)

	second, err := svc.SecondLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, int64(10000002), second.Value)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(10000001), all[2].Value)
}

func TestNumberService_SameTimestampTieBreak(t *testing.T) {
	svc, _ := newTestNumberService(t)
	ctx := context.Background()
	clock := newFakeClock()
	svc.now = clock.Now

	a, err := svc.CreateRecord(ctx, 10000001)
	require.NoError(t, err)
	b, err := svc.CreateRecord(ctx, 10000002)
	require.NoError(t, err)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, latest.ID)

	second, err := svc.SecondLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, second.ID)
}
