package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRepository_IncrementSequential(t *testing.T) {
	repo := NewCounterRepository(createTestDB(t))
	ctx := context.Background()

	var got []int64
	for i := 0; i < 5; i++ {
		seq, err := repo.Increment(ctx, "numbers")
		require.NoError(t, err)
		got = append(got, seq)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)

	cur, err := repo.Get(ctx, "numbers")
	require.NoError(t, err)
	assert.Equal(t, int64(5), cur)
}

func TestCounterRepository_NamesAreIndependent(t *testing.T) {
	repo := NewCounterRepository(createTestDB(t))
	ctx := context.Background()

	_, err := repo.Increment(ctx, "a")
	require.NoError(t, err)
	_, err = repo.Increment(ctx, "a")
	require.NoError(t, err)

	b, err := repo.Increment(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b)

	missing, err := repo.Get(ctx, "never")
	require.NoError(t, err)
	assert.Equal(t, int64(0), missing)
}

func TestCounterRepository_IncrementConcurrent(t *testing.T) {
	repo := NewCounterRepository(createTestDB(t))
	ctx := context.Background()

	const workers = 40
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := repo.Increment(ctx, "numbers")
			if assert.NoError(t, err) {
				results <- seq
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for seq := range results {
		assert.False(t, seen[seq], "duplicate serial %d", seq)
		seen[seq] = true
	}
	require.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "missing serial %d", i)
	}
}

func TestCounterRepository_RaiseToNeverLowers(t *testing.T) {
	repo := NewCounterRepository(createTestDB(t))
	ctx := context.Background()

	seq, err := repo.RaiseTo(ctx, "numbers", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), seq)

	seq, err = repo.RaiseTo(ctx, "numbers", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(10), seq)

	next, err := repo.Increment(ctx, "numbers")
	require.NoError(t, err)
	assert.Equal(t, int64(11), next)
}
