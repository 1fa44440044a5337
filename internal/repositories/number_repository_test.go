package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbersapi/internal/models"
)

var baseTime = time.Date(2025, 10, 29, 11, 40, 0, 0, time.UTC)

func TestNumberRepository_CreateAndRead(t *testing.T) {
	repo := NewNumberRepository(createTestDB(t))
	ctx := context.Background()

	none, err := repo.NthLatest(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, none)

	for i := int64(1); i <= 3; i++ {
		rec := &models.NumberRecord{Value: 10000000 + i, SavedAt: baseTime.Add(time.Duration(i) * time.Second), Serial: i}
		require.NoError(t, repo.Create(ctx, rec))
		assert.NotZero(t, rec.ID)
	}

	latest, err := repo.NthLatest(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(10000003), latest.Value)
	assert.True(t, latest.SavedAt.Equal(baseTime.Add(3*time.Second)))

	second, err := repo.NthLatest(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, int64(2), second.Serial)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].Serial, all[1].Serial, all[2].Serial})
}

func TestNumberRepository_TieBreakOnSerial(t *testing.T) {
	repo := NewNumberRepository(createTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.NumberRecord{Value: 11111111, SavedAt: baseTime, Serial: 1}))
	require.NoError(t, repo.Create(ctx, &models.NumberRecord{Value: 22222222, SavedAt: baseTime, Serial: 2}))

	latest, err := repo.NthLatest(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest.Serial)
}

func TestNumberRepository_DuplicateSerial(t *testing.T) {
	repo := NewNumberRepository(createTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.NumberRecord{Value: 12345678, SavedAt: baseTime, Serial: 9}))
	err := repo.Create(ctx, &models.NumberRecord{Value: 87654321, SavedAt: baseTime, Serial: 9})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestNumberRepository_BackfillHelpers(t *testing.T) {
	db := createTestDB(t)
	repo := NewNumberRepository(db)
	ctx := context.Background()

	max, err := repo.MaxSerial(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), max)

	_, err = db.Exec(`INSERT INTO numbers (value, saved_at) VALUES ($1, $2)`, 30000000, baseTime.Add(2*time.Second))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO numbers (value, saved_at) VALUES ($1, $2)`, 20000000, baseTime.Add(time.Second))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &models.NumberRecord{Value: 40000000, SavedAt: baseTime, Serial: 5}))

	pending, err := repo.ListUnserialized(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(20000000), pending[0].Value, "oldest first")
	assert.Equal(t, int64(0), pending[0].Serial)

	require.NoError(t, repo.SetSerial(ctx, pending[0].ID, 6))
	max, err = repo.MaxSerial(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), max)

	err = repo.SetSerial(ctx, pending[1].ID, 6)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}
