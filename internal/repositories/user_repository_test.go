package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbersapi/internal/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(createTestDB(t))
	ctx := context.Background()

	u := &models.User{
		UUID:      uuid.NewString(),
		Email:     "a@x.com",
		FullName:  "Ada",
		Company:   "Acme",
		Verified:  true,
		CreatedAt: baseTime,
	}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.UUID, byEmail.UUID)
	assert.Equal(t, "Acme", byEmail.Company)
	assert.True(t, byEmail.Verified)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Ada", byID.FullName)

	missing, err := repo.GetByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(createTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{UUID: uuid.NewString(), Email: "a@x.com", FullName: "A", CreatedAt: baseTime}))
	err := repo.Create(ctx, &models.User{UUID: uuid.NewString(), Email: "a@x.com", FullName: "B", CreatedAt: baseTime})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}
