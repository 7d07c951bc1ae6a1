package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobposting-collector/internal/models"
)

func record(url, position string) models.JobRecord {
	rec := models.NewJobRecord(url)
	rec.Position = position
	rec.Company = "Globex"
	return rec
}

func TestMemoryRepository_CreateFindUpdate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	url := "https://www.linkedin.com/jobs/view/1/"

	_, err := repo.FindByPostingURL(ctx, url)
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := repo.Create(ctx, record(url, "SRE"))
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err)

	found, err := repo.FindByPostingURL(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	budget := 1200.0
	rec := record(url, "Senior SRE")
	rec.Budget = &budget
	updated, err := repo.Update(ctx, created.ID, rec)
	require.NoError(t, err)
	assert.Equal(t, "Senior SRE", updated.Record.Position)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Record.Budget)
	assert.Equal(t, 1200.0, *got.Record.Budget)
}

func TestMemoryRepository_Duplicate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	url := "https://www.linkedin.com/jobs/view/2/"

	_, err := repo.Create(ctx, record(url, "SRE"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, record(url, "SRE"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryRepository_UpdateMissing(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.Update(context.Background(), uuid.NewString(), record("https://www.linkedin.com/jobs/view/3/", "SRE"))

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	created, err := repo.Create(ctx, record("https://www.linkedin.com/jobs/view/4/", "SRE"))
	require.NoError(t, err)

	created.Record.Position = "mutated"

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "SRE", got.Record.Position)
}
