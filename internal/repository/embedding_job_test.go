//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeJobDocument(t *testing.T, ctx context.Context, docRepo *DocumentRepository) string {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &domain.KnowledgeDocument{
		ID:        uuid.NewString(),
		Title:     "Guide",
		Content:   "content",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, docRepo.Create(ctx, doc))
	return doc.ID
}

func TestEmbeddingJobRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	jobRepo := NewEmbeddingJobRepository(pool)
	docID := storeJobDocument(t, ctx, docRepo)

	job := domain.NewEmbeddingJob(uuid.NewString(), docID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, jobRepo.Create(ctx, job))

	retrieved, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, retrieved.ID)
	assert.Equal(t, docID, retrieved.DocumentID)
	assert.Equal(t, domain.EmbeddingJobStatusPending, retrieved.Status)
	assert.Equal(t, int32(0), retrieved.Retries)
}

func TestEmbeddingJobRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	jobRepo := NewEmbeddingJobRepository(pool)

	_, err := jobRepo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrEmbeddingJobNotFound)
}

func TestEmbeddingJobRepository_ClaimPending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	jobRepo := NewEmbeddingJobRepository(pool)
	docID := storeJobDocument(t, ctx, docRepo)

	now := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 3; i++ {
		job := domain.NewEmbeddingJob(uuid.NewString(), docID, now.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, jobRepo.Create(ctx, job))
	}

	claimed, err := jobRepo.ClaimPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	for _, job := range claimed {
		assert.Equal(t, domain.EmbeddingJobStatusProcessing, job.Status)
	}

	// Claimed jobs are not handed out twice.
	remaining, err := jobRepo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestEmbeddingJobRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	jobRepo := NewEmbeddingJobRepository(pool)
	docID := storeJobDocument(t, ctx, docRepo)

	job := domain.NewEmbeddingJob(uuid.NewString(), docID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, jobRepo.Create(ctx, job))

	require.NoError(t, jobRepo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""))

	retrieved, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingJobStatusCompleted, retrieved.Status)
	assert.NotNil(t, retrieved.ProcessedAt)
}

func TestEmbeddingJobRepository_UpdateStatus_Failed(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	jobRepo := NewEmbeddingJobRepository(pool)
	docID := storeJobDocument(t, ctx, docRepo)

	job := domain.NewEmbeddingJob(uuid.NewString(), docID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, jobRepo.Create(ctx, job))

	require.NoError(t, jobRepo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, "embedding provider timeout"))

	retrieved, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingJobStatusFailed, retrieved.Status)
	assert.Equal(t, "embedding provider timeout", retrieved.Error)
}

func TestEmbeddingJobRepository_IncrementRetries(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	jobRepo := NewEmbeddingJobRepository(pool)
	docID := storeJobDocument(t, ctx, docRepo)

	job := domain.NewEmbeddingJob(uuid.NewString(), docID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, jobRepo.Create(ctx, job))

	require.NoError(t, jobRepo.IncrementRetries(ctx, job.ID))
	require.NoError(t, jobRepo.IncrementRetries(ctx, job.ID))

	retrieved, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), retrieved.Retries)
}
