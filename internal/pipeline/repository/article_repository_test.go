package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
)

func TestCreateIgnoreConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	first := entity.Article{URL: "https://example.com/1", Title: "First", Source: "s", FetchedDate: time.Now()}
	created, err := repo.CreateIgnoreConflict(ctx, &first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	// Same URL again: silently skipped, not an error.
	duplicate := entity.Article{URL: "https://example.com/1", Title: "Duplicate", Source: "s", FetchedDate: time.Now()}
	created, err = repo.CreateIgnoreConflict(ctx, &duplicate)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&entity.Article{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The original row is untouched.
	stored, err := repo.FindByURL(ctx, "https://example.com/1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "First", stored.Title)
}

func TestCreateBatchCountsInsertedAndSkipped(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	seedArticle(t, db, "https://example.com/existing", "2026-08-01")

	batch := []entity.Article{
		{URL: "https://example.com/existing", Title: "dup", Source: "s", FetchedDate: time.Now()},
		{URL: "https://example.com/new-1", Title: "n1", Source: "s", FetchedDate: time.Now()},
		{URL: "https://example.com/new-2", Title: "n2", Source: "s", FetchedDate: time.Now()},
	}
	inserted, skipped, err := repo.CreateBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 1, skipped)
}

func TestFindByURLReturnsNilWhenAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)

	article, err := repo.FindByURL(context.Background(), "https://example.com/missing")
	require.NoError(t, err)
	assert.Nil(t, article)
}

func TestFindByIDMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)

	_, err := repo.FindByID(context.Background(), 9999)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}

func TestGetUnprocessedAndMarkProcessed(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")
	a3 := seedArticle(t, db, "https://example.com/3", "2026-08-03")

	unprocessed, err := repo.GetUnprocessed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, unprocessed, 3)
	assert.Equal(t, a1.ID, unprocessed[0].ID) // oldest first

	unprocessed, err = repo.GetUnprocessed(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, unprocessed, 2)

	require.NoError(t, repo.MarkProcessed(ctx, a2.ID))
	unprocessed, err = repo.GetUnprocessed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, unprocessed, 2)
	assert.Equal(t, a1.ID, unprocessed[0].ID)
	assert.Equal(t, a3.ID, unprocessed[1].ID)

	assert.ErrorIs(t, repo.MarkProcessed(ctx, 9999), dto.ErrInvalidInput)
}

func TestSaveRawExtraction(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	require.NoError(t, repo.SaveRawExtraction(ctx, article.ID, []byte(`{"topics":[]}`)))

	stored, err := repo.FindByID(ctx, article.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"topics":[]}`, string(stored.RawExtraction))
}
