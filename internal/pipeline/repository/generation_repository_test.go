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

// seedSubtopic creates a parent/subtopic pair and returns both ids.
func seedSubtopic(t *testing.T, repo TopicRepository, articleID uint) (uint, uint) {
	t.Helper()
	parentID, subtopicID, err := repo.ResolveAndLink(context.Background(), articleID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	return parentID, subtopicID
}

func TestGenerationCreateValidation(t *testing.T) {
	db := newTestDB(t)
	topicRepo := NewTopicRepository(db)
	repo := NewGenerationRepository(db)
	ctx := context.Background()

	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	parentID, subtopicID := seedSubtopic(t, topicRepo, article.ID)

	// Missing topic.
	err := repo.Create(ctx, &entity.GeneratedArticle{TopicID: 9999, OutputFile: "o.md", ModelUsed: "m", SourceArticleCount: 1})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	// Parent topics never get generation records.
	err = repo.Create(ctx, &entity.GeneratedArticle{TopicID: parentID, OutputFile: "o.md", ModelUsed: "m", SourceArticleCount: 1})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	// Zero source articles.
	err = repo.Create(ctx, &entity.GeneratedArticle{TopicID: subtopicID, OutputFile: "o.md", ModelUsed: "m", SourceArticleCount: 0})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	record := entity.GeneratedArticle{TopicID: subtopicID, OutputFile: "o.md", ModelUsed: "m", SourceArticleCount: 1, SourceArticleIDs: []int64{int64(article.ID)}}
	require.NoError(t, repo.Create(ctx, &record))
	assert.NotZero(t, record.ID)
	assert.False(t, record.GeneratedDate.IsZero())
}

func TestGenerationRecordsAppend(t *testing.T) {
	db := newTestDB(t)
	topicRepo := NewTopicRepository(db)
	repo := NewGenerationRepository(db)
	ctx := context.Background()

	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	_, subtopicID := seedSubtopic(t, topicRepo, article.ID)

	generated, err := repo.IsGenerated(ctx, subtopicID)
	require.NoError(t, err)
	assert.False(t, generated)

	older := entity.GeneratedArticle{TopicID: subtopicID, OutputFile: "v1.md", ModelUsed: "m", SourceArticleCount: 1, GeneratedDate: time.Now().Add(-time.Hour)}
	newer := entity.GeneratedArticle{TopicID: subtopicID, OutputFile: "v2.md", ModelUsed: "m", SourceArticleCount: 2, GeneratedDate: time.Now()}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))

	generated, err = repo.IsGenerated(ctx, subtopicID)
	require.NoError(t, err)
	assert.True(t, generated)

	latest, err := repo.Latest(ctx, subtopicID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "v2.md", latest.OutputFile)

	records, err := repo.ListForTopic(ctx, subtopicID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "v2.md", records[0].OutputFile)

	ids, err := repo.GeneratedTopicIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{subtopicID}, ids)
}

func TestGenerationLatestNilWhenNone(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenerationRepository(db)

	latest, err := repo.Latest(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestGenerationDeleteAndFindByID(t *testing.T) {
	db := newTestDB(t)
	topicRepo := NewTopicRepository(db)
	repo := NewGenerationRepository(db)
	ctx := context.Background()

	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	_, subtopicID := seedSubtopic(t, topicRepo, article.ID)

	record := entity.GeneratedArticle{TopicID: subtopicID, OutputFile: "o.md", ModelUsed: "m", SourceArticleCount: 1}
	require.NoError(t, repo.Create(ctx, &record))

	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "o.md", found.OutputFile)

	require.NoError(t, repo.Delete(ctx, record.ID))
	assert.ErrorIs(t, repo.Delete(ctx, record.ID), dto.ErrInvalidInput)

	_, err = repo.FindByID(ctx, record.ID)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}
