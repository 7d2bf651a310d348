package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
)

func TestNormalizeTopicName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Employment Law", "employment law"},
		{"trims", "  Employment Law  ", "employment law"},
		{"collapses internal whitespace", "Employment \t  Law", "employment law"},
		{"already normalized", "employment law", "employment law"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTopicName(tt.input))
		})
	}
}

func TestResolveAndLinkCreatesHierarchy(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")

	parentID, subtopicID, err := repo.ResolveAndLink(ctx, article.ID, classification("Employment Law", "Minimum Wage Increases", "covers the 2026 federal increase", 8))
	require.NoError(t, err)

	var parent, subtopic entity.Topic
	require.NoError(t, db.First(&parent, parentID).Error)
	require.NoError(t, db.First(&subtopic, subtopicID).Error)

	assert.True(t, parent.IsParent)
	assert.Nil(t, parent.ParentTopicID)
	assert.Equal(t, DefaultRelevanceScore, parent.SMBRelevanceScore)
	assert.False(t, subtopic.IsParent)
	require.NotNil(t, subtopic.ParentTopicID)
	assert.Equal(t, parentID, *subtopic.ParentTopicID)
	assert.Equal(t, 8, subtopic.SMBRelevanceScore)

	var link entity.ArticleTopic
	require.NoError(t, db.Where("article_id = ? AND topic_id = ?", article.ID, subtopicID).First(&link).Error)
	assert.Equal(t, "covers the 2026 federal increase", link.ArticleTag)

	var reloaded entity.Article
	require.NoError(t, db.First(&reloaded, article.ID).Error)
	assert.True(t, reloaded.Processed)
}

func TestResolveAndLinkIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")

	c := classification("Employment Law", "Minimum Wage Increases", "first tag", 8)
	p1, s1, err := repo.ResolveAndLink(ctx, article.ID, c)
	require.NoError(t, err)
	p2, s2, err := repo.ResolveAndLink(ctx, article.ID, c)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)

	var topicCount, linkCount int64
	require.NoError(t, db.Model(&entity.Topic{}).Count(&topicCount).Error)
	require.NoError(t, db.Model(&entity.ArticleTopic{}).Count(&linkCount).Error)
	assert.Equal(t, int64(2), topicCount)
	assert.Equal(t, int64(1), linkCount)
}

func TestResolveAndLinkMatchesDespiteCasingAndWhitespace(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	p1, s1, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	p2, s2, err := repo.ResolveAndLink(ctx, a2.ID, classification("  employment   LAW ", "minimum wage   increases", "", 6))
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)

	// First-seen casing is what gets stored.
	var subtopic entity.Topic
	require.NoError(t, db.First(&subtopic, s1).Error)
	assert.Equal(t, "Minimum Wage Increases", subtopic.TopicName)
}

func TestResolveAndLinkScoreFirstWriteWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	_, subtopicID, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, a2.ID, classification("Employment Law", "Minimum Wage Increases", "", 3))
	require.NoError(t, err)

	var subtopic entity.Topic
	require.NoError(t, db.First(&subtopic, subtopicID).Error)
	assert.Equal(t, 8, subtopic.SMBRelevanceScore)
}

func TestResolveAndLinkClampsOutOfRangeScore(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")

	_, subtopicID, err := repo.ResolveAndLink(ctx, article.ID, classification("Employment Law", "Minimum Wage Increases", "", 42))
	require.NoError(t, err)

	var subtopic entity.Topic
	require.NoError(t, db.First(&subtopic, subtopicID).Error)
	assert.Equal(t, DefaultRelevanceScore, subtopic.SMBRelevanceScore)
}

func TestResolveAndLinkConflictDifferentParent(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	_, _, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)

	var topicsBefore int64
	require.NoError(t, db.Model(&entity.Topic{}).Count(&topicsBefore).Error)

	_, _, err = repo.ResolveAndLink(ctx, a2.ID, classification("Tax Law", "Minimum Wage Increases", "", 7))
	require.ErrorIs(t, err, dto.ErrTopicConflict)

	// The failed resolution must leave nothing behind.
	var topicsAfter, links int64
	require.NoError(t, db.Model(&entity.Topic{}).Count(&topicsAfter).Error)
	require.NoError(t, db.Model(&entity.ArticleTopic{}).Where("article_id = ?", a2.ID).Count(&links).Error)
	// "Tax Law" parent creation rolled back with the transaction.
	assert.Equal(t, topicsBefore, topicsAfter)
	assert.Equal(t, int64(0), links)

	var reloaded entity.Article
	require.NoError(t, db.First(&reloaded, a2.ID).Error)
	assert.False(t, reloaded.Processed)
}

func TestResolveAndLinkSubtopicNameCollidesWithParent(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	_, _, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)

	_, _, err = repo.ResolveAndLink(ctx, a2.ID, classification("Labour Relations", "Employment Law", "", 7))
	require.ErrorIs(t, err, dto.ErrTopicConflict)
}

func TestResolveAndLinkParentNameCollidesWithSubtopic(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	_, _, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)

	_, _, err = repo.ResolveAndLink(ctx, a2.ID, classification("Minimum Wage Increases", "Provincial Rates", "", 7))
	require.ErrorIs(t, err, dto.ErrTopicConflict)
}

func TestResolveAndLinkRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")

	_, _, err := repo.ResolveAndLink(ctx, article.ID, classification("", "Minimum Wage Increases", "", 8))
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	_, _, err = repo.ResolveAndLink(ctx, article.ID, classification("Employment Law", "   ", "", 8))
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	_, _, err = repo.ResolveAndLink(ctx, 9999, classification("Employment Law", "Minimum Wage Increases", "", 8))
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}

func TestResolveAndLinkUpdatesTagOnRelink(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()
	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")

	_, subtopicID, err := repo.ResolveAndLink(ctx, article.ID, classification("Employment Law", "Minimum Wage Increases", "old angle", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, article.ID, classification("Employment Law", "Minimum Wage Increases", "new angle", 8))
	require.NoError(t, err)

	var link entity.ArticleTopic
	require.NoError(t, db.Where("article_id = ? AND topic_id = ?", article.ID, subtopicID).First(&link).Error)
	assert.Equal(t, "new angle", link.ArticleTag)
}

func TestHierarchyTree(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	genRepo := NewGenerationRepository(db)
	ctx := context.Background()

	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")
	a3 := seedArticle(t, db, "https://example.com/3", "2026-08-03")

	_, wageID, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, a2.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, a3.ID, classification("Tax Law", "GST Changes", "", 6))
	require.NoError(t, err)

	require.NoError(t, genRepo.Create(ctx, &entity.GeneratedArticle{TopicID: wageID, OutputFile: "out.md", ModelUsed: "m", SourceArticleCount: 2}))

	tree, err := repo.HierarchyTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, "Employment Law", tree[0].TopicName)
	require.Len(t, tree[0].Subtopics, 1)
	assert.Equal(t, "Minimum Wage Increases", tree[0].Subtopics[0].TopicName)
	assert.Equal(t, int64(2), tree[0].Subtopics[0].ArticleCount)
	assert.True(t, tree[0].Subtopics[0].Generated)

	assert.Equal(t, "Tax Law", tree[1].TopicName)
	require.Len(t, tree[1].Subtopics, 1)
	assert.Equal(t, int64(1), tree[1].Subtopics[0].ArticleCount)
	assert.False(t, tree[1].Subtopics[0].Generated)
}

func TestFilterSubtopicsOrderingAndThresholds(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	// Three subtopics with article counts 3, 1, 3 and scores 9, 9, 4.
	for i, spec := range []struct {
		subtopic string
		score    int
		articles int
	}{
		{"Minimum Wage Increases", 9, 3},
		{"Overtime Rules", 9, 1},
		{"Payroll Remittances", 4, 3},
	} {
		for j := 0; j < spec.articles; j++ {
			a := seedArticle(t, db, fmt.Sprintf("https://example.com/%d-%d", i, j), "2026-08-01")
			_, _, err := repo.ResolveAndLink(ctx, a.ID, classification("Employment Law", spec.subtopic, "", spec.score))
			require.NoError(t, err)
		}
	}

	// Both thresholds are inclusive.
	result, err := repo.FilterSubtopics(ctx, 9, 1)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Minimum Wage Increases", result[0].TopicName)
	assert.Equal(t, int64(3), result[0].ArticleCount)
	assert.Equal(t, "Overtime Rules", result[1].TopicName)

	// Score threshold filters out the low-score branch.
	result, err = repo.FilterSubtopics(ctx, 5, 2)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Minimum Wage Increases", result[0].TopicName)

	// Nothing qualifies.
	result, err = repo.FilterSubtopics(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestFilterSubtopicsTiebreakByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	_, first, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	_, second, err := repo.ResolveAndLink(ctx, a2.ID, classification("Employment Law", "Overtime Rules", "", 8))
	require.NoError(t, err)

	result, err := repo.FilterSubtopics(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, first, result[0].ID)
	assert.Equal(t, second, result[1].ID)
}

func TestUngeneratedSubtopics(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	genRepo := NewGenerationRepository(db)
	ctx := context.Background()

	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	_, generatedID, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 9))
	require.NoError(t, err)
	_, pendingID, err := repo.ResolveAndLink(ctx, a2.ID, classification("Employment Law", "Overtime Rules", "", 9))
	require.NoError(t, err)

	require.NoError(t, genRepo.Create(ctx, &entity.GeneratedArticle{TopicID: generatedID, OutputFile: "out.md", ModelUsed: "m", SourceArticleCount: 1}))

	result, err := repo.UngeneratedSubtopics(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, pendingID, result[0].ID)

	// Deleting the record makes the topic eligible again.
	var record entity.GeneratedArticle
	require.NoError(t, db.Where("topic_id = ?", generatedID).First(&record).Error)
	require.NoError(t, genRepo.Delete(ctx, record.ID))

	result, err = repo.UngeneratedSubtopics(ctx, 0, 1)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestArticlesForTopicOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	older := seedArticle(t, db, "https://example.com/older", "2026-07-01")
	newest := seedArticle(t, db, "https://example.com/newest", "2026-08-15")
	sameDayA := seedArticle(t, db, "https://example.com/same-a", "2026-08-01")
	sameDayB := seedArticle(t, db, "https://example.com/same-b", "2026-08-01")

	var subtopicID uint
	for _, a := range []entity.Article{older, newest, sameDayA, sameDayB} {
		var err error
		_, subtopicID, err = repo.ResolveAndLink(ctx, a.ID, classification("Employment Law", "Minimum Wage Increases", "tag for "+a.URL, 8))
		require.NoError(t, err)
	}

	articles, err := repo.ArticlesForTopic(ctx, subtopicID)
	require.NoError(t, err)
	require.Len(t, articles, 4)

	assert.Equal(t, newest.ID, articles[0].ID)
	assert.Equal(t, sameDayA.ID, articles[1].ID) // same date: id ascending
	assert.Equal(t, sameDayB.ID, articles[2].ID)
	assert.Equal(t, older.ID, articles[3].ID)
	assert.Equal(t, "tag for "+newest.URL, articles[0].ArticleTag)
}

func TestTopicGroupParentExpandsAndDeduplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	shared := seedArticle(t, db, "https://example.com/shared", "2026-08-01")
	only := seedArticle(t, db, "https://example.com/only", "2026-08-02")

	parentID, _, err := repo.ResolveAndLink(ctx, shared.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, shared.ID, classification("Employment Law", "Overtime Rules", "", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, only.ID, classification("Employment Law", "Overtime Rules", "", 8))
	require.NoError(t, err)

	group, err := repo.TopicGroup(ctx, parentID)
	require.NoError(t, err)
	assert.Len(t, group.TopicIDs, 2)
	// The shared article appears once even though it links to both subtopics.
	assert.Len(t, group.Articles, 2)
}

func TestTopicGroupForIDsRejectsParents(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	parentID, subtopicID, err := repo.ResolveAndLink(ctx, article.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)

	_, err = repo.TopicGroupForIDs(ctx, []uint{parentID})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	_, err = repo.TopicGroupForIDs(ctx, []uint{subtopicID, 9999})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	_, err = repo.TopicGroupForIDs(ctx, nil)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	group, err := repo.TopicGroupForIDs(ctx, []uint{subtopicID})
	require.NoError(t, err)
	assert.Len(t, group.Articles, 1)
}

func TestDeleteTopicCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	genRepo := NewGenerationRepository(db)
	ctx := context.Background()

	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	parentID, wageID, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, a2.ID, classification("Employment Law", "Overtime Rules", "", 8))
	require.NoError(t, err)
	_, otherID, err := repo.ResolveAndLink(ctx, a2.ID, classification("Tax Law", "GST Changes", "", 6))
	require.NoError(t, err)

	require.NoError(t, genRepo.Create(ctx, &entity.GeneratedArticle{TopicID: wageID, OutputFile: "out.md", ModelUsed: "m", SourceArticleCount: 1}))

	require.NoError(t, repo.DeleteTopic(ctx, parentID))

	var topics, links, records, articles int64
	require.NoError(t, db.Model(&entity.Topic{}).Count(&topics).Error)
	require.NoError(t, db.Model(&entity.ArticleTopic{}).Count(&links).Error)
	require.NoError(t, db.Model(&entity.GeneratedArticle{}).Count(&records).Error)
	require.NoError(t, db.Model(&entity.Article{}).Count(&articles).Error)

	assert.Equal(t, int64(2), topics) // Tax Law + GST Changes survive
	assert.Equal(t, int64(1), links)  // a2 -> GST Changes
	assert.Equal(t, int64(0), records)
	assert.Equal(t, int64(2), articles) // articles are never deleted

	_, err = repo.FindByID(ctx, otherID)
	assert.NoError(t, err)

	err = repo.DeleteTopic(ctx, parentID)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	genRepo := NewGenerationRepository(db)
	ctx := context.Background()

	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	seedArticle(t, db, "https://example.com/2", "2026-08-02")

	_, subtopicID, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	require.NoError(t, genRepo.Create(ctx, &entity.GeneratedArticle{TopicID: subtopicID, OutputFile: "out.md", ModelUsed: "m", SourceArticleCount: 1}))

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalArticles)
	assert.Equal(t, int64(1), stats.UnprocessedArticles)
	assert.Equal(t, int64(2), stats.TotalTopics)
	assert.Equal(t, int64(1), stats.TotalLinks)
	assert.Equal(t, int64(1), stats.TotalGenerations)
}

func TestSubtopicNames(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	a1 := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	a2 := seedArticle(t, db, "https://example.com/2", "2026-08-02")

	parentID, _, err := repo.ResolveAndLink(ctx, a1.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)
	_, _, err = repo.ResolveAndLink(ctx, a2.ID, classification("Employment Law", "Overtime Rules", "", 8))
	require.NoError(t, err)

	names, err := repo.SubtopicNames(ctx, parentID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Minimum Wage Increases", "Overtime Rules"}, names)
}

func TestParentsWithSubtopics(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	article := seedArticle(t, db, "https://example.com/1", "2026-08-01")
	_, _, err := repo.ResolveAndLink(ctx, article.ID, classification("Employment Law", "Minimum Wage Increases", "", 8))
	require.NoError(t, err)

	hierarchy, err := repo.ParentsWithSubtopics(ctx)
	require.NoError(t, err)
	require.Len(t, hierarchy, 1)
	assert.Equal(t, "Employment Law", hierarchy[0].ParentName)
	assert.Equal(t, []string{"Minimum Wage Increases"}, hierarchy[0].Subtopics)
}
