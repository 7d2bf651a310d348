package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/config"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/telegram"
)

func newGeneratorTestEnv(t *testing.T) (*gorm.DB, GeneratorService, repository.TopicRepository) {
	t.Helper()
	ai := &fakeAIRepository{results: map[string]*dto.TopicExtractionResult{
		"https://example.com/1": extraction(triple("Employment Law", "Minimum Wage Increases", "a", 8)),
		"https://example.com/2": extraction(triple("Employment Law", "Minimum Wage Increases", "b", 8)),
	}}
	db, processor, _ := newProcessorTestEnv(t, ai)
	seedTestArticle(t, db, "https://example.com/1")
	seedTestArticle(t, db, "https://example.com/2")
	_, err := processor.ProcessUnprocessed(context.Background())
	require.NoError(t, err)

	log, err := logger.New("error", "json")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Generator.OutputDir = t.TempDir()

	topicRepo := repository.NewTopicRepository(db)
	svc := NewGeneratorService(cfg, log, topicRepo, repository.NewGenerationRepository(db), ai, telegram.NoopNotifier{})
	return db, svc, topicRepo
}

func subtopicID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var topic entity.Topic
	require.NoError(t, db.Where("topic_name = ? AND is_parent = ?", name, false).First(&topic).Error)
	return topic.ID
}

func TestGenerateForTopicWritesArtifactAndRecord(t *testing.T) {
	db, svc, _ := newGeneratorTestEnv(t)
	id := subtopicID(t, db, "Minimum Wage Increases")

	records, err := svc.GenerateForTopic(context.Background(), id, false)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, id, record.TopicID)
	assert.Equal(t, "fake-model", record.ModelUsed)
	assert.Equal(t, 2, record.SourceArticleCount)
	assert.Len(t, record.SourceArticleIDs, 2)
	require.NotNil(t, record.WordCount)
	assert.Greater(t, *record.WordCount, 0)

	content, err := os.ReadFile(record.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "topic: Minimum Wage Increases")
	assert.Contains(t, string(content), "# Minimum Wage Increases")
}

func TestGenerateForTopicRefusesRegenerationWithoutForce(t *testing.T) {
	db, svc, _ := newGeneratorTestEnv(t)
	id := subtopicID(t, db, "Minimum Wage Increases")

	_, err := svc.GenerateForTopic(context.Background(), id, false)
	require.NoError(t, err)

	_, err = svc.GenerateForTopic(context.Background(), id, false)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	records, err := svc.GenerateForTopic(context.Background(), id, true)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	var count int64
	require.NoError(t, db.Model(&entity.GeneratedArticle{}).Where("topic_id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGenerateForParentCoversSubtopics(t *testing.T) {
	db, svc, _ := newGeneratorTestEnv(t)
	var parent entity.Topic
	require.NoError(t, db.Where("topic_name = ? AND is_parent = ?", "Employment Law", true).First(&parent).Error)

	records, err := svc.GenerateForTopic(context.Background(), parent.ID, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, subtopicID(t, db, "Minimum Wage Increases"), records[0].TopicID)
}

func TestGenerateForTopicIDsRejectsEmptyGroup(t *testing.T) {
	db, svc, topicRepo := newGeneratorTestEnv(t)
	id := subtopicID(t, db, "Minimum Wage Increases")

	// Unlink the articles so the group is empty.
	require.NoError(t, db.Where("topic_id = ?", id).Delete(&entity.ArticleTopic{}).Error)

	_, err := topicRepo.TopicGroupForIDs(context.Background(), []uint{id})
	require.NoError(t, err)
	_, err = svc.GenerateForTopicIDs(context.Background(), []uint{id}, false)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}
