package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Article{},
		&entity.Topic{},
		&entity.ArticleTopic{},
		&entity.GeneratedArticle{},
	))
	return db
}

func seedArticle(t *testing.T, db *gorm.DB, url, published string) entity.Article {
	t.Helper()
	article := entity.Article{
		URL:           url,
		Title:         "Article " + url,
		Content:       "body",
		Source:        "test-source",
		PublishedDate: published,
		FetchedDate:   time.Now(),
	}
	require.NoError(t, db.Create(&article).Error)
	return article
}

func classification(parent, subtopic, tag string, score int) dto.TopicClassification {
	return dto.TopicClassification{
		ParentTopic:       parent,
		Subtopic:          subtopic,
		ArticleTag:        tag,
		Category:          "Regulatory",
		KeyEntity:         "",
		SMBRelevanceScore: score,
	}
}
