package entity

import (
	"time"

	"github.com/lib/pq"
)

// GeneratedArticle records one completed synthesis run for a subtopic.
// Repeated runs for the same subtopic append new rows; "already generated"
// is derived from the existence of at least one record.
type GeneratedArticle struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	TopicID            uint          `gorm:"not null;index" json:"topic_id"`
	GeneratedDate      time.Time     `gorm:"not null" json:"generated_date"`
	OutputFile         string        `gorm:"not null" json:"output_file"`
	ModelUsed          string        `gorm:"not null" json:"model_used"`
	SourceArticleCount int           `gorm:"not null" json:"source_article_count"`
	WordCount          *int          `json:"word_count,omitempty"`
	SourceArticleIDs   pq.Int64Array `gorm:"type:bigint[]" json:"source_article_ids,omitempty"`
	CreatedAt          time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the GeneratedArticle model.
func (GeneratedArticle) TableName() string {
	return "generated_articles"
}
