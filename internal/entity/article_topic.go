package entity

import (
	"time"
)

// ArticleTopic links one article to one subtopic, with the free-text tag
// describing the article's specific angle. The composite primary key keeps
// re-extraction from ever duplicating a link.
type ArticleTopic struct {
	ArticleID   uint      `gorm:"primaryKey;autoIncrement:false" json:"article_id"`
	TopicID     uint      `gorm:"primaryKey;autoIncrement:false" json:"topic_id"`
	ArticleTag  string    `json:"article_tag"`
	CreatedDate time.Time `gorm:"not null" json:"created_date"`
}

// TableName specifies the table name for the ArticleTopic model.
func (ArticleTopic) TableName() string {
	return "article_topics"
}
