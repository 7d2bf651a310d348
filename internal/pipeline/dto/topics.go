package dto

import (
	"time"

	"golang-legal-news-pipeline/internal/entity"
)

// SubtopicNode is one subtopic in the hierarchy tree, annotated with the
// count of distinct linked articles and whether it has been generated.
type SubtopicNode struct {
	ID                uint   `json:"id"`
	TopicName         string `json:"topic_name"`
	Category          string `json:"category,omitempty"`
	KeyEntity         string `json:"key_entity,omitempty"`
	SMBRelevanceScore int    `json:"smb_relevance_score"`
	ArticleCount      int64  `json:"article_count"`
	Generated         bool   `json:"generated"`
}

// ParentNode is one parent topic with its subtopics in insertion order.
type ParentNode struct {
	ID          uint           `json:"id"`
	TopicName   string         `json:"topic_name"`
	Category    string         `json:"category,omitempty"`
	CreatedDate time.Time      `json:"created_date"`
	Subtopics   []SubtopicNode `json:"subtopics"`
}

// Stats summarizes the state of the store for dashboards.
type Stats struct {
	TotalArticles       int64 `json:"total_articles"`
	UnprocessedArticles int64 `json:"unprocessed_articles"`
	TotalTopics         int64 `json:"total_topics"`
	TotalLinks          int64 `json:"total_links"`
	TotalGenerations    int64 `json:"total_generations"`
}

// TopicGroup is the deduplicated set of articles behind one or more
// subtopics, handed to the synthesis step.
type TopicGroup struct {
	TopicIDs []uint           `json:"topic_ids"`
	Articles []entity.Article `json:"articles"`
}
