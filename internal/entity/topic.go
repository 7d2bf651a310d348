package entity

import (
	"time"
)

// Topic is a node in the two-level topic tree. Parents have IsParent=true
// and a nil ParentTopicID; subtopics point at exactly one parent. TopicName
// keeps the first-seen casing while NormalizedName carries the global
// uniqueness constraint used for case-insensitive matching.
type Topic struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TopicName         string    `gorm:"not null" json:"topic_name"`
	NormalizedName    string    `gorm:"uniqueIndex;not null" json:"-"`
	Category          string    `json:"category,omitempty"`
	KeyEntity         string    `json:"key_entity,omitempty"`
	SMBRelevanceScore int       `gorm:"column:smb_relevance_score;not null;default:5" json:"smb_relevance_score"`
	ParentTopicID     *uint     `gorm:"index" json:"parent_topic_id,omitempty"`
	IsParent          bool      `gorm:"not null;default:false;index" json:"is_parent"`
	CreatedDate       time.Time `gorm:"autoCreateTime" json:"created_date"`

	// Fields populated by custom queries for reporting.
	ArticleCount int64 `gorm:"-" json:"article_count,omitempty"`
	Generated    bool  `gorm:"-" json:"generated,omitempty"`
}

// TableName specifies the table name for the Topic model.
func (Topic) TableName() string {
	return "topics"
}
