package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Article represents one fetched legal-news article. Articles are
// deduplicated by URL and immutable after insertion except for the
// processed flag, which flips once topic extraction has run.
type Article struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	URL           string         `gorm:"uniqueIndex;not null" json:"url"`
	Title         string         `gorm:"not null" json:"title"`
	Content       string         `gorm:"type:text" json:"content"`
	Summary       string         `gorm:"type:text" json:"summary"`
	Source        string         `gorm:"not null" json:"source"`
	PublishedDate string         `json:"published_date"` // source-supplied, may be empty or non-ISO
	FetchedDate   time.Time      `gorm:"not null" json:"fetched_date"`
	Processed     bool           `gorm:"not null;default:false;index" json:"processed"`
	RawExtraction datatypes.JSON `json:"raw_extraction,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Populated by join queries against article_topics, not stored on this table.
	ArticleTag string `gorm:"->;-:migration" json:"article_tag,omitempty"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}
