package repository

import (
	"context"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
)

// AIRepository is the boundary to the LLM providers: topic extraction for
// one article, and synthesis of one topic group into long-form output.
type AIRepository interface {
	ExtractTopics(ctx context.Context, article entity.Article, existing []dto.ParentWithSubtopics) (*dto.TopicExtractionResult, error)
	Synthesize(ctx context.Context, topicName string, articles []entity.Article) (*dto.SynthesisResult, error)
	ModelID() string
}
