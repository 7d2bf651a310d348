package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/config"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/utils"
)

// ProcessorService runs topic extraction over unprocessed articles and
// feeds the results through topic resolution.
type ProcessorService interface {
	ProcessUnprocessed(ctx context.Context) (*dto.ProcessResult, error)
	ProcessArticle(ctx context.Context, article entity.Article) (int, error)
}

// NewProcessorService creates a new ProcessorService.
func NewProcessorService(
	cfg *config.Config,
	log *logger.Logger,
	articleRepo repository.ArticleRepository,
	topicRepo repository.TopicRepository,
	aiRepo repository.AIRepository,
) ProcessorService {
	return &processorService{
		cfg:         cfg,
		logger:      log,
		articleRepo: articleRepo,
		topicRepo:   topicRepo,
		aiRepo:      aiRepo,
	}
}

type processorService struct {
	cfg         *config.Config
	logger      *logger.Logger
	articleRepo repository.ArticleRepository
	topicRepo   repository.TopicRepository
	aiRepo      repository.AIRepository
}

// ProcessUnprocessed classifies every unprocessed article. Articles are
// independent: a classification or resolution failure on one is logged and
// counted, and the batch continues. A storage failure aborts the batch,
// since nothing after it can succeed.
func (s *processorService) ProcessUnprocessed(ctx context.Context) (*dto.ProcessResult, error) {
	articles, err := s.articleRepo.GetUnprocessed(ctx, s.cfg.Processor.BatchSize)
	if err != nil {
		return nil, err
	}

	result := &dto.ProcessResult{ArticlesSeen: len(articles)}
	for _, article := range articles {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}

		linked, err := s.ProcessArticle(ctx, article)
		result.TopicsLinked += linked
		if err == nil {
			result.Succeeded++
			continue
		}

		if errors.Is(err, dto.ErrTopicConflict) {
			result.TopicConflicts++
		}
		if errors.Is(err, dto.ErrInvalidInput) || errors.Is(err, dto.ErrTopicConflict) {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("article %d: %v", article.ID, err))
			s.logger.Error("Failed to process article, continuing batch",
				logger.ErrorField(err), logger.Field("article_id", article.ID))
			// Abandon the article so it is not retried forever; the
			// conflict stays visible in the run report.
			if markErr := s.articleRepo.MarkProcessed(ctx, article.ID); markErr != nil {
				s.logger.Warn("Failed to mark abandoned article processed", logger.ErrorField(markErr))
			}
			continue
		}

		// Storage or provider trouble is transient: abort the batch and
		// leave the remaining articles unprocessed for the next run.
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("article %d: %v", article.ID, err))
		return result, err
	}
	return result, nil
}

// ProcessArticle classifies one article and links every returned triple.
// Returns the number of links created or refreshed. An article yielding no
// topics is marked processed anyway so it is not retried forever.
func (s *processorService) ProcessArticle(ctx context.Context, article entity.Article) (int, error) {
	existing, err := s.topicRepo.ParentsWithSubtopics(ctx)
	if err != nil {
		return 0, err
	}

	// The AI repositories tag unparsable responses as ErrInvalidInput;
	// transport and provider failures pass through untagged so the article
	// stays unprocessed and is retried on a later run.
	extraction, err := s.aiRepo.ExtractTopics(ctx, article, existing)
	if err != nil {
		return 0, fmt.Errorf("extraction failed: %w", err)
	}

	if raw, err := json.Marshal(extraction); err == nil {
		if err := s.articleRepo.SaveRawExtraction(ctx, article.ID, raw); err != nil {
			s.logger.Warn("Failed to save raw extraction", logger.ErrorField(err), logger.Field("article_id", article.ID))
		}
	}

	if len(extraction.Topics) == 0 {
		s.logger.Info("No topics extracted, marking article processed",
			logger.Field("article_id", article.ID))
		return 0, s.articleRepo.MarkProcessed(ctx, article.ID)
	}

	linked := 0
	var firstErr error
	for _, classification := range extraction.Topics {
		parentID, subtopicID, err := s.topicRepo.ResolveAndLink(ctx, article.ID, classification)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Error("Failed to resolve topic for article",
				logger.ErrorField(err),
				logger.Field("article_id", article.ID),
				logger.StringField("parent", classification.ParentTopic),
				logger.StringField("subtopic", classification.Subtopic),
			)
			continue
		}
		linked++
		s.logger.Debug("Linked article to topic",
			logger.Field("article_id", article.ID),
			logger.Field("parent_id", parentID),
			logger.Field("subtopic_id", subtopicID),
		)
	}

	if linked == 0 && firstErr != nil {
		return 0, firstErr
	}
	return linked, nil
}
