package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/config"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/telegram"
	"golang-legal-news-pipeline/pkg/utils"
)

// GeneratorService synthesizes topic groups into long-form markdown
// articles and records each run in the generation tracker.
type GeneratorService interface {
	GenerateForTopic(ctx context.Context, topicID uint, force bool) ([]entity.GeneratedArticle, error)
	GenerateForTopicIDs(ctx context.Context, topicIDs []uint, force bool) ([]entity.GeneratedArticle, error)
}

// NewGeneratorService creates a new GeneratorService.
func NewGeneratorService(
	cfg *config.Config,
	log *logger.Logger,
	topicRepo repository.TopicRepository,
	generationRepo repository.GenerationRepository,
	aiRepo repository.AIRepository,
	notifier telegram.Notifier,
) GeneratorService {
	return &generatorService{
		cfg:            cfg,
		logger:         log,
		topicRepo:      topicRepo,
		generationRepo: generationRepo,
		aiRepo:         aiRepo,
		notifier:       notifier,
	}
}

type generatorService struct {
	cfg            *config.Config
	logger         *logger.Logger
	topicRepo      repository.TopicRepository
	generationRepo repository.GenerationRepository
	aiRepo         repository.AIRepository
	notifier       telegram.Notifier
}

// GenerateForTopic synthesizes one subtopic, or, for a parent id, the
// union of all its subtopics.
func (s *generatorService) GenerateForTopic(ctx context.Context, topicID uint, force bool) ([]entity.GeneratedArticle, error) {
	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	group, err := s.topicRepo.TopicGroup(ctx, topicID)
	if err != nil {
		return nil, err
	}

	targetIDs := group.TopicIDs
	if !topic.IsParent {
		targetIDs = []uint{topicID}
	}
	return s.generate(ctx, topic.TopicName, targetIDs, group, force)
}

// GenerateForTopicIDs synthesizes an explicit set of subtopics into one
// combined article.
func (s *generatorService) GenerateForTopicIDs(ctx context.Context, topicIDs []uint, force bool) ([]entity.GeneratedArticle, error) {
	group, err := s.topicRepo.TopicGroupForIDs(ctx, topicIDs)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, id := range topicIDs {
		topic, err := s.topicRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		names = append(names, topic.TopicName)
	}
	return s.generate(ctx, strings.Join(names, " & "), topicIDs, group, force)
}

func (s *generatorService) generate(ctx context.Context, title string, topicIDs []uint, group *dto.TopicGroup, force bool) ([]entity.GeneratedArticle, error) {
	if len(group.Articles) == 0 {
		return nil, fmt.Errorf("%w: no articles linked to the requested topics", dto.ErrInvalidInput)
	}

	if !force {
		for _, id := range topicIDs {
			generated, err := s.generationRepo.IsGenerated(ctx, id)
			if err != nil {
				return nil, err
			}
			if generated {
				return nil, fmt.Errorf("%w: topic %d already generated, pass force to regenerate", dto.ErrInvalidInput, id)
			}
		}
	}

	s.logger.Info("Synthesizing topic group",
		logger.StringField("title", title),
		logger.IntField("articles", len(group.Articles)),
		logger.StringField("model", s.aiRepo.ModelID()),
	)

	synthesis, err := s.aiRepo.Synthesize(ctx, title, group.Articles)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	outputFile, err := s.writeArtifact(title, synthesis.Content, group.Articles)
	if err != nil {
		return nil, err
	}

	wordCount := utils.WordCount(synthesis.Content)
	sourceIDs := make([]int64, 0, len(group.Articles))
	for _, a := range group.Articles {
		sourceIDs = append(sourceIDs, int64(a.ID))
	}

	var records []entity.GeneratedArticle
	for _, id := range topicIDs {
		record := entity.GeneratedArticle{
			TopicID:            id,
			GeneratedDate:      time.Now(),
			OutputFile:         outputFile,
			ModelUsed:          s.aiRepo.ModelID(),
			SourceArticleCount: len(group.Articles),
			WordCount:          &wordCount,
			SourceArticleIDs:   sourceIDs,
		}
		if err := s.generationRepo.Create(ctx, &record); err != nil {
			return records, err
		}
		records = append(records, record)
	}

	notice := dto.GenerationNotice{
		TopicName:          title,
		OutputFile:         outputFile,
		ModelUsed:          s.aiRepo.ModelID(),
		SourceArticleCount: len(group.Articles),
		WordCount:          wordCount,
	}
	for _, msg := range telegram.FormatGenerationReport([]dto.GenerationNotice{notice}) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Warn("Failed to send notification", logger.ErrorField(err))
		}
	}

	return records, nil
}

// writeArtifact saves the synthesized markdown with a metadata header. The
// stored output location is opaque to the tracker.
func (s *generatorService) writeArtifact(title, content string, sources []entity.Article) (string, error) {
	outputDir := s.cfg.Generator.OutputDir
	if outputDir == "" {
		outputDir = "generated"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	var header strings.Builder
	header.WriteString("---\n")
	header.WriteString(fmt.Sprintf("topic: %s\n", title))
	header.WriteString(fmt.Sprintf("generated: %s\n", time.Now().Format(time.RFC3339)))
	header.WriteString(fmt.Sprintf("model: %s\n", s.aiRepo.ModelID()))
	header.WriteString(fmt.Sprintf("sources: %d\n", len(sources)))
	for _, a := range sources {
		header.WriteString(fmt.Sprintf("  - %s (%s)\n", a.Title, a.Source))
	}
	header.WriteString("---\n\n")

	filename := fmt.Sprintf("%s_%s.md", slugify(title), time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)
	if err := os.WriteFile(path, []byte(header.String()+content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		slug = "topic"
	}
	if len(slug) > 60 {
		slug = slug[:60]
	}
	return slug
}
