package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"

	"gorm.io/gorm"
)

// GenerationRepository tracks completed synthesis runs per subtopic.
// Records append; "already generated" is derived, never stored on the topic.
type GenerationRepository interface {
	Create(ctx context.Context, record *entity.GeneratedArticle) error
	FindByID(ctx context.Context, recordID uint) (*entity.GeneratedArticle, error)
	IsGenerated(ctx context.Context, topicID uint) (bool, error)
	Latest(ctx context.Context, topicID uint) (*entity.GeneratedArticle, error)
	ListForTopic(ctx context.Context, topicID uint) ([]entity.GeneratedArticle, error)
	Delete(ctx context.Context, recordID uint) error
	GeneratedTopicIDs(ctx context.Context) ([]uint, error)
}

// NewGenerationRepository creates a new instance of GenerationRepository.
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

type generationRepository struct {
	db *gorm.DB
}

// Create appends a generation record. The referenced topic must exist and
// be a subtopic, and at least one source article must have been consumed.
// Repeated records for the same subtopic are allowed: regeneration is a
// supported workflow.
func (r *generationRepository) Create(ctx context.Context, record *entity.GeneratedArticle) error {
	if record.SourceArticleCount < 1 {
		return fmt.Errorf("%w: source article count must be at least 1", dto.ErrInvalidInput)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic entity.Topic
		err := tx.First(&topic, record.TopicID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: topic %d not found", dto.ErrInvalidInput, record.TopicID)
		}
		if err != nil {
			return fmt.Errorf("failed to find topic: %w", err)
		}
		if topic.IsParent {
			return fmt.Errorf("%w: generations attach to subtopics, not parent topics", dto.ErrInvalidInput)
		}

		if record.GeneratedDate.IsZero() {
			record.GeneratedDate = time.Now()
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create generation record: %w", err)
		}
		return nil
	})
}

func (r *generationRepository) FindByID(ctx context.Context, recordID uint) (*entity.GeneratedArticle, error) {
	var record entity.GeneratedArticle
	err := r.db.WithContext(ctx).First(&record, recordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: generation record %d not found", dto.ErrInvalidInput, recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find generation record: %w", err)
	}
	return &record, nil
}

// IsGenerated reports whether at least one generation record exists for the
// topic.
func (r *generationRepository) IsGenerated(ctx context.Context, topicID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.GeneratedArticle{}).
		Where("topic_id = ?", topicID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count generation records: %w", err)
	}
	return count > 0, nil
}

// Latest returns the most recent generation record for the topic, or nil
// when none exists.
func (r *generationRepository) Latest(ctx context.Context, topicID uint) (*entity.GeneratedArticle, error) {
	var record entity.GeneratedArticle
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("generated_date DESC, id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest generation: %w", err)
	}
	return &record, nil
}

func (r *generationRepository) ListForTopic(ctx context.Context, topicID uint) ([]entity.GeneratedArticle, error) {
	var records []entity.GeneratedArticle
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("generated_date DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list generation records: %w", err)
	}
	return records, nil
}

// Delete removes a single generation record, supporting the
// regenerate-from-scratch workflow.
func (r *generationRepository) Delete(ctx context.Context, recordID uint) error {
	tx := r.db.WithContext(ctx).Delete(&entity.GeneratedArticle{}, recordID)
	if tx.Error != nil {
		return fmt.Errorf("failed to delete generation record: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: generation record %d not found", dto.ErrInvalidInput, recordID)
	}
	return nil
}

// GeneratedTopicIDs returns the distinct subtopic ids that have at least
// one generation record.
func (r *generationRepository) GeneratedTopicIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.GeneratedArticle{}).
		Distinct("topic_id").
		Pluck("topic_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load generated topic ids: %w", err)
	}
	return ids, nil
}
