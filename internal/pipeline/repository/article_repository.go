package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository defines the interface for interacting with fetched articles.
type ArticleRepository interface {
	CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error)
	CreateBatch(ctx context.Context, articles []entity.Article) (int, int, error)
	FindByID(ctx context.Context, id uint) (*entity.Article, error)
	FindByURL(ctx context.Context, url string) (*entity.Article, error)
	GetUnprocessed(ctx context.Context, limit int) ([]entity.Article, error)
	MarkProcessed(ctx context.Context, id uint) error
	SaveRawExtraction(ctx context.Context, id uint, raw []byte) error
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
}

// CreateIgnoreConflict inserts an article, treating a duplicate URL as a
// no-op so the fetch collaborator can safely retry. Returns whether a row
// was actually inserted.
func (r *articleRepository) CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(article)
	if tx.Error != nil {
		return false, fmt.Errorf("failed to create article: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// CreateBatch inserts articles one by one, tolerating per-item duplicates.
// Returns (inserted, skipped).
func (r *articleRepository) CreateBatch(ctx context.Context, articles []entity.Article) (int, int, error) {
	inserted, skipped := 0, 0
	for i := range articles {
		created, err := r.CreateIgnoreConflict(ctx, &articles[i])
		if err != nil {
			return inserted, skipped, err
		}
		if created {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}

func (r *articleRepository) FindByID(ctx context.Context, id uint) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: article %d not found", dto.ErrInvalidInput, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	return &article, nil
}

func (r *articleRepository) FindByURL(ctx context.Context, url string) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).Where("url = ?", url).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by url: %w", err)
	}
	return &article, nil
}

// GetUnprocessed returns articles not yet run through topic extraction,
// oldest first. limit <= 0 means no limit.
func (r *articleRepository) GetUnprocessed(ctx context.Context, limit int) ([]entity.Article, error) {
	var articles []entity.Article
	q := r.db.WithContext(ctx).Where("processed = ?", false).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to get unprocessed articles: %w", err)
	}
	return articles, nil
}

// MarkProcessed flips the processed flag. Used when extraction is abandoned
// for an article; successful extraction flips it inside ResolveAndLink.
func (r *articleRepository) MarkProcessed(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx).Model(&entity.Article{}).Where("id = ?", id).Update("processed", true)
	if tx.Error != nil {
		return fmt.Errorf("failed to mark article processed: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: article %d not found", dto.ErrInvalidInput, id)
	}
	return nil
}

// SaveRawExtraction stores the classifier's raw response for audit.
func (r *articleRepository) SaveRawExtraction(ctx context.Context, id uint, raw []byte) error {
	err := r.db.WithContext(ctx).Model(&entity.Article{}).Where("id = ?", id).
		Update("raw_extraction", datatypes.JSON(raw)).Error
	if err != nil {
		return fmt.Errorf("failed to save raw extraction: %w", err)
	}
	return nil
}
