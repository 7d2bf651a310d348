package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultRelevanceScore is used when the classifier supplies no usable
// score, and for parent topics, which are scored neutrally.
const DefaultRelevanceScore = 5

// TopicRepository owns the topic hierarchy: resolution of classified
// (parent, subtopic) pairs onto existing rows, and the read-only reporting
// queries consumed by the front ends.
type TopicRepository interface {
	ResolveAndLink(ctx context.Context, articleID uint, c dto.TopicClassification) (uint, uint, error)
	FindByID(ctx context.Context, id uint) (*entity.Topic, error)
	HierarchyTree(ctx context.Context) ([]dto.ParentNode, error)
	FilterSubtopics(ctx context.Context, minScore int, minArticles int64) ([]entity.Topic, error)
	UngeneratedSubtopics(ctx context.Context, minScore int, minArticles int64) ([]entity.Topic, error)
	ArticlesForTopic(ctx context.Context, topicID uint) ([]entity.Article, error)
	SubtopicNames(ctx context.Context, parentID uint) ([]string, error)
	ParentsWithSubtopics(ctx context.Context) ([]dto.ParentWithSubtopics, error)
	TopicGroup(ctx context.Context, topicID uint) (*dto.TopicGroup, error)
	TopicGroupForIDs(ctx context.Context, ids []uint) (*dto.TopicGroup, error)
	DeleteTopic(ctx context.Context, id uint) error
	GetStats(ctx context.Context) (*dto.Stats, error)
}

// NewTopicRepository creates a new instance of TopicRepository.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

type topicRepository struct {
	db *gorm.DB
}

// NormalizeTopicName produces the lookup key for topic-name matching: the
// name is trimmed, internal whitespace collapsed, and case-folded. The
// stored topic_name keeps its first-seen form; only the comparison is
// normalized, so "Employment Law" and "employment  law" resolve to one row
// while genuinely different names stay distinct.
func NormalizeTopicName(name string) string {
	return strings.ToLower(utils.CollapseWhitespace(name))
}

// ResolveAndLink maps one classification triple onto the hierarchy: it
// finds or creates the parent and the subtopic, upserts the article link,
// and marks the article processed, all in a single transaction.
//
// Relevance scores are first-write-wins: re-seeing an existing subtopic
// never changes its stored score. A uniqueness race on topic creation is
// retried once with a fresh transaction; the loser's re-lookup then finds
// the winner's row.
func (r *topicRepository) ResolveAndLink(ctx context.Context, articleID uint, c dto.TopicClassification) (uint, uint, error) {
	parentName := utils.CollapseWhitespace(c.ParentTopic)
	subtopicName := utils.CollapseWhitespace(c.Subtopic)
	if parentName == "" || subtopicName == "" {
		return 0, 0, fmt.Errorf("%w: parent and subtopic names must be non-empty", dto.ErrInvalidInput)
	}

	score := c.SMBRelevanceScore
	if score < 0 || score > 10 {
		score = DefaultRelevanceScore
	}

	var parentID, subtopicID uint
	attempt := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			parentID, subtopicID, err = r.resolveAndLinkTx(tx, articleID, parentName, subtopicName, c, score)
			return err
		})
	}

	err := attempt()
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a creation race; the row now exists, so the re-run's
		// lookups will find it.
		err = attempt()
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, 0, fmt.Errorf("%w: topic creation kept colliding: %v", dto.ErrStorageConflict, err)
		}
		return 0, 0, err
	}
	return parentID, subtopicID, nil
}

func (r *topicRepository) resolveAndLinkTx(tx *gorm.DB, articleID uint, parentName, subtopicName string, c dto.TopicClassification, score int) (uint, uint, error) {
	var count int64
	if err := tx.Model(&entity.Article{}).Where("id = ?", articleID).Count(&count).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to check article: %w", err)
	}
	if count == 0 {
		return 0, 0, fmt.Errorf("%w: article %d not found", dto.ErrInvalidInput, articleID)
	}

	parent, err := findTopicByNormalizedName(tx, NormalizeTopicName(parentName))
	if err != nil {
		return 0, 0, err
	}
	if parent != nil && !parent.IsParent {
		return 0, 0, fmt.Errorf("%w: %q already exists as a subtopic and cannot be used as a parent", dto.ErrTopicConflict, parent.TopicName)
	}
	if parent == nil {
		parent = &entity.Topic{
			TopicName:         parentName,
			NormalizedName:    NormalizeTopicName(parentName),
			Category:          c.Category,
			SMBRelevanceScore: DefaultRelevanceScore,
			IsParent:          true,
		}
		if err := tx.Create(parent).Error; err != nil {
			return 0, 0, err
		}
	}

	subtopic, err := findTopicByNormalizedName(tx, NormalizeTopicName(subtopicName))
	if err != nil {
		return 0, 0, err
	}
	if subtopic != nil {
		if subtopic.IsParent {
			return 0, 0, fmt.Errorf("%w: %q already exists as a parent topic", dto.ErrTopicConflict, subtopic.TopicName)
		}
		if subtopic.ParentTopicID == nil || *subtopic.ParentTopicID != parent.ID {
			return 0, 0, fmt.Errorf("%w: subtopic %q already belongs to a different parent", dto.ErrTopicConflict, subtopic.TopicName)
		}
	} else {
		subtopic = &entity.Topic{
			TopicName:         subtopicName,
			NormalizedName:    NormalizeTopicName(subtopicName),
			Category:          c.Category,
			KeyEntity:         c.KeyEntity,
			SMBRelevanceScore: score,
			ParentTopicID:     &parent.ID,
			IsParent:          false,
		}
		if err := tx.Create(subtopic).Error; err != nil {
			return 0, 0, err
		}
	}

	link := entity.ArticleTopic{
		ArticleID:   articleID,
		TopicID:     subtopic.ID,
		ArticleTag:  strings.TrimSpace(c.ArticleTag),
		CreatedDate: time.Now(),
	}
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "article_id"}, {Name: "topic_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"article_tag":  link.ArticleTag,
			"created_date": link.CreatedDate,
		}),
	}).Create(&link).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to upsert article link: %w", err)
	}

	if err := tx.Model(&entity.Article{}).Where("id = ?", articleID).Update("processed", true).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to mark article processed: %w", err)
	}

	return parent.ID, subtopic.ID, nil
}

func findTopicByNormalizedName(tx *gorm.DB, normalized string) (*entity.Topic, error) {
	var topic entity.Topic
	err := tx.Where("normalized_name = ?", normalized).First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up topic: %w", err)
	}
	return &topic, nil
}

func (r *topicRepository) FindByID(ctx context.Context, id uint) (*entity.Topic, error) {
	var topic entity.Topic
	err := r.db.WithContext(ctx).First(&topic, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: topic %d not found", dto.ErrInvalidInput, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}
	return &topic, nil
}

// HierarchyTree materializes every parent with its subtopics in insertion
// order, each subtopic annotated with its distinct article count and
// generated flag. Volumes are low thousands, so no pagination.
func (r *topicRepository) HierarchyTree(ctx context.Context) ([]dto.ParentNode, error) {
	var topics []entity.Topic
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}

	counts, err := r.articleCounts(ctx)
	if err != nil {
		return nil, err
	}
	generated, err := r.generatedSet(ctx)
	if err != nil {
		return nil, err
	}

	tree := []dto.ParentNode{}
	index := map[uint]int{}
	for _, t := range topics {
		if t.IsParent {
			index[t.ID] = len(tree)
			tree = append(tree, dto.ParentNode{
				ID:          t.ID,
				TopicName:   t.TopicName,
				Category:    t.Category,
				CreatedDate: t.CreatedDate,
				Subtopics:   []dto.SubtopicNode{},
			})
		}
	}
	for _, t := range topics {
		if t.IsParent || t.ParentTopicID == nil {
			continue
		}
		i, ok := index[*t.ParentTopicID]
		if !ok {
			continue
		}
		tree[i].Subtopics = append(tree[i].Subtopics, dto.SubtopicNode{
			ID:                t.ID,
			TopicName:         t.TopicName,
			Category:          t.Category,
			KeyEntity:         t.KeyEntity,
			SMBRelevanceScore: t.SMBRelevanceScore,
			ArticleCount:      counts[t.ID],
			Generated:         generated[t.ID],
		})
	}
	return tree, nil
}

// FilterSubtopics returns subtopics meeting both inclusive thresholds,
// sorted by article count descending with topic id ascending as tiebreak.
func (r *topicRepository) FilterSubtopics(ctx context.Context, minScore int, minArticles int64) ([]entity.Topic, error) {
	return r.filterSubtopics(ctx, minScore, minArticles, false)
}

// UngeneratedSubtopics is FilterSubtopics minus any subtopic that already
// has a generation record, as of the moment of the call.
func (r *topicRepository) UngeneratedSubtopics(ctx context.Context, minScore int, minArticles int64) ([]entity.Topic, error) {
	return r.filterSubtopics(ctx, minScore, minArticles, true)
}

func (r *topicRepository) filterSubtopics(ctx context.Context, minScore int, minArticles int64, excludeGenerated bool) ([]entity.Topic, error) {
	counts, err := r.articleCounts(ctx)
	if err != nil {
		return nil, err
	}
	generated, err := r.generatedSet(ctx)
	if err != nil {
		return nil, err
	}

	var subtopics []entity.Topic
	err = r.db.WithContext(ctx).
		Where("is_parent = ? AND smb_relevance_score >= ?", false, minScore).
		Find(&subtopics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subtopics: %w", err)
	}

	result := []entity.Topic{}
	for _, t := range subtopics {
		if counts[t.ID] < minArticles {
			continue
		}
		if excludeGenerated && generated[t.ID] {
			continue
		}
		t.ArticleCount = counts[t.ID]
		t.Generated = generated[t.ID]
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ArticleCount != result[j].ArticleCount {
			return result[i].ArticleCount > result[j].ArticleCount
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// ArticlesForTopic returns every article linked to the subtopic with its
// tag text, newest published first, id ascending when dates tie or are
// missing.
func (r *topicRepository) ArticlesForTopic(ctx context.Context, topicID uint) ([]entity.Article, error) {
	var articles []entity.Article
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.*, at.article_tag
		FROM articles a
		JOIN article_topics at ON at.article_id = a.id
		WHERE at.topic_id = ?
		ORDER BY a.published_date DESC, a.id ASC
	`, topicID).Scan(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load articles for topic: %w", err)
	}
	if articles == nil {
		articles = []entity.Article{}
	}
	return articles, nil
}

// SubtopicNames returns the subtopic names under a parent, in insertion
// order. Exposed so the classifier can be biased toward reusing names.
func (r *topicRepository) SubtopicNames(ctx context.Context, parentID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&entity.Topic{}).
		Where("is_parent = ? AND parent_topic_id = ?", false, parentID).
		Order("id ASC").
		Pluck("topic_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subtopic names: %w", err)
	}
	return names, nil
}

// ParentsWithSubtopics returns the whole hierarchy as name lists for the
// extraction prompt.
func (r *topicRepository) ParentsWithSubtopics(ctx context.Context) ([]dto.ParentWithSubtopics, error) {
	tree, err := r.HierarchyTree(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ParentWithSubtopics, 0, len(tree))
	for _, parent := range tree {
		names := make([]string, 0, len(parent.Subtopics))
		for _, sub := range parent.Subtopics {
			names = append(names, sub.TopicName)
		}
		result = append(result, dto.ParentWithSubtopics{ParentName: parent.TopicName, Subtopics: names})
	}
	return result, nil
}

// TopicGroup resolves one topic id to its article group. A parent id means
// "all of its subtopics".
func (r *topicRepository) TopicGroup(ctx context.Context, topicID uint) (*dto.TopicGroup, error) {
	topic, err := r.FindByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if !topic.IsParent {
		return r.topicGroup(ctx, []uint{topicID})
	}

	var subtopicIDs []uint
	err = r.db.WithContext(ctx).Model(&entity.Topic{}).
		Where("parent_topic_id = ?", topicID).
		Order("id ASC").
		Pluck("id", &subtopicIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subtopic ids: %w", err)
	}
	if len(subtopicIDs) == 0 {
		return &dto.TopicGroup{TopicIDs: []uint{}, Articles: []entity.Article{}}, nil
	}
	return r.topicGroup(ctx, subtopicIDs)
}

// TopicGroupForIDs resolves an explicit list of subtopic ids. Every id must
// reference an existing subtopic.
func (r *topicRepository) TopicGroupForIDs(ctx context.Context, ids []uint) (*dto.TopicGroup, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no topic ids given", dto.ErrInvalidInput)
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Topic{}).
		Where("id IN ? AND is_parent = ?", ids, false).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to validate topic ids: %w", err)
	}
	if count != int64(len(ids)) {
		return nil, fmt.Errorf("%w: one or more ids do not reference an existing subtopic", dto.ErrInvalidInput)
	}
	return r.topicGroup(ctx, ids)
}

func (r *topicRepository) topicGroup(ctx context.Context, ids []uint) (*dto.TopicGroup, error) {
	var articles []entity.Article
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT a.*
		FROM articles a
		JOIN article_topics at ON at.article_id = a.id
		WHERE at.topic_id IN ?
		ORDER BY a.published_date DESC, a.id ASC
	`, ids).Scan(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load topic group: %w", err)
	}
	if articles == nil {
		articles = []entity.Article{}
	}
	return &dto.TopicGroup{TopicIDs: ids, Articles: articles}, nil
}

// DeleteTopic is the administrative reset for one branch: the topic, its
// subtopics when it is a parent, and all dependent links and generation
// records go in one transaction. Articles are untouched.
func (r *topicRepository) DeleteTopic(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic entity.Topic
		err := tx.First(&topic, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: topic %d not found", dto.ErrInvalidInput, id)
		}
		if err != nil {
			return fmt.Errorf("failed to find topic: %w", err)
		}

		ids := []uint{id}
		if topic.IsParent {
			var childIDs []uint
			if err := tx.Model(&entity.Topic{}).Where("parent_topic_id = ?", id).Pluck("id", &childIDs).Error; err != nil {
				return fmt.Errorf("failed to load subtopic ids: %w", err)
			}
			ids = append(ids, childIDs...)
		}

		if err := tx.Where("topic_id IN ?", ids).Delete(&entity.ArticleTopic{}).Error; err != nil {
			return fmt.Errorf("failed to delete article links: %w", err)
		}
		if err := tx.Where("topic_id IN ?", ids).Delete(&entity.GeneratedArticle{}).Error; err != nil {
			return fmt.Errorf("failed to delete generation records: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&entity.Topic{}).Error; err != nil {
			return fmt.Errorf("failed to delete topics: %w", err)
		}
		return nil
	})
}

// GetStats returns store-wide totals for dashboards.
func (r *topicRepository) GetStats(ctx context.Context) (*dto.Stats, error) {
	var stats dto.Stats
	db := r.db.WithContext(ctx)

	if err := db.Model(&entity.Article{}).Count(&stats.TotalArticles).Error; err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	if err := db.Model(&entity.Article{}).Where("processed = ?", false).Count(&stats.UnprocessedArticles).Error; err != nil {
		return nil, fmt.Errorf("failed to count unprocessed articles: %w", err)
	}
	if err := db.Model(&entity.Topic{}).Count(&stats.TotalTopics).Error; err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}
	if err := db.Model(&entity.ArticleTopic{}).Count(&stats.TotalLinks).Error; err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}
	if err := db.Model(&entity.GeneratedArticle{}).Count(&stats.TotalGenerations).Error; err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}
	return &stats, nil
}

func (r *topicRepository) articleCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		TopicID      uint
		ArticleCount int64
	}
	err := r.db.WithContext(ctx).Model(&entity.ArticleTopic{}).
		Select("topic_id, COUNT(DISTINCT article_id) AS article_count").
		Group("topic_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count linked articles: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.TopicID] = row.ArticleCount
	}
	return counts, nil
}

func (r *topicRepository) generatedSet(ctx context.Context) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.GeneratedArticle{}).
		Distinct("topic_id").
		Pluck("topic_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load generated topic ids: %w", err)
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
