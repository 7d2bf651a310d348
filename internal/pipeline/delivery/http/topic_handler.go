package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/pkg/logger"
)

// TopicHandler handles HTTP requests for the topic hierarchy and reports.
type TopicHandler struct {
	topicRepo repository.TopicRepository
	logger    *logger.Logger
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(topicRepo repository.TopicRepository, log *logger.Logger) *TopicHandler {
	return &TopicHandler{topicRepo: topicRepo, logger: log}
}

// RegisterRoutes registers the topic routes to the Echo group.
func (h *TopicHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/tree", h.GetTree)
	g.GET("/filter", h.FilterSubtopics)
	g.GET("/ungenerated", h.GetUngenerated)
	g.GET("/:id/articles", h.GetArticles)
	g.GET("/:id/subtopic-names", h.GetSubtopicNames)
	g.DELETE("/:id", h.DeleteTopic)
}

// GetTree godoc
// @Summary Get the full topic hierarchy
// @Description Parents with nested subtopics, article counts and generated flags
// @Tags topics
// @Produce  json
// @Success 200 {array} dto.ParentNode
// @Failure 500 {object} dto.ErrorResponse
// @Router /topics/tree [get]
func (h *TopicHandler) GetTree(c echo.Context) error {
	tree, err := h.topicRepo.HierarchyTree(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to load topic tree", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, tree)
}

// FilterSubtopics godoc
// @Summary Filter subtopics by relevance score and article count
// @Tags topics
// @Produce  json
// @Param   min_score     query   int false   "Minimum relevance score"
// @Param   min_articles  query   int false   "Minimum linked article count"
// @Success 200 {array} entity.Topic
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /topics/filter [get]
func (h *TopicHandler) FilterSubtopics(c echo.Context) error {
	minScore, minArticles, err := thresholdParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	topics, err := h.topicRepo.FilterSubtopics(c.Request().Context(), minScore, minArticles)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, topics)
}

// GetUngenerated godoc
// @Summary List qualifying subtopics with no generation record
// @Tags topics
// @Produce  json
// @Param   min_score     query   int false   "Minimum relevance score"
// @Param   min_articles  query   int false   "Minimum linked article count"
// @Success 200 {array} entity.Topic
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /topics/ungenerated [get]
func (h *TopicHandler) GetUngenerated(c echo.Context) error {
	minScore, minArticles, err := thresholdParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	topics, err := h.topicRepo.UngeneratedSubtopics(c.Request().Context(), minScore, minArticles)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, topics)
}

// GetArticles godoc
// @Summary List articles linked to a topic
// @Tags topics
// @Produce  json
// @Param   id  path    int true    "Topic ID"
// @Success 200 {array} entity.Article
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /topics/{id}/articles [get]
func (h *TopicHandler) GetArticles(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid topic ID"})
	}

	articles, err := h.topicRepo.ArticlesForTopic(c.Request().Context(), uint(id))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, articles)
}

// GetSubtopicNames godoc
// @Summary List subtopic names under a parent topic
// @Tags topics
// @Produce  json
// @Param   id  path    int true    "Parent topic ID"
// @Success 200 {array} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /topics/{id}/subtopic-names [get]
func (h *TopicHandler) GetSubtopicNames(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid topic ID"})
	}

	names, err := h.topicRepo.SubtopicNames(c.Request().Context(), uint(id))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, names)
}

// DeleteTopic godoc
// @Summary Delete a topic and everything hanging off it
// @Description Removes links, generation records and, for a parent, its subtopics
// @Tags topics
// @Produce  json
// @Param   id  path    int true    "Topic ID"
// @Success 204 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /topics/{id} [delete]
func (h *TopicHandler) DeleteTopic(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid topic ID"})
	}

	if err := h.topicRepo.DeleteTopic(c.Request().Context(), uint(id)); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetStats godoc
// @Summary Pipeline-wide counts
// @Tags stats
// @Produce  json
// @Success 200 {object} dto.Stats
// @Failure 500 {object} dto.ErrorResponse
// @Router /stats [get]
func (h *TopicHandler) GetStats(c echo.Context) error {
	stats, err := h.topicRepo.GetStats(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to load stats", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func thresholdParams(c echo.Context) (int, int64, error) {
	minScore := 0
	var minArticles int64

	if v := c.QueryParam("min_score"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, err
		}
		minScore = parsed
	}
	if v := c.QueryParam("min_articles"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		minArticles = parsed
	}
	return minScore, minArticles, nil
}
