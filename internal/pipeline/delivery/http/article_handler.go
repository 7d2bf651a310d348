package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/internal/pipeline/service"
	"golang-legal-news-pipeline/pkg/logger"
)

// ArticleHandler handles HTTP requests for articles and pipeline runs.
type ArticleHandler struct {
	articleRepo      repository.ArticleRepository
	fetcherService   service.FetcherService
	processorService service.ProcessorService
	logger           *logger.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articleRepo repository.ArticleRepository, fetcherService service.FetcherService, processorService service.ProcessorService, log *logger.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleRepo:      articleRepo,
		fetcherService:   fetcherService,
		processorService: processorService,
		logger:           log,
	}
}

// RegisterRoutes registers the article routes to the Echo group.
func (h *ArticleHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateArticle)
	g.GET("/:id", h.GetArticleByID)
	g.POST("/fetch", h.Fetch)
	g.POST("/process", h.Process)
}

// CreateArticle godoc
// @Summary Insert an article manually
// @Description Insert a single article; a duplicate URL is skipped, not an error
// @Tags articles
// @Accept  json
// @Produce  json
// @Param   article  body    dto.CreateArticleRequest   true    "Article to insert"
// @Success 201 {object} entity.Article
// @Success 200 {object} entity.Article
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles [post]
func (h *ArticleHandler) CreateArticle(c echo.Context) error {
	var req dto.CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	if req.URL == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url and title are required"})
	}

	article := entity.Article{
		URL:           req.URL,
		Title:         req.Title,
		Content:       req.Content,
		Summary:       req.Summary,
		Source:        req.Source,
		PublishedDate: req.PublishedDate,
		FetchedDate:   time.Now(),
	}

	created, err := h.articleRepo.CreateIgnoreConflict(c.Request().Context(), &article)
	if err != nil {
		h.logger.Error("Failed to create article", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	if !created {
		existing, err := h.articleRepo.FindByURL(c.Request().Context(), req.URL)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, existing)
	}
	return c.JSON(http.StatusCreated, article)
}

// GetArticleByID godoc
// @Summary Get an article by ID
// @Tags articles
// @Produce  json
// @Param   id  path    int true    "Article ID"
// @Success 200 {object} entity.Article
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles/{id} [get]
func (h *ArticleHandler) GetArticleByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid article ID"})
	}

	article, err := h.articleRepo.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

// Fetch godoc
// @Summary Fetch articles from all enabled sources
// @Tags articles
// @Produce  json
// @Success 200 {object} dto.FetchResult
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles/fetch [post]
func (h *ArticleHandler) Fetch(c echo.Context) error {
	result, err := h.fetcherService.FetchAll(c.Request().Context())
	if err != nil {
		h.logger.Error("Fetch run failed", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Process godoc
// @Summary Extract topics for unprocessed articles
// @Tags articles
// @Produce  json
// @Success 200 {object} dto.ProcessResult
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles/process [post]
func (h *ArticleHandler) Process(c echo.Context) error {
	result, err := h.processorService.ProcessUnprocessed(c.Request().Context())
	if err != nil {
		h.logger.Error("Process run failed", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
