package http

import (
	"bytes"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/internal/pipeline/service"
	"golang-legal-news-pipeline/pkg/logger"
)

// GenerationHandler handles HTTP requests for generation jobs and records.
type GenerationHandler struct {
	generationRepo repository.GenerationRepository
	queueService   service.GenerationQueueService
	logger         *logger.Logger
	markdown       goldmark.Markdown
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationRepo repository.GenerationRepository, queueService service.GenerationQueueService, log *logger.Logger) *GenerationHandler {
	return &GenerationHandler{
		generationRepo: generationRepo,
		queueService:   queueService,
		logger:         log,
		markdown:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// RegisterRoutes registers the generation routes to the Echo group.
func (h *GenerationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Enqueue)
	g.GET("/topic/:id", h.ListForTopic)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/preview", h.Preview)
}

// Enqueue godoc
// @Summary Queue a generation job
// @Description Returns a job id immediately; synthesis runs on the consumer
// @Tags generations
// @Accept  json
// @Produce  json
// @Param   request  body    dto.GenerationRequest   true    "Topics to generate"
// @Success 202 {object} dto.EnqueueResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generations [post]
func (h *GenerationHandler) Enqueue(c echo.Context) error {
	var req dto.GenerationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	resp, err := h.queueService.Enqueue(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Failed to enqueue generation", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusAccepted, resp)
}

// ListForTopic godoc
// @Summary List generation records for a topic
// @Tags generations
// @Produce  json
// @Param   id  path    int true    "Topic ID"
// @Success 200 {array} entity.GeneratedArticle
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generations/topic/{id} [get]
func (h *GenerationHandler) ListForTopic(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid topic ID"})
	}

	records, err := h.generationRepo.ListForTopic(c.Request().Context(), uint(id))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

// Delete godoc
// @Summary Delete a generation record
// @Description Removing the record makes the topic eligible for generation again
// @Tags generations
// @Produce  json
// @Param   id  path    int true    "Generation record ID"
// @Success 204 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generations/{id} [delete]
func (h *GenerationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid generation record ID"})
	}

	if err := h.generationRepo.Delete(c.Request().Context(), uint(id)); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Preview godoc
// @Summary Render a generated article as HTML
// @Tags generations
// @Produce  html
// @Param   id  path    int true    "Generation record ID"
// @Success 200 {string} string "Rendered HTML"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generations/{id}/preview [get]
func (h *GenerationHandler) Preview(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid generation record ID"})
	}

	record, err := h.generationRepo.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		return errorJSON(c, err)
	}

	source, err := os.ReadFile(record.OutputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Output file no longer exists"})
		}
		h.logger.Error("Failed to read output file", logger.ErrorField(err), logger.StringField("file", record.OutputFile))
		return errorJSON(c, err)
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert(source, &buf); err != nil {
		h.logger.Error("Failed to render markdown", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.HTML(http.StatusOK, buf.String())
}
