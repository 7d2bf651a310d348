package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/config"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the
// Google Gemini API.
type geminiAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ModelID returns the configured Gemini model identifier.
func (r *geminiAIRepository) ModelID() string {
	return r.cfg.Gemini.Model
}

// ExtractTopics classifies one article into hierarchy triples using Gemini.
func (r *geminiAIRepository) ExtractTopics(ctx context.Context, article entity.Article, existing []dto.ParentWithSubtopics) (*dto.TopicExtractionResult, error) {
	prompt := BuildExtractTopicsPrompt(article, existing)

	raw, err := r.executeGeminiRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result dto.TopicExtractionResult
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &result); err != nil {
		r.logger.Error("Failed to parse extraction response", logger.ErrorField(err), logger.StringField("response", raw))
		// An unparsable response stays unparsable on retry; classify it as
		// bad input so the processor abandons the article.
		return nil, fmt.Errorf("%w: failed to parse extraction response: %v", dto.ErrInvalidInput, err)
	}
	return &result, nil
}

// Synthesize merges a topic group into one long-form article using Gemini.
func (r *geminiAIRepository) Synthesize(ctx context.Context, topicName string, articles []entity.Article) (*dto.SynthesisResult, error) {
	prompt := BuildSynthesizePrompt(topicName, articles)

	raw, err := r.executeGeminiRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, fmt.Errorf("synthesis returned empty content")
	}
	return &dto.SynthesisResult{Content: content}, nil
}

func (r *geminiAIRepository) executeGeminiRequest(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from Gemini API", logger.IntField("status_code", resp.StatusCode))
		return "", fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(body))
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// stripJSONFences removes a surrounding markdown code fence from a model
// response, if present.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
