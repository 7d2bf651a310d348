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
)

// openRouterRepository is an implementation of AIRepository that uses the
// OpenRouter chat-completions API, letting the synthesis model be any
// provider OpenRouter fronts.
type openRouterRepository struct {
	client *http.Client
	cfg    *config.Config
	logger *logger.Logger
}

// NewOpenRouterRepository creates a new instance of openRouterRepository.
func NewOpenRouterRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	return &openRouterRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:    cfg,
		logger: log,
	}
}

// ModelID returns the configured OpenRouter model identifier.
func (r *openRouterRepository) ModelID() string {
	return r.cfg.OpenRouter.Model
}

// ExtractTopics classifies one article into hierarchy triples via OpenRouter.
func (r *openRouterRepository) ExtractTopics(ctx context.Context, article entity.Article, existing []dto.ParentWithSubtopics) (*dto.TopicExtractionResult, error) {
	prompt := BuildExtractTopicsPrompt(article, existing)

	raw, err := r.executeChatRequest(ctx, prompt)
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

// Synthesize merges a topic group into one long-form article via OpenRouter.
func (r *openRouterRepository) Synthesize(ctx context.Context, topicName string, articles []entity.Article) (*dto.SynthesisResult, error) {
	prompt := BuildSynthesizePrompt(topicName, articles)

	raw, err := r.executeChatRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, fmt.Errorf("synthesis returned empty content")
	}
	return &dto.SynthesisResult{Content: content}, nil
}

func (r *openRouterRepository) executeChatRequest(ctx context.Context, prompt string) (string, error) {
	payload := dto.OpenRouterRequest{
		Model: r.cfg.OpenRouter.Model,
		Messages: []dto.OpenRouterMessage{
			{Role: "user", Content: prompt},
		},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/chat/completions", r.cfg.OpenRouter.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.OpenRouter.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from OpenRouter API", logger.IntField("status_code", resp.StatusCode))
		return "", fmt.Errorf("received non-OK response from OpenRouter API: %d - %s", resp.StatusCode, string(body))
	}

	var chatResp dto.OpenRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openrouter response contained no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}
