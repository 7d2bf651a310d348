package config

import (
	"golang-legal-news-pipeline/pkg/config"
)

// Source describes one news source to fetch from.
type Source struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Type     string `mapstructure:"type"` // "rss" or "scrape"
	Selector string `mapstructure:"selector"`
	Enabled  bool   `mapstructure:"enabled"`
}

// Fetcher holds fetch-phase configuration.
type Fetcher struct {
	Sources          []Source `mapstructure:"sources"`
	MaxConcurrent    int      `mapstructure:"max_concurrent"`
	DelaySeconds     int      `mapstructure:"delay_seconds"`
	FetchFullContent bool     `mapstructure:"fetch_full_content"`
	UserAgent        string   `mapstructure:"user_agent"`
}

// Processor holds topic-extraction configuration.
type Processor struct {
	BatchSize int `mapstructure:"batch_size"`
}

// Generator holds synthesis configuration.
type Generator struct {
	OutputDir    string `mapstructure:"output_dir"`
	DefaultModel string `mapstructure:"default_model"`
	MinScore     int    `mapstructure:"min_score"`
	MinArticles  int    `mapstructure:"min_articles"`
}

// Scheduler holds the cron schedule for automated fetch+process runs.
type Scheduler struct {
	Enabled   bool   `mapstructure:"enabled"`
	FetchCron string `mapstructure:"fetch_cron"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// OpenRouter holds the configuration for the OpenRouter API.
type OpenRouter struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Fetcher    Fetcher         `mapstructure:"fetcher"`
	Processor  Processor       `mapstructure:"processor"`
	Generator  Generator       `mapstructure:"generator"`
	Scheduler  Scheduler       `mapstructure:"scheduler"`
	AI         AI              `mapstructure:"ai"`
	Gemini     Gemini          `mapstructure:"gemini"`
	OpenRouter OpenRouter      `mapstructure:"openrouter"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
