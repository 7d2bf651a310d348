package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-legal-news-pipeline/internal/pipeline/config"
	"golang-legal-news-pipeline/internal/pipeline/delivery/consumer"
	delivery "golang-legal-news-pipeline/internal/pipeline/delivery/http"
	_ "golang-legal-news-pipeline/internal/pipeline/docs"
	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/internal/pipeline/service"
	"golang-legal-news-pipeline/pkg/common"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/postgres"
	"golang-legal-news-pipeline/pkg/redis"
	"golang-legal-news-pipeline/pkg/telegram"

	"google.golang.org/genai"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the pipeline service",
	Run:   runServe,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches articles from all enabled sources once and exits",
	Run:   runFetch,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extracts topics for unprocessed articles once and exits",
	Run:   runProcess,
}

var generateCmd = &cobra.Command{
	Use:   "generate [topic-id...]",
	Short: "Synthesizes articles for the given topic ids",
	Run:   runGenerate,
}

var forceGenerate bool

// app bundles everything the subcommands need.
type app struct {
	cfg            *config.Config
	logger         *logger.Logger
	db             *postgres.DB
	articleRepo    repository.ArticleRepository
	topicRepo      repository.TopicRepository
	generationRepo repository.GenerationRepository
	aiRepo         repository.AIRepository
	notifier       telegram.Notifier
	close          func()
}

func buildApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
		}
		repo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini AI repository: %w", err)
		}
		aiRepo = repo
	case "openrouter":
		aiRepo = repository.NewOpenRouterRepository(cfg, appLogger)
	default:
		return nil, fmt.Errorf("invalid AI provider specified in config: %s", cfg.AI.Provider)
	}

	var notifier telegram.Notifier = telegram.NoopNotifier{}
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
	}

	a := &app{
		cfg:            cfg,
		logger:         appLogger,
		db:             db,
		articleRepo:    repository.NewArticleRepository(db.DB),
		topicRepo:      repository.NewTopicRepository(db.DB),
		generationRepo: repository.NewGenerationRepository(db.DB),
		aiRepo:         aiRepo,
		notifier:       notifier,
	}
	a.close = func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			sqlDB.Close()
		}
		_ = appLogger.Sync()
	}
	return a, nil
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.close()

	a.logger.Info("Starting Pipeline Service", logger.Field("name", a.cfg.App.Name))

	redisCfg := redis.Config{
		Host:     a.cfg.Redis.Host,
		Port:     a.cfg.Redis.Port,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
		PoolSize: a.cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		a.logger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Create the consumer group if it doesn't exist
	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamTopicGeneration, common.RedisStreamGroup, "0").Err(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			a.logger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
	}

	// Initialize services
	fetcherSvc := service.NewFetcherService(a.cfg, a.logger, a.articleRepo)
	processorSvc := service.NewProcessorService(a.cfg, a.logger, a.articleRepo, a.topicRepo, a.aiRepo)
	generatorSvc := service.NewGeneratorService(a.cfg, a.logger, a.topicRepo, a.generationRepo, a.aiRepo, a.notifier)
	queueSvc := service.NewGenerationQueueService(a.logger, redisClient, generatorSvc, a.cfg.Redis.StreamMaxLen)

	// Start generation consumer
	redisConsumer := consumer.NewRedisConsumer(redisClient, queueSvc, a.logger, 10*time.Minute)
	redisConsumer.Start(ctx)
	defer redisConsumer.Stop()

	// Start scheduler
	if a.cfg.Scheduler.Enabled {
		schedulerSvc := service.NewSchedulerService(a.cfg, a.logger, fetcherSvc, processorSvc)
		go schedulerSvc.Start(ctx)
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	articleHandler := delivery.NewArticleHandler(a.articleRepo, fetcherSvc, processorSvc, a.logger)
	articlesGroup := apiV1.Group("/articles")
	articleHandler.RegisterRoutes(articlesGroup)

	topicHandler := delivery.NewTopicHandler(a.topicRepo, a.logger)
	topicsGroup := apiV1.Group("/topics")
	topicHandler.RegisterRoutes(topicsGroup)
	apiV1.GET("/stats", topicHandler.GetStats)

	generationHandler := delivery.NewGenerationHandler(a.generationRepo, queueSvc, a.logger)
	generationsGroup := apiV1.Group("/generations")
	generationHandler.RegisterRoutes(generationsGroup)

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.API.Port)
		a.logger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	a.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	a.logger.Info("Server exiting")
}

func runFetch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.close()

	fetcherSvc := service.NewFetcherService(a.cfg, a.logger, a.articleRepo)
	result, err := fetcherSvc.FetchAll(ctx)
	if err != nil {
		a.logger.Fatal("Fetch run failed", logger.ErrorField(err))
	}
	a.logger.Info("Fetch run completed",
		logger.IntField("sources_tried", result.SourcesTried),
		logger.IntField("inserted", result.Inserted),
		logger.IntField("skipped", result.Skipped),
		logger.IntField("failed", result.Failed),
	)
}

func runProcess(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.close()

	processorSvc := service.NewProcessorService(a.cfg, a.logger, a.articleRepo, a.topicRepo, a.aiRepo)
	result, err := processorSvc.ProcessUnprocessed(ctx)
	if err != nil {
		a.logger.Fatal("Process run failed", logger.ErrorField(err))
	}
	a.logger.Info("Process run completed",
		logger.IntField("articles_seen", result.ArticlesSeen),
		logger.IntField("succeeded", result.Succeeded),
		logger.IntField("failed", result.Failed),
		logger.IntField("topics_linked", result.TopicsLinked),
		logger.IntField("topic_conflicts", result.TopicConflicts),
	)
}

func runGenerate(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.close()

	generatorSvc := service.NewGeneratorService(a.cfg, a.logger, a.topicRepo, a.generationRepo, a.aiRepo, a.notifier)

	var topicIDs []uint
	for _, arg := range args {
		var id uint
		if _, err := fmt.Sscanf(arg, "%d", &id); err != nil {
			a.logger.Fatal("Invalid topic id", logger.StringField("arg", arg))
		}
		topicIDs = append(topicIDs, id)
	}

	if len(topicIDs) == 0 {
		// No explicit ids: generate every qualifying ungenerated subtopic.
		topics, err := a.topicRepo.UngeneratedSubtopics(ctx, a.cfg.Generator.MinScore, int64(a.cfg.Generator.MinArticles))
		if err != nil {
			a.logger.Fatal("Failed to find ungenerated subtopics", logger.ErrorField(err))
		}
		if len(topics) == 0 {
			a.logger.Info("No qualifying ungenerated subtopics")
			return
		}
		for _, topic := range topics {
			records, err := generatorSvc.GenerateForTopic(ctx, topic.ID, forceGenerate)
			if err != nil {
				a.logger.Error("Generation failed", logger.ErrorField(err), logger.Field("topic_id", topic.ID))
				continue
			}
			a.logger.Info("Generation completed", logger.Field("topic_id", topic.ID), logger.IntField("records", len(records)))
		}
		return
	}

	if len(topicIDs) == 1 {
		records, err := generatorSvc.GenerateForTopic(ctx, topicIDs[0], forceGenerate)
		if err != nil {
			a.logger.Fatal("Generation failed", logger.ErrorField(err))
		}
		a.logger.Info("Generation completed", logger.IntField("records", len(records)))
		return
	}

	records, err := generatorSvc.GenerateForTopicIDs(ctx, topicIDs, forceGenerate)
	if err != nil {
		a.logger.Fatal("Generation failed", logger.ErrorField(err))
	}
	a.logger.Info("Generation completed", logger.IntField("records", len(records)))
}

// @title Legal News Pipeline API
// @version 1.0
// @description Content pipeline for legal news: fetch, topic extraction, synthesis.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	generateCmd.Flags().BoolVar(&forceGenerate, "force", false, "Regenerate topics that already have a generation record")

	rootCmd.AddCommand(serveCmd, fetchCmd, processCmd, generateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
