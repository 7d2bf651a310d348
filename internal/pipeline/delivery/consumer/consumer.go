package consumer

import (
	"context"
	"sync"
	"time"

	"golang-legal-news-pipeline/internal/pipeline/service"
	"golang-legal-news-pipeline/pkg/common"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/redis"
	"golang-legal-news-pipeline/pkg/utils"
)

// RedisConsumer manages the consumption of generation jobs from a Redis stream.
type RedisConsumer struct {
	redisClient    *redis.Client
	queueService   service.GenerationQueueService
	logger         *logger.Logger
	handlerTimeout time.Duration
	stopChan       chan struct{}
	wg             sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	redisClient *redis.Client,
	queueService service.GenerationQueueService,
	log *logger.Logger,
	handlerTimeout time.Duration,
) *RedisConsumer {
	if handlerTimeout <= 0 {
		handlerTimeout = 5 * time.Minute
	}
	return &RedisConsumer{
		redisClient:    redisClient,
		queueService:   queueService,
		logger:         log,
		handlerTimeout: handlerTimeout,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the consumer's job processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.queueService.ProcessTask, common.RedisStreamTopicGeneration, c.handlerTimeout)
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
