package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/pkg/common"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/redis"
)

// GenerationQueueService accepts generation requests over a Redis stream so
// the HTTP layer never blocks on model calls.
type GenerationQueueService interface {
	Enqueue(ctx context.Context, req dto.GenerationRequest) (*dto.EnqueueResponse, error)
	ProcessTask(ctx context.Context)
}

// NewGenerationQueueService creates a new GenerationQueueService.
func NewGenerationQueueService(
	log *logger.Logger,
	redisClient *redis.Client,
	generatorService GeneratorService,
	streamMaxLen int64,
) GenerationQueueService {
	return &generationQueueService{
		logger:           log,
		redisClient:      redisClient,
		generatorService: generatorService,
		streamMaxLen:     streamMaxLen,
	}
}

type generationQueueService struct {
	logger           *logger.Logger
	redisClient      *redis.Client
	generatorService GeneratorService
	streamMaxLen     int64
}

// Enqueue publishes a generation job and returns its id immediately.
func (s *generationQueueService) Enqueue(ctx context.Context, req dto.GenerationRequest) (*dto.EnqueueResponse, error) {
	if len(req.TopicIDs) == 0 {
		return nil, fmt.Errorf("%w: topic_ids must not be empty", dto.ErrInvalidInput)
	}

	job := dto.GenerationJob{
		JobID:    uuid.NewString(),
		TopicIDs: req.TopicIDs,
		Model:    req.Model,
		Force:    req.Force,
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	if err := s.redisClient.XAdd(ctx, &goRedis.XAddArgs{
		Stream: common.RedisStreamTopicGeneration,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.streamMaxLen, // Limit the stream size
	}).Err(); err != nil {
		s.logger.Error("Failed to enqueue generation job", logger.ErrorField(err), logger.StringField("job_id", job.JobID))
		return nil, err
	}

	s.logger.Info("Generation job enqueued", logger.StringField("job_id", job.JobID), logger.Field("topic_ids", job.TopicIDs))
	return &dto.EnqueueResponse{JobID: job.JobID, Status: "queued"}, nil
}

// ProcessTask dequeues and executes a single generation job.
func (s *generationQueueService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &goRedis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamTopicGeneration, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Ignore context cancellation and timeout errors, as they are expected during shutdown or idle periods.
		if err == context.Canceled || err == goRedis.Nil {
			return
		}
		s.logger.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]

	// The job data is expected to be a JSON string in the 'payload' field.
	jobData, ok := message.Values["payload"].(string)
	if !ok {
		s.logger.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		s.ackNDel(ctx, message.ID)
		return
	}

	var job dto.GenerationJob
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		s.logger.Error("Failed to unmarshal generation job", logger.ErrorField(err), logger.Field("message_id", message.ID))
		// Acknowledge the message to prevent reprocessing of a malformed message.
		s.ackNDel(ctx, message.ID)
		return
	}

	s.logger.Info("Processing generation job", logger.StringField("job_id", job.JobID), logger.Field("topic_ids", job.TopicIDs))

	records, err := s.run(ctx, job)
	if err != nil {
		s.logger.Error("Generation job failed", logger.ErrorField(err), logger.StringField("job_id", job.JobID))
		s.ackNDel(ctx, message.ID)
		return
	}

	s.ackNDel(ctx, message.ID)
	s.logger.Info("Generation job processed successfully", logger.StringField("job_id", job.JobID), logger.IntField("records", len(records)))
}

func (s *generationQueueService) run(ctx context.Context, job dto.GenerationJob) ([]entity.GeneratedArticle, error) {
	if len(job.TopicIDs) == 1 {
		return s.generatorService.GenerateForTopic(ctx, job.TopicIDs[0], job.Force)
	}
	return s.generatorService.GenerateForTopicIDs(ctx, job.TopicIDs, job.Force)
}

func (s *generationQueueService) ackNDel(ctx context.Context, messageID string) {
	if err := s.redisClient.XAck(ctx, common.RedisStreamTopicGeneration, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.logger.Error("Failed to acknowledge generation job", logger.ErrorField(err), logger.Field("message_id", messageID))
		return
	}
	if err := s.redisClient.XDel(ctx, common.RedisStreamTopicGeneration, messageID).Err(); err != nil {
		s.logger.Error("Failed to delete generation job", logger.ErrorField(err), logger.Field("message_id", messageID))
	}
}
