package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"golang-legal-news-pipeline/internal/pipeline/config"
	"golang-legal-news-pipeline/pkg/logger"
)

// SchedulerService runs the fetch and process phases on a cron schedule.
type SchedulerService interface {
	Start(ctx context.Context)
	RunOnce(ctx context.Context)
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(cfg *config.Config, log *logger.Logger, fetcherService FetcherService, processorService ProcessorService) SchedulerService {
	return &schedulerService{
		cfg:              cfg,
		logger:           log,
		fetcherService:   fetcherService,
		processorService: processorService,
		cronParser:       cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

type schedulerService struct {
	cfg              *config.Config
	logger           *logger.Logger
	fetcherService   FetcherService
	processorService ProcessorService
	cronParser       cron.Parser
}

// Start blocks until the context is cancelled, firing RunOnce at each
// scheduled time.
func (s *schedulerService) Start(ctx context.Context) {
	schedule, err := s.cronParser.Parse(s.cfg.Scheduler.FetchCron)
	if err != nil {
		s.logger.Error("Failed to parse cron expression", logger.ErrorField(err), logger.StringField("cron", s.cfg.Scheduler.FetchCron))
		return
	}

	s.logger.Info("Scheduler started", logger.StringField("cron", s.cfg.Scheduler.FetchCron))

	for {
		now := time.Now()
		next := schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scheduler service stopping")
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes one fetch pass followed by one processing pass.
func (s *schedulerService) RunOnce(ctx context.Context) {
	fetchResult, err := s.fetcherService.FetchAll(ctx)
	if err != nil {
		s.logger.Error("Scheduled fetch failed", logger.ErrorField(err))
		return
	}
	s.logger.Info("Scheduled fetch completed",
		logger.IntField("inserted", fetchResult.Inserted),
		logger.IntField("skipped", fetchResult.Skipped),
		logger.IntField("failed", fetchResult.Failed),
	)

	processResult, err := s.processorService.ProcessUnprocessed(ctx)
	if err != nil {
		s.logger.Error("Scheduled processing failed", logger.ErrorField(err))
		return
	}
	s.logger.Info("Scheduled processing completed",
		logger.IntField("articles_seen", processResult.ArticlesSeen),
		logger.IntField("succeeded", processResult.Succeeded),
		logger.IntField("failed", processResult.Failed),
		logger.IntField("topics_linked", processResult.TopicsLinked),
	)
}
