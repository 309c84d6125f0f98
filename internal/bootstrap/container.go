package bootstrap

import (
	"context"
	"fmt"
	"log"

	"ai-digest-be/internal/config"
	"ai-digest-be/internal/controller"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/internal/repository/contract"
	"ai-digest-be/internal/repository/implementation"
	"ai-digest-be/internal/repository/memory"
	redisrepo "ai-digest-be/internal/repository/redis"
	"ai-digest-be/internal/service"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/completion"
	"ai-digest-be/pkg/content"
	"ai-digest-be/pkg/events"
	"ai-digest-be/pkg/llm/factory"
	"ai-digest-be/pkg/media"
	pktNats "ai-digest-be/pkg/nats"
	"ai-digest-be/pkg/pdf"
	"ai-digest-be/pkg/quiz"
	"ai-digest-be/pkg/transcription"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	JobTopic = "summary.jobs"
	jobTTL   = 0 // repository default
)

type Container struct {
	// Controllers
	HealthController  *controller.HealthController
	SummaryController controller.ISummaryController
	JobController     controller.IJobController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Completion *completion.Client
	Summarizer *pipeline.Summarizer
	Logger     logger.ILogger

	closers []func()
}

// NewContainer builds the dependency graph. db may be nil, in which case
// summaries are not archived.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	c := &Container{Logger: sysLogger}

	// 1. LLM + completion gateway
	llmProvider, err := factory.NewLLMProvider(ctx, cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	c.Completion = completion.NewClient(llmProvider, completion.ConfigFrom(cfg.Ai.LLMModel, cfg.Completion), sysLogger)
	c.Summarizer = pipeline.NewSummarizer(c.Completion, pipeline.SettingsFromConfig(cfg.Pipeline), sysLogger)

	// 2. Content collaborators
	mediaTools := media.New(media.Config{
		FFmpegPath:  cfg.Media.FFmpegPath,
		YtDlpPath:   cfg.Media.YtDlpPath,
		WorkDir:     cfg.Media.WorkDir,
		MaxFileSize: cfg.Media.MaxFileSize,
		Timeout:     cfg.Media.Timeout,
	})
	whisper := transcription.NewWhisperClient(transcription.Config{
		BaseURL:     cfg.Transcription.BaseURL,
		APIKey:      cfg.Transcription.APIKey,
		Model:       cfg.Transcription.Model,
		MaxFileSize: cfg.Transcription.MaxFileSize,
	})
	resolver := content.NewResolver(pdf.NewExtractor(cfg.Media.WorkDir, sysLogger), whisper, mediaTools, cfg.Media.WorkDir, cfg.Media.MaxFileSize, sysLogger)
	quizGenerator := quiz.NewGenerator(c.Completion, sysLogger)

	// 3. Storage
	var archive contract.SummaryRepository
	if db != nil {
		archive = implementation.NewSummaryRepository(db)
	} else {
		log.Printf("[WARN] No database configured, summaries will not be archived")
	}

	var jobs contract.JobRepository = memory.NewJobRepository(jobTTL)
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Jobs stay in memory", err)
			rdb.Close()
		} else {
			jobs = redisrepo.NewJobRepository(rdb, jobTTL)
			c.closers = append(c.closers, func() { rdb.Close() })
		}
	}

	// 4. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, func() { pubSub.Close() })

	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 5. Services
	summaryService := service.NewSummaryService(c.Summarizer, resolver, quizGenerator, c.Completion, archive, sysLogger)
	jobService := service.NewJobService(jobs, service.NewPublisherService(JobTopic, pubSub), sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, JobTopic, jobs, summaryService, eventPublisher, sysLogger)

	// 6. Controllers
	c.HealthController = controller.NewHealthController()
	c.SummaryController = controller.NewSummaryController(summaryService, cfg.Media.WorkDir)
	c.JobController = controller.NewJobController(jobService)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
