package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"career-coach/application/career"
	"career-coach/application/interview"
	"career-coach/config"
	"career-coach/domain"
	"career-coach/infrastructure"
	"career-coach/interfaces"
)

func main() {
	// Load .env
	_ = godotenv.Load()

	cfg := config.Load()
	logger := infrastructure.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := infrastructure.NewMetrics()

	// One completer per feature, each with its own key and models
	completers := map[string]domain.Completer{}
	for _, cc := range []config.CapabilityConfig{cfg.General, cfg.Resume, cfg.InterviewAI, cfg.Trends} {
		c, err := infrastructure.NewCompleter(ctx, cc, logger, metrics)
		if err != nil {
			logger.WithError(err).WithField("capability", cc.Name).Fatal("failed to create completer")
		}
		completers[cc.Name] = c
	}

	plan, err := config.LoadInterviewPlan(cfg.Interview.ConfigFile, domain.TotalSlots)
	if err != nil {
		logger.WithError(err).Fatal("failed to load interview plan")
	}

	// Optional MySQL: feedback rows and the interview archive
	var (
		feedback domain.FeedbackRepository
		archive  *infrastructure.InterviewArchive
	)
	if cfg.Storage.DSN != "" {
		db, err := infrastructure.NewMySQLConnection(cfg.Storage.DSN, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect database")
		}
		feedback = infrastructure.NewMySQLFeedbackRepository(db)
		archive = infrastructure.NewInterviewArchive(db, logger)
	} else {
		fileRepo, err := infrastructure.NewFileFeedbackRepository(cfg.Storage.FeedbackFile)
		if err != nil {
			logger.WithError(err).Fatal("failed to open feedback file")
		}
		feedback = fileRepo
	}

	// Optional RabbitMQ: summary events, archived by a worker when MySQL is on
	var publisher domain.SummaryPublisher = domain.NopPublisher{}
	if cfg.Storage.RabbitMQURL != "" {
		rmq, err := infrastructure.NewRabbitMQ(cfg.Storage.RabbitMQURL, cfg.Storage.SummaryQueue, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		defer rmq.Close()
		publisher = rmq

		if archive != nil {
			go func() {
				if err := rmq.ConsumeSummaries(ctx, archive.Store); err != nil && !errors.Is(err, context.Canceled) {
					logger.WithError(err).Error("summary consumer stopped")
				}
			}()
		}
	}

	store := infrastructure.NewMemorySessionStore(cfg.Interview.SessionCapacity, cfg.Interview.SessionIdleTTL, logger)

	interviewSvc := interview.NewService(interview.Options{
		Store:      store,
		Completer:  completers["interview"],
		Plan:       plan,
		Publisher:  publisher,
		Metrics:    metrics,
		Logger:     logger,
		EvictAfter: cfg.Interview.SummaryEvictAfter,
	})
	careerSvc := career.NewService(career.Options{
		General:   completers["general"],
		Resume:    completers["resume"],
		Trends:    completers["trends"],
		Planner:   completers["general"],
		Feedback:  feedback,
		Extractor: infrastructure.NewDocumentExtractor(logger),
		Metrics:   metrics,
		Logger:    logger,
	})

	// Setup Gin router
	router := interfaces.NewRouter(logger, cfg.Server.StaticDir)
	deps := interfaces.Dependencies{
		Interview:      interviewSvc,
		Career:         careerSvc,
		Metrics:        metrics,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         logger,
	}
	if archive != nil {
		deps.Archive = archive
	}
	interfaces.NewHTTPHandler(router, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{"port": cfg.Server.Port}).Info("server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server stopped")
	}
}
