package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hireloop/hireloop/config"
	"github.com/hireloop/hireloop/internal/api/handlers"
	"github.com/hireloop/hireloop/internal/api/middleware"
	"github.com/hireloop/hireloop/internal/api/routes"
	"github.com/hireloop/hireloop/internal/cache"
	"github.com/hireloop/hireloop/internal/logger"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/calendar"
	"github.com/hireloop/hireloop/internal/providers/notify"
	"github.com/hireloop/hireloop/internal/queue"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/workers"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("Mongo index error: %v", err)
	}
	l.Info("MongoDB connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	if err := config.PostgresDB.AutoMigrate(
		&models.ClientOrg{},
		&models.ClientContact{},
		&models.Interviewer{},
		&models.Candidate{},
		&models.InterviewerAvailability{},
		&models.BookingRequest{},
		&models.Interview{},
		&models.InterviewFeedback{},
		&models.BillingRecord{},
		&models.RateCard{},
		&models.Engagement{},
		&models.EngagementTemplate{},
		&models.EngagementOperation{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tx := postgres.NewTxRunner(config.PostgresDB)
	enq := queue.NewRedisEnqueuer(config.RedisClient)
	rcache := cache.NewRedisCache(config.RedisClient)
	logRepo := mongorepo.NewNotificationLogRepo(config.MongoDatabase())

	var cal calendar.Provider
	if gc, err := calendar.NewGoogleCalendarFromEnv(ctx); err != nil {
		l.WithError(err).Warn("calendar disabled")
	} else {
		cal = gc
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	rates := services.NewRateCatalog(tx.Store().Rates, rcache, enq)
	availabilitySvc := services.NewAvailabilityService(tx, cal, l)
	bookingSvc := services.NewBookingService(tx, enq, l, baseURL)
	confirmSvc := services.NewConfirmationService(tx, rates, enq, cal, l)
	billingSvc := services.NewBillingService(tx, rates, enq, l)
	feedbackSvc := services.NewFeedbackService(tx, billingSvc, enq, l)
	candidateSvc := services.NewCandidateService(tx)
	interviewSvc := services.NewInterviewService(tx, enq, l)
	engagementSvc := services.NewEngagementService(tx, l)
	identity := services.NewIdentityService(tx)

	pool := &workers.NotificationWorkerPool{
		Redis:    config.RedisClient,
		Notifier: notify.NewSMTPSenderFromEnv(),
		Billing:  billingSvc,
		LogRepo:  logRepo,
		Logger:   l,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("notification workers: %v", err)
	}

	poller := &workers.EngagementPoller{
		Tx:       tx,
		Enqueuer: enq,
		Logger:   l,
	}
	go func() {
		if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
			l.WithError(err).Error("engagement poller stopped")
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Availability:    handlers.NewAvailabilityHandler(availabilitySvc, identity),
		Booking:         handlers.NewBookingHandler(bookingSvc, confirmSvc),
		Candidate:       handlers.NewCandidateHandler(candidateSvc),
		Interview:       handlers.NewInterviewHandler(interviewSvc, feedbackSvc),
		Billing:         handlers.NewBillingHandler(billingSvc),
		Engagement:      handlers.NewEngagementHandler(engagementSvc),
		NotificationLog: handlers.NewNotificationLogHandler(logRepo),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
