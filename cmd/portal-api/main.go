package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campushub/portal-api/internal/handler"
	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/realtime"
	"github.com/campushub/portal-api/internal/repository"
	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/pkg/cache"
	"github.com/campushub/portal-api/pkg/config"
	"github.com/campushub/portal-api/pkg/database"
	"github.com/campushub/portal-api/pkg/logger"
	corsmiddleware "github.com/campushub/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/portal-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and realtime fan-out disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "portal-api",
	})
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, validate, logr)
	detectorSvc := service.NewDetectorService(scheduleRepo, sessionRepo, cfg.Detection, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, sessionRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(cfg.Dashboard, userRepo, courseRepo, sessionRepo, paymentRepo, cacheSvc, logr)

	hub := realtime.NewHub(cfg.Realtime, redisClient, logr)
	go hub.Run(ctx)
	defer hub.Close()

	messagingSvc := service.NewMessagingService(messageRepo, hub, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", handler.NewMetricsHandler(metricsSvc).Scrape)

	api := r.Group(cfg.APIPrefix)
	handler.Register(api, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, hub),
		Course:     handler.NewCourseHandler(courseSvc),
		Schedule:   handler.NewScheduleHandler(scheduleSvc),
		Session:    handler.NewSessionHandler(sessionSvc, detectorSvc, metricsSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc),
		Messaging:  handler.NewMessagingHandler(messagingSvc),
		Grade:      handler.NewGradeHandler(gradeSvc),
		Payment:    handler.NewPaymentHandler(paymentSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Realtime:   handler.NewRealtimeHandler(hub, cfg.Realtime.Enabled, logr),
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}
}
