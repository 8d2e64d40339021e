package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "stayhub/api/swagger" // swagger docs
	"stayhub/internal/auth"
	"stayhub/internal/config"
	"stayhub/internal/database"
	"stayhub/internal/handler"
	"stayhub/internal/integration/beds24"
	"stayhub/internal/integration/resend"
	"stayhub/internal/integration/sms"
	"stayhub/internal/logger"
	"stayhub/internal/middleware"
	"stayhub/internal/queue"
	"stayhub/internal/repository"
	"stayhub/internal/service"
	"stayhub/internal/websocket"
)

// @title           Stayhub API
// @version         1.0
// @description     Multi-tenant property management: locations, rooms, reservations, finance and integrations.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load("configs/.env")

	cfg, err := config.Load(os.Getenv("STAYHUB_CONFIG"))
	if err != nil {
		boot := logger.New("", "info")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database.DSN(), logger.Component(log, "database"))
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to postgres")

	rdb := connectRedis(ctx, cfg.Redis, log)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger.Component(log, "websocket"))
	go wsHub.Run(ctx)

	var publisher service.EventPublisher
	var amqpPublisher *queue.Publisher
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher = queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.ReservationsKey, logger.Component(log, "publisher"))
		publisher = amqpPublisher
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, reservation events are not published")
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// Repositories
	txManager := repository.NewTransactionManager(db)
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	currencyRepo := repository.NewCurrencyRateRepository(db)
	formFieldRepo := repository.NewFormFieldRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)
	revenueRepo := repository.NewRevenueRepository(db)

	// Integrations
	resendClient := resend.NewClient(cfg.Resend.BaseURL, cfg.Resend.APIKey, cfg.Resend.From)
	smsClient := sms.NewClient(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.Sender, cfg.SMS.RateLimit)
	beds24Client := beds24.NewClient(cfg.Beds24.BaseURL, cfg.Beds24.Timeout)

	// Services
	notificationService := service.NewNotificationService(resendClient, cfg.App.PublicURL, logger.Component(log, "notifications"))
	permissionService := service.NewPermissionService(permissionRepo, userRepo, locationRepo, auditRepo, txManager, cfg.Auth.PermissionTTL)
	userService := service.NewUserService(userRepo, tenantRepo, permissionRepo, auditRepo, txManager, tokens,
		cfg.Auth.RefreshTokenTTL, notificationService, permissionService, logger.Component(log, "users"))
	locationService := service.NewLocationService(locationRepo, reservationRepo, auditRepo, txManager)
	roomService := service.NewRoomService(roomRepo, locationRepo, reservationRepo, auditRepo, txManager)
	availabilityService := service.NewAvailabilityService(reservationRepo, roomRepo, 0, logger.Component(log, "availability"))
	reservationService := service.NewReservationService(reservationRepo, roomRepo, auditRepo, txManager,
		publisher, wsHub, logger.Component(log, "reservations"))
	accountService := service.NewAccountService(accountRepo, auditRepo, txManager)
	incomeService := service.NewIncomeService(incomeRepo, accountRepo, reservationRepo, auditRepo, txManager)
	expenseService := service.NewExpenseService(expenseRepo, accountRepo, auditRepo, txManager)
	currencyService := service.NewCurrencyService(currencyRepo, cfg.App.BaseCurrency)
	statisticsService := service.NewStatisticsService(statisticsRepo, roomRepo)
	revenueService := service.NewRevenueService(revenueRepo)
	reportService := service.NewReportService(reservationService, incomeService, expenseService, revenueService)
	formFieldService := service.NewFormFieldService(formFieldRepo)
	auditService := service.NewAuditService(auditRepo)
	otpService := service.NewOTPService(rdb, smsClient, userService, service.OTPOptions{
		TTL:         cfg.OTP.TTL,
		Cooldown:    cfg.OTP.Cooldown,
		MaxAttempts: cfg.OTP.MaxAttempts,
	}, logger.Component(log, "otp"))
	channelService := service.NewChannelService(beds24Client, rdb, logger.Component(log, "beds24"))

	middleware.InitAuth(tokens, permissionService, cfg.IsProduction(), cfg.Auth.RefreshTokenTTL)

	if cfg.RabbitMQ.URL != "" && cfg.RabbitMQ.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.ReservationsKey, notificationService, logger.Component(log, "consumer"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("reservation event consumer stopped")
			}
		}()
	}

	limiter := middleware.RateLimit(cfg.RateLimit, rdb, logger.Component(log, "ratelimit"))

	// Set up Gin Router
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(logger.Component(log, "http")))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.App.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.LocationHeader, middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "OK", "redis": rdb != nil}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"] = "DEGRADED"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokens.Parse)
	})

	api := router.Group("/api")
	handler.NewAuthHandler(userService, permissionService, limiter).RegisterRoutes(api)
	handler.NewUserHandler(userService, permissionService).RegisterRoutes(api)
	handler.NewLocationHandler(locationService).RegisterRoutes(api)
	handler.NewRoomHandler(roomService).RegisterRoutes(api)
	handler.NewAvailabilityHandler(availabilityService).RegisterRoutes(api)
	handler.NewReservationHandler(reservationService).RegisterRoutes(api)
	handler.NewAccountHandler(accountService).RegisterRoutes(api)
	handler.NewIncomeHandler(incomeService).RegisterRoutes(api)
	handler.NewExpenseHandler(expenseService).RegisterRoutes(api)
	handler.NewCurrencyHandler(currencyService).RegisterRoutes(api)
	handler.NewStatisticsHandler(statisticsService, revenueService).RegisterRoutes(api)
	handler.NewReportHandler(reportService).RegisterRoutes(api)
	handler.NewFormFieldHandler(formFieldService).RegisterRoutes(api)
	handler.NewAuditHandler(auditService).RegisterRoutes(api)
	handler.NewFunctionsHandler(channelService, otpService, notificationService, cfg.App.FunctionsToken, limiter).
		RegisterRoutes(router.Group(""))

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.RequestTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if amqpPublisher != nil {
		_ = amqpPublisher.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// features that need it then report themselves unavailable.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, OTP, token cache and rate limiting are disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unreachable, continuing without it")
		_ = rdb.Close()
		return nil
	}
	log.Info().Str("addr", cfg.Addr).Msg("connected to redis")
	return rdb
}
