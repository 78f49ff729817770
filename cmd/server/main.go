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

	catalogapp "github.com/groupbuy/backend/internal/application/catalog"
	chatapp "github.com/groupbuy/backend/internal/application/chat"
	eventapp "github.com/groupbuy/backend/internal/application/event"
	groupbuyapp "github.com/groupbuy/backend/internal/application/groupbuy"
	identityapp "github.com/groupbuy/backend/internal/application/identity"
	notificationapp "github.com/groupbuy/backend/internal/application/notification"
	"github.com/groupbuy/backend/internal/application/settlement"
	walletapp "github.com/groupbuy/backend/internal/application/wallet"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/auth"
	"github.com/groupbuy/backend/internal/infrastructure/cache"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"github.com/groupbuy/backend/internal/infrastructure/event"
	"github.com/groupbuy/backend/internal/infrastructure/logger"
	"github.com/groupbuy/backend/internal/infrastructure/persistence"
	"github.com/groupbuy/backend/internal/infrastructure/realtime"
	"github.com/groupbuy/backend/internal/infrastructure/scheduler"
	"github.com/groupbuy/backend/internal/infrastructure/storage"
	"github.com/groupbuy/backend/internal/infrastructure/telemetry"
	"github.com/groupbuy/backend/internal/interfaces/http/handler"
	"github.com/groupbuy/backend/internal/interfaces/http/middleware"
	"github.com/groupbuy/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/groupbuy/backend/docs"
)

//go:generate swag init --v3.1 -g cmd/server/main.go -d ../../ -o ../../docs

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Group Buy API
//	@version		1.0
//	@description	Campus group-buying backend: listings, wallet-funded participation, chat and notifications

//	@contact.name	API Support
//	@contact.url	https://github.com/groupbuy/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialize log exporter: %w", err)
	}
	logOpts := []logger.Option{logger.WithFields(zap.String("service", serviceName), zap.String("version", version))}
	if loggerProvider.IsEnabled() {
		logOpts = append(logOpts, logger.WithCore(loggerProvider.ZapCore(logger.ParseLevel(cfg.Log.Level))))
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logOpts...)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting group buy backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	profiler, err := telemetry.NewProfiler(cfg.Profiling, serviceName, log)
	if err != nil {
		return fmt.Errorf("initialize profiler: %w", err)
	}
	if cfg.Profiling.Enabled && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	metrics := telemetry.NewMetrics()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Database.SlowThreshold,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		return fmt.Errorf("register database tracing: %w", err)
	}
	log.Info("Database connected")

	// Redis is optional; every consumer has a process-local fallback.
	// Keep the interface nil when disabled so the fallbacks kick in.
	var redisClient redis.UniversalClient
	var pinger interface{ Ping(context.Context) *redis.StatusCmd }
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		redisClient, pinger = client, client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Object storage
	var imageStorage groupbuyapp.ImageStorage = storage.DisabledImageStorage{}
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ImageStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			return fmt.Errorf("initialize image storage: %w", err)
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Image bucket is not ready", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		imageStorage = s3Storage
	}

	// Repositories
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	locationRepo := persistence.NewGormPickupLocationRepository(db.DB)
	groupBuyRepo := persistence.NewGormGroupBuyRepository(db.DB)
	participantRepo := persistence.NewGormParticipantRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Events are written to the outbox inside the business transaction and
	// relayed to the in-process bus by the processor.
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	eventBus := event.NewInMemoryEventBus(log)
	var outboxProcessor *event.OutboxProcessor
	outboxPublisher := event.NewOutboxPublisher(serializer, func() {
		if outboxProcessor != nil {
			outboxProcessor.Notify()
		}
	})
	outboxProcessor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer,
		event.OutboxProcessorConfigFrom(cfg.Outbox), log).WithObserver(metrics)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	// Realtime
	hub := realtime.NewHub(realtime.NewBroker(redisClient, log), cfg.Realtime, log)
	hub.SetObserver(metrics)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)

	// Application services
	authService := identityapp.NewAuthService(profileRepo, jwtService, tokenBlacklist, log)
	profileService := identityapp.NewProfileService(profileRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, log)
	locationService := catalogapp.NewPickupLocationService(locationRepo, log)
	groupBuyService := groupbuyapp.NewGroupBuyService(
		groupBuyRepo, participantRepo, profileRepo, categoryRepo, locationRepo,
		txScope, cfg.GroupBuy, log,
	)
	groupBuyService.SetImageStorage(imageStorage)
	groupBuyService.SetJoinObserver(metrics)
	chatService := chatapp.NewChatService(messageRepo, groupBuyRepo, profileRepo, txScope, log)
	walletService := walletapp.NewWalletService(profileRepo, transactionRepo, txScope, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, hub, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	outboxService.OnRequeue(outboxProcessor.Notify)

	// Settlement
	executor := settlement.NewExecutor(txScope, log)
	jobScheduler := scheduler.NewScheduler(scheduler.SchedulerConfigFrom(cfg.Settlement), executor, log).
		WithObserver(metrics)
	executor.SetFollowUp(jobScheduler)
	cronTrigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
		Schedule:  cfg.Settlement.Schedule,
		BatchSize: cfg.Settlement.BatchSize,
	}, jobScheduler, groupBuyRepo, log)

	// Subscribers run at least once; the idempotency store drops redeliveries
	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)
	subscribers := event.WrapHandlersWithIdempotency([]shared.EventHandler{
		chatapp.NewLifecycleMessageHandler(chatService, log),
		chatapp.NewMessageBroadcastHandler(chatService, hub, log),
		notificationapp.NewLifecycleHandler(notificationService, participantRepo, log),
		notificationapp.NewChatMessageHandler(notificationService, groupBuyRepo, log),
		settlement.NewGroupBuyFullHandler(jobScheduler, log),
	}, idempotencyStore, cfg.Outbox.IdempotencyTTL, log)
	for _, h := range subscribers {
		eventBus.Subscribe(h)
	}

	// HTTP
	middleware.SetupValidator()
	var apiLimiter, authLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		apiLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, log)
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRPS, cfg.HTTP.AuthRateLimitBurst, log)
	}

	checks := []handler.HealthCheck{{Name: "database", Probe: db.Ping}}
	if pinger != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Probe: func(ctx context.Context) error {
			return pinger.Ping(ctx).Err()
		}})
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks...)

	engineOpts := router.EngineOptions{
		Logger:      log,
		Metrics:     metrics,
		ServiceName: serviceName,
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger,
		Tracing:     tracerProvider.IsEnabled(),
		Profiling:   cfg.Profiling.Enabled,
		RateLimiter: apiLimiter,
		Health:      systemHandler.Health,
	}
	engine := router.NewEngine(engineOpts)

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	}
	streamConfig := jwtConfig
	streamConfig.AllowQueryToken = true
	guards := router.Guards{
		User:   middleware.JWTAuth(jwtConfig),
		Stream: middleware.JWTAuth(streamConfig),
		Admin:  middleware.RequireAdmin(),
	}
	if authLimiter != nil {
		guards.AuthLimit = authLimiter.Middleware(middleware.KeyByIP)
	}
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Profile:      handler.NewProfileHandler(profileService),
		Catalog:      handler.NewCatalogHandler(categoryService, locationService),
		GroupBuy:     handler.NewGroupBuyHandler(groupBuyService),
		Chat:         handler.NewChatHandler(chatService, hub),
		Wallet:       handler.NewWalletHandler(walletService),
		Notification: handler.NewNotificationHandler(notificationService, hub),
		Outbox:       handler.NewOutboxHandler(outboxService),
		System:       systemHandler,
	}
	router.NewRouter(engine, router.WithAPIMiddleware(router.APIMiddleware(engineOpts)...)).
		Register(router.APIRoutes(handlers, guards)...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Background workers
	if cfg.Outbox.Enabled {
		if err := outboxProcessor.Start(ctx); err != nil {
			return fmt.Errorf("start outbox processor: %w", err)
		}
	}
	if err := jobScheduler.Start(ctx); err != nil {
		return fmt.Errorf("start settlement scheduler: %w", err)
	}
	if cfg.Settlement.Enabled {
		if err := cronTrigger.Start(ctx); err != nil {
			return fmt.Errorf("start settlement trigger: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hub.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("realtime hub: %w", err)
		}
		return nil
	})
	for _, limiter := range []*middleware.RateLimiter{apiLimiter, authLimiter} {
		if limiter == nil {
			continue
		}
		g.Go(func() error {
			limiter.Run(gctx, time.Minute)
			return nil
		})
	}
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	// Stop producers before consumers: the trigger feeds the scheduler and
	// the processor feeds the subscribers.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := cronTrigger.Stop(shutdownCtx); err != nil {
		log.Warn("Settlement trigger stop", zap.Error(err))
	}
	if err := jobScheduler.Stop(shutdownCtx); err != nil {
		log.Warn("Settlement scheduler stop", zap.Error(err))
	}
	if err := outboxProcessor.Stop(shutdownCtx); err != nil {
		log.Warn("Outbox processor stop", zap.Error(err))
	}
	_ = idempotencyStore.Close()
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer shutdown", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log exporter shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop", zap.Error(err))
	}

	if runErr != nil {
		log.Error("Server stopped with error", zap.Error(runErr))
		return runErr
	}
	log.Info("Server exited gracefully")
	return nil
}
