package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskproof/api/handler"
	"github.com/fastygo/taskproof/internal/capture"
	"github.com/fastygo/taskproof/internal/config"
	"github.com/fastygo/taskproof/internal/infrastructure/buffer"
	"github.com/fastygo/taskproof/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskproof/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskproof/internal/infrastructure/redis"
	"github.com/fastygo/taskproof/internal/middleware"
	"github.com/fastygo/taskproof/internal/router"
	"github.com/fastygo/taskproof/internal/services"
	"github.com/fastygo/taskproof/internal/services/lifecycle"
	"github.com/fastygo/taskproof/pkg/httpcontext"
	"github.com/fastygo/taskproof/pkg/logger"
	"github.com/fastygo/taskproof/repository"
	"github.com/fastygo/taskproof/repository/memory"
	"github.com/fastygo/taskproof/repository/postgres"
	redisRepo "github.com/fastygo/taskproof/repository/redis"
	captureUC "github.com/fastygo/taskproof/usecase/capture"
	feedUC "github.com/fastygo/taskproof/usecase/feed"
	profileUC "github.com/fastygo/taskproof/usecase/profile"
	taskUC "github.com/fastygo/taskproof/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, cfg.AppName, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.RegisterFunc("postgres", pool.Close)

	var views repository.ViewRepository
	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		// viewed marks are cosmetic; keep serving without them
		zapLogger.Warn("redis unavailable, viewed marks kept in memory", zap.Error(err))
		views = memory.New()
	} else {
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		views = redisRepo.NewViewRepository(redisClient, cfg.Feed.ViewedTTL)
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "pending_writes", buffer.WithMaxSize(cfg.Buffer.MaxSize), buffer.WithLogger(zapLogger))
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(monitor.ProbesFor(pool, redisClient, bufferStore), cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.RegisterFunc("monitor", mon.Stop)

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		userRepo,
		taskRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	camera := capture.NewSimulated(capture.SimulatedConfig{
		Delay:   cfg.Capture.Delay,
		BaseURL: cfg.Capture.BaseURL,
	}, zapLogger)

	taskUseCase := taskUC.New(taskRepo, userRepo, bufferBridge, zapLogger)
	feedUseCase := feedUC.New(taskRepo, userRepo, views, zapLogger)
	profileUseCase := profileUC.New(userRepo, bufferBridge, zapLogger)
	captureUseCase := captureUC.New(camera, taskUseCase, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	progressOpts := apiHandler.ProgressOptions{Radius: cfg.Detail.Radius}

	handlers := router.Handlers{
		Feed:    apiHandler.NewFeedHandler(feedUseCase, progressOpts, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, feedUseCase, progressOpts, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Capture: apiHandler.NewCaptureHandler(captureUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	identity := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	if cfg.JWT.Secret == "" {
		zapLogger.Warn("JWT_SECRET not set, trusting X-User-ID header")
		identity = middleware.HeaderIdentity()
	}
	r := router.New(handlers, identity)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped listening", zap.Error(err))
			stop()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
