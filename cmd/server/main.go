package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/budokan/backend/api/handler"
	"github.com/budokan/backend/internal/config"
	"github.com/budokan/backend/internal/infrastructure/buffer"
	"github.com/budokan/backend/internal/infrastructure/monitor"
	pgInfra "github.com/budokan/backend/internal/infrastructure/postgres"
	redisInfra "github.com/budokan/backend/internal/infrastructure/redis"
	"github.com/budokan/backend/internal/infrastructure/upstream"
	"github.com/budokan/backend/internal/middleware"
	"github.com/budokan/backend/internal/router"
	"github.com/budokan/backend/internal/services"
	"github.com/budokan/backend/internal/services/lifecycle"
	"github.com/budokan/backend/pkg/httpcontext"
	"github.com/budokan/backend/pkg/logger"
	"github.com/budokan/backend/repository/postgres"
	redisRepo "github.com/budokan/backend/repository/redis"
	attendanceUC "github.com/budokan/backend/usecase/attendance"
	playbackUC "github.com/budokan/backend/usecase/playback"
	progressUC "github.com/budokan/backend/usecase/progress"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	upstreamClient := upstream.New(cfg.Upstream, zapLogger)

	mon := monitor.New(pool, redisClient, bufferStore, upstreamClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	progressRepo := postgres.NewProgressRepository(pool)
	attendanceRepo := postgres.NewAttendanceRepository(pool)
	presenceRepo := redisRepo.NewPresenceRepository(redisClient, cfg.Presence.TTL)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		progressRepo,
		attendanceRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	progressUseCase := progressUC.New(progressRepo, bufferBridge, zapLogger)
	attendanceUseCase := attendanceUC.New(attendanceRepo, presenceRepo, bufferBridge, zapLogger)
	playbackUseCase := playbackUC.New(
		upstreamClient,
		upstreamClient,
		upstreamClient,
		progressUseCase,
		attendanceUseCase,
		cfg.Upstream.RelatedLimit,
		zapLogger,
	)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Watch:      apiHandler.NewWatchHandler(playbackUseCase, ctxAdapter, zapLogger),
		Progress:   apiHandler.NewProgressHandler(progressUseCase, ctxAdapter, zapLogger),
		Attendance: apiHandler.NewAttendanceHandler(attendanceUseCase, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	requireViewer := middleware.RequireViewer(cfg.JWT.Secret, zapLogger)
	optionalViewer := middleware.OptionalViewer(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, requireViewer, optionalViewer)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
