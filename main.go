package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dropship-hub/cache"
	"dropship-hub/config"
	"dropship-hub/controllers"
	db "dropship-hub/database"
	"dropship-hub/jobs"
	"dropship-hub/logger"
	middlewares "dropship-hub/middleware"
	"dropship-hub/payout"
	"dropship-hub/routes"
	"dropship-hub/services"
	"dropship-hub/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Must(config.LogConfig{Format: "console"}, "dropship-hub").Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.Log, cfg.App.Name)
	if err != nil {
		logger.Must(config.LogConfig{Format: "console"}, cfg.App.Name).Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if err := db.InitDB(cfg.Mongo, log); err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db.DisconnectDB(ctx, log)
	}()

	var (
		locker  services.Locker
		idem    services.IdempotencyStore
		content cache.ContentCache
	)
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = cache.NewRedisLocker(rdb)
		idem = cache.NewRedisIdempotencyStore(rdb, "")
		content = cache.NewRedisContentCache(rdb, cfg.Redis.CacheTTL)
		log.Info("using Redis for locks, idempotency and content cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		locker = cache.NewMemoryLocker()
		idem = cache.NewMemoryIdempotencyStore()
		content = cache.NewMemoryContentCache(cfg.Redis.CacheTTL)
		log.Warn("Redis disabled, locks and idempotency are process-local")
	}

	images, err := storage.New(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal("failed to open image store", zap.Error(err))
	}
	defer images.Close()

	payouter, err := payout.New(cfg.Payout, log)
	if err != nil {
		log.Fatal("failed to configure payouts", zap.Error(err))
	}

	store := services.NewMongoStore()
	controllers.Init(controllers.Deps{
		Config:    cfg,
		Images:    images,
		Content:   content,
		Withdraws: services.NewWithdrawService(store, locker, idem, payouter, log),
		Checkout:  services.NewCheckoutService(store, log),
		Packages:  services.NewPackageService(store, log),
	})

	if cfg.Jobs.Enabled {
		scheduler, err := jobs.New(cfg.Jobs, jobs.MongoStore{}, log)
		if err != nil {
			log.Fatal("failed to schedule jobs", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.Use(logger.Recovery(log))
	r.Use(logger.GinMiddleware(log))
	routes.SetupRoutes(r, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
