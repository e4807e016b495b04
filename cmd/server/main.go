package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/gooddeeds/internal/bootstrap"
	"anoa.com/gooddeeds/internal/config"
	"anoa.com/gooddeeds/internal/search"
	"anoa.com/gooddeeds/internal/server"
	"anoa.com/gooddeeds/pkg/database"
	"anoa.com/gooddeeds/pkg/logger"
	"anoa.com/gooddeeds/pkg/storage"
	"anoa.com/gooddeeds/pkg/tracing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Init(cfg.AppEnv); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := logger.InitSentry(cfg.SentryDSN, cfg.AppEnv); err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer logger.FlushSentry(2 * time.Second)

	shutdownTracing, err := tracing.Init(context.Background(), server.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}
	if cfg.IsDevelopment() && cfg.SuperAdminPassword != "" {
		if err := bootstrap.SeedSuperAdmin(db, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
			logger.Fatal("failed to seed super admin", zap.Error(err))
		}
	}

	deps := server.Deps{DB: db}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		deps.Redis = redis.NewClient(opts)
		if err := deps.Redis.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, live feed and caches degrade", zap.Error(err))
		}
		defer deps.Redis.Close()
	} else {
		logger.Warn("REDIS_URL not set, running without redis")
	}

	if cfg.MeiliSearchHost != "" {
		meili := search.NewMeili(cfg.MeiliSearchHost, cfg.MeiliMasterKey)
		defer meili.Close()
		deps.Search = meili
	}

	if images, err := storage.NewCloudinaryStorage(cfg.Cloudinary); err != nil {
		logger.Warn("cloudinary disabled, picture uploads will fail", zap.Error(err))
	} else {
		deps.Images = images
	}

	srv := server.NewServer(cfg, deps)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server exited with error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("feed shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
}
