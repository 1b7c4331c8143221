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

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"speed-review/api"
	"speed-review/config"
	"speed-review/providers"
	"speed-review/providers/mailjet"
	"speed-review/providers/unpaywall"
	"speed-review/services"
	"speed-review/storage"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := storage.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Database connection failed", zap.Error(err))
	}
	if err := storage.Migrate(db); err != nil {
		logging.Fatal("Database migration failed", zap.Error(err))
	}
	store := storage.NewGormStore(db)

	ctx := context.Background()

	// Cache: Redis wenn konfiguriert, sonst ohne Cache
	var cache storage.Cache = storage.NopCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := storage.NewRedisCache(ctx, cfg)
		if err != nil {
			logging.Warn("Redis not reachable, running without cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	// Mail-Provider
	var mailer providers.Mailer = &mailjet.LogMailer{Logger: logging}
	if cfg.MailjetEnabled() {
		mailer = mailjet.NewSender(cfg, logging)
	}
	logging.Info("Mail provider loaded", zap.String("provider", mailer.Name()))

	// Setup Services
	dispatcher := services.NewDispatcher(logging, cfg.NotifyTimeout)
	notifier := services.NewNotifier(store, mailer, dispatcher, cfg.PublicBaseURL, logging)

	review := services.NewReviewService(store, notifier, logging)
	review.Cache = cache
	review.CacheTTL = cfg.CacheTTL
	if cfg.UnpaywallEmail != "" {
		review.Resolver = unpaywall.NewFetcher(cfg, logging)
	}

	roles := services.NewRoleService(store, logging)
	if cfg.SeedRoles {
		if err := roles.SeedDefaults(ctx, services.DefaultRoles); err != nil {
			logging.Warn("Failed to seed default roles", zap.Error(err))
		}
	}

	router := api.NewRouter(cfg, api.Services{
		Review: review,
		Scores: services.NewScoreService(store, store, logging),
		Roles:  roles,
	}, logging)

	// Setup Cron
	cronScheduler := cron.New()
	digest := services.NewDigestService(store, notifier, logging)
	if _, err := cronScheduler.AddFunc(cfg.DigestCronSchedule, func() {
		logging.Info("Running scheduled review digest...")
		if err := digest.Run(context.Background()); err != nil {
			logging.Error("Digest job failed", zap.Error(err))
		}
	}); err != nil {
		logging.Fatal("Invalid DIGEST_CRON_SCHEDULE", zap.Error(err))
	}

	if cfg.S3Enabled() {
		bucket, err := storage.NewBucket(ctx, storage.S3OptionsFromConfig(cfg))
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		archive := services.NewArchiveService(store, bucket, cfg.ArchiveKeep, logging)
		if _, err := cronScheduler.AddFunc(cfg.ArchiveCronSchedule, func() {
			logging.Info("Running scheduled archive export...")
			link, err := archive.Export(context.Background())
			if err != nil {
				logging.Error("Archive job failed", zap.Error(err))
				return
			}
			logging.Info("Archive job completed", zap.String("link", link))
		}); err != nil {
			logging.Fatal("Invalid ARCHIVE_CRON_SCHEDULE", zap.Error(err))
		}
	} else {
		logging.Info("S3 not configured, archive export disabled")
	}
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logging.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server Shutdown", zap.Error(err))
	}
	<-cronScheduler.Stop().Done()
	// offene Benachrichtigungen noch zustellen
	dispatcher.Wait()
	logging.Info("Server exiting")
}
