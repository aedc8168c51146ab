package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ormawa-api/api/swagger"
	"github.com/noah-isme/ormawa-api/internal/handler"
	"github.com/noah-isme/ormawa-api/internal/repository"
	"github.com/noah-isme/ormawa-api/internal/service"
	"github.com/noah-isme/ormawa-api/pkg/cache"
	"github.com/noah-isme/ormawa-api/pkg/config"
	"github.com/noah-isme/ormawa-api/pkg/database"
	"github.com/noah-isme/ormawa-api/pkg/jobs"
	"github.com/noah-isme/ormawa-api/pkg/logger"
	"github.com/noah-isme/ormawa-api/pkg/storage"
)

// @title Ormawa API
// @version 1.0.0
// @description Backend for student organisation programs, prokers, design requests and the public site CMS.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var (
		cacheRepo   service.CacheRepository
		redisClient *redis.Client
	)
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, page cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.PageTTL, logr, cfg.Cache.Enabled)
	revalidator := service.NewRevalidationService(cacheSvc, metricsSvc, logr)

	store, err := storage.NewLocalStorage(cfg.Storage.BaseDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	policy := service.UploadPolicy{MaxBytes: cfg.Storage.MaxFileSizeBytes, AllowedMIMEs: cfg.Storage.AllowedMIMEs}

	validate := validator.New()

	workItemRepo := repository.NewWorkItemRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	logRepo := repository.NewActivityLogRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	designRepo := repository.NewDesignRequestRepository(db)
	siteConfigRepo := repository.NewSiteConfigRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	brandKitRepo := repository.NewBrandKitRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)

	schema, err := service.DefaultConfigSchema()
	if err != nil {
		return fmt.Errorf("load cms defaults: %w", err)
	}

	identitySvc := service.NewIdentityService(cfg.JWT, logr)
	workItemSvc := service.NewWorkItemService(workItemRepo, taskRepo, logRepo, participantRepo, revalidator, metricsSvc, validate, logr,
		service.WorkItemConfig{EnforceVersionCheck: cfg.WorkItems.EnforceVersionCheck})
	activityLogSvc := service.NewActivityLogService(logRepo, workItemRepo, logr)
	taskSvc := service.NewTaskService(taskRepo, workItemRepo, logRepo, service.DefaultTaskLogPolicy(cfg.WorkItems.LogProgramTasks), revalidator, validate, logr)
	participantSvc := service.NewParticipantService(participantRepo, workItemRepo, revalidator, logr)
	designSvc := service.NewDesignRequestService(designRepo, store, policy, validate, logr)
	siteConfigSvc := service.NewSiteConfigService(siteConfigRepo, schema, cacheSvc, cfg.Cache.PageTTL, revalidator, validate, logr)
	mediaSvc := service.NewMediaService(mediaRepo, store, revalidator, metricsSvc, validate, logr,
		service.MediaOptions{Policy: policy, ThumbnailWidth: cfg.Media.ThumbnailWidth})
	brandKitSvc := service.NewBrandKitService(brandKitRepo, store, signer, "/files/download", policy, revalidator, validate, logr)
	campaignSvc := service.NewCampaignService(campaignRepo, workItemRepo, revalidator, validate, logr)

	reconciler := service.NewMediaReconciler(mediaRepo, store, metricsSvc, logr, cfg.Media.PendingTTL, cfg.Media.ReconcileInterval)
	pruneQueue := jobs.NewQueue("media-prune", reconciler.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Media.WorkerConcurrency,
		MaxRetries: cfg.Media.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	reconciler.Bind(pruneQueue)
	metricsSvc.TrackQueue("media-prune", pruneQueue.Stats)
	pruneQueue.Start(ctx)
	defer pruneQueue.Stop()
	reconciler.Start(ctx)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	r := newRouter(cfg, logr, routerDeps{
		identity:     identitySvc,
		metrics:      metricsSvc,
		workItems:    handler.NewWorkItemHandler(workItemSvc),
		tasks:        handler.NewTaskHandler(taskSvc),
		logs:         handler.NewActivityLogHandler(activityLogSvc),
		participants: handler.NewParticipantHandler(participantSvc),
		designs:      handler.NewDesignRequestHandler(designSvc, cfg.Storage.MaxFileSizeBytes),
		siteConfig:   handler.NewSiteConfigHandler(siteConfigSvc, int(cfg.Cache.PageTTL.Seconds())),
		media:        handler.NewMediaHandler(mediaSvc, cfg.Storage.MaxFileSizeBytes),
		brandKit:     handler.NewBrandKitHandler(brandKitSvc, cfg.Storage.MaxFileSizeBytes),
		campaigns:    handler.NewCampaignHandler(campaignSvc),
		files:        handler.NewFileHandler(signer, store, logr),
		ops:          handler.NewMetricsHandler(metricsSvc, checks),
		publicDirs: map[string]string{
			service.BucketMedia:  filepath.Join(store.Root(), service.BucketMedia),
			service.BucketDesign: filepath.Join(store.Root(), service.BucketDesign),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
