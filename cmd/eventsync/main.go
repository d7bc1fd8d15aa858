package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"eventsync/internal/auth"
	"eventsync/internal/client/itsukaralink"
	"eventsync/internal/config"
	cronrunner "eventsync/internal/cron"
	"eventsync/internal/db"
	"eventsync/internal/handler"
	"eventsync/internal/logger"
	"eventsync/internal/metrics"
	"eventsync/internal/paas"
	"eventsync/internal/repository"
	gormrepository "eventsync/internal/repository/gorm"
	memoryrepository "eventsync/internal/repository/memory"
	redisrepository "eventsync/internal/repository/redis"
	"eventsync/internal/service"

	_ "eventsync/docs"
)

func main() {
	cfgPath := os.Getenv("ES_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ES_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("store open failed", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	feedHTTP := &http.Client{Timeout: cfg.Feed.Timeout}
	feedClient := itsukaralink.NewClient(feedHTTP, itsukaralink.Options{
		FeedURL:   cfg.Feed.URL,
		CORSRelay: cfg.Feed.CORSRelay,
		UserAgent: cfg.Feed.UserAgent,
		Logger:    logger.Named("feed"),
	})
	syncService := &service.EventSyncService{
		Store:        store,
		Collection:   cfg.Store.Collection,
		MaxBatchSize: cfg.Store.MaxBatchSize,
		Logger:       logger.Named("sync"),
		Metrics:      recorder,
	}
	crawlService := &service.CrawlService{
		Fetcher:      feedClient,
		Sync:         syncService,
		States:       store,
		Logger:       logger.Named("crawl"),
		Metrics:      recorder,
		AbortOnNG:    cfg.Sync.AbortOnNG,
		SingleFlight: cfg.Sync.SingleFlight,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paasClient := initPaaSClient(logger)
	baseCtx := ctx
	if paasClient != nil {
		baseCtx = paas.WithClient(ctx, paasClient)
	}

	if cfg.App.RunOnce {
		result, err := crawlService.Run(baseCtx)
		if err != nil {
			logger.Error("crawl failed", zap.String("run_id", result.RunID), zap.Error(err))
			_ = logger.Sync()
			closeStore()
			os.Exit(1)
		}
		logger.Info("crawl done",
			zap.String("run_id", result.RunID),
			zap.String("status", result.Status),
			zap.Int("fetched", result.Fetched),
			zap.Int("written", result.Written),
		)
		return
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(cfg.Trigger.Header))
	engine.Use(auth.RequireBearer(cfg.API.RequireBearer))
	engine.Use(paas.InjectClientMiddleware(paasClient))
	engine.Use(paas.WriteAuditMiddleware(paasClient, logger))

	healthHandler := &handler.HealthHandler{Store: store}
	healthHandler.Register(engine)
	paas.RegisterDocs(engine)
	handler.RegisterMetrics(engine, registry)

	if cfg.Trigger.Enabled {
		guard := auth.NewSecretGuard(cfg.Trigger.Header, cfg.Trigger.Secret)
		if !guard.Enabled() {
			logger.Warn("crawl trigger has no secret configured; /crawl is open")
		}
		crawlHandler := &handler.CrawlHandler{
			Runner: crawlService,
			Guard:  guard,
			Logger: logger.Named("trigger"),
		}
		crawlHandler.Register(engine)
	}
	eventsHandler := &handler.EventsHandler{
		Store:      store,
		States:     store,
		Collection: cfg.Store.Collection,
		Logger:     logger,
	}
	eventsHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	var cronRunner *cronrunner.Runner
	if cfg.Cron.Enabled {
		loc, err := cronrunner.LoadLocation(cfg.Cron.TimeZone)
		if err != nil {
			logger.Fatal("cron time zone invalid", zap.Error(err))
		}
		cronRunner = cronrunner.New(logger, baseCtx, loc)
		entryID, err := cronRunner.Add(cfg.Cron.CrawlEvents, func(ctx context.Context) {
			result, err := crawlService.Run(ctx)
			if err != nil {
				if errors.Is(err, service.ErrCrawlInProgress) {
					return
				}
				logger.Warn("cron crawl failed", zap.String("run_id", result.RunID), zap.Error(err))
				paas.LogCrawl(ctx, paas.CrawlLog{
					RunID:   result.RunID,
					Trigger: paas.TriggerCron,
					Status:  result.Status,
					Fetched: result.Fetched,
					Err:     err,
				})
				return
			}
			paas.LogCrawl(ctx, paas.CrawlLog{
				RunID:   result.RunID,
				Trigger: paas.TriggerCron,
				Status:  result.Status,
				Fetched: result.Fetched,
				Written: result.Written,
				Skipped: result.Skipped,
			})
		})
		if err != nil {
			logger.Fatal("cron register crawl failed", zap.String("spec", cfg.Cron.CrawlEvents), zap.Error(err))
		}
		cronRunner.Start()
		logger.Info("cron crawl scheduled",
			zap.String("spec", cfg.Cron.CrawlEvents),
			zap.Time("next", cronRunner.Next(entryID)),
		)
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	if cronRunner != nil {
		cronRunner.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store.Backend)) {
	case "", "postgres":
		dbConn, err := db.Open(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			_ = db.Close(dbConn)
			return nil, nil, fmt.Errorf("auto-migrate: %w", err)
		}
		return gormrepository.New(dbConn.Gorm), func() { _ = db.Close(dbConn) }, nil
	case "redis":
		store := redisrepository.NewStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.KeyPrefix)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "memory":
		logger.Warn("memory store selected; documents are lost on restart")
		return memoryrepository.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func corsMiddleware(triggerHeader string) gin.HandlerFunc {
	allowHeaders := "Content-Type,Authorization"
	if h := strings.TrimSpace(triggerHeader); h != "" {
		allowHeaders += "," + h
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func initPaaSClient(logger *zap.Logger) *paas.Client {
	p := paas.NewFromEnv(
		os.Getenv("EASYWEB3_API_BASE"),
		os.Getenv("EASYWEB3_API_KEY"),
		os.Getenv("ES_PAAS_AGENT"),
	)
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Login(ctx); err != nil {
		if logger != nil {
			logger.Warn("paas login failed (logs disabled)", zap.Error(err))
		}
		return nil
	}
	if logger != nil {
		logger.Info("paas login ok")
	}
	return p
}
