package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claimdesk/claimdesk/cmd/mainconfig"
	"github.com/claimdesk/claimdesk/internal/api/router"
	"github.com/claimdesk/claimdesk/internal/claims"
	appconfig "github.com/claimdesk/claimdesk/internal/config"
	"github.com/claimdesk/claimdesk/internal/export"
	"github.com/claimdesk/claimdesk/internal/http/handlers"
	"github.com/claimdesk/claimdesk/internal/observability/metrics"
	"github.com/claimdesk/claimdesk/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting claimdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	claimsMetrics := metrics.NewClaimsMetrics(reg)

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	store := claims.NewDynamoStore(dynamoClient, cfg.ClaimsTable, logger.Named("dynamostore"))
	fallback := claims.NewFileStore(cfg.LocalStorePath)

	repoOpts := []claims.RepositoryOption{
		claims.WithFallbackStore(fallback),
		claims.WithRecorder(claimsMetrics),
	}
	if rdb := mainconfig.NewRedisClient(cfg); rdb != nil {
		repoOpts = append(repoOpts, claims.WithSnapshotCache(claims.NewSnapshotCache(rdb)))
	}
	repo := claims.NewRepository(store, logger.Named("repository"), repoOpts...)

	if err := repo.Load(ctx); err != nil {
		logger.Error("failed to load claims collection", "error", err)
		os.Exit(1)
	}
	logger.Info("claims collection loaded", "count", repo.Count(), "degraded", repo.Degraded())

	watchCtx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	if cfg.SyncPollInterval > 0 {
		watcher := claims.NewWatcher(store, cfg.SyncPollInterval,
			repo.ReplaceAll,
			func(err error) { claimsMetrics.PersistenceFailure("watch") },
			logger.Named("watcher"),
		)
		go watcher.Run(watchCtx)
	}

	var sink *export.Sink
	if cfg.ExportBucket != "" {
		sink = export.NewSink(s3.NewFromConfig(awsCfg), cfg.ExportBucket, logger.Named("export"))
	}

	claimsHandler := handlers.NewClaimsHandler(repo, sink, claimsMetrics, logger.Named("http"))
	r := router.New(&router.Config{
		Logger:             logger,
		ClaimsHandler:      claimsHandler,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
