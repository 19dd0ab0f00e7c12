// The sync worker mirrors the claims table into the local fallback file and
// the redis snapshot cache without serving HTTP. Run it alongside API
// instances that have polling disabled, or on standby hosts that need a warm
// fallback for the next startup.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/claimdesk/claimdesk/cmd/mainconfig"
	"github.com/claimdesk/claimdesk/internal/claims"
	appconfig "github.com/claimdesk/claimdesk/internal/config"
	"github.com/claimdesk/claimdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SyncPollInterval <= 0 {
		logger.Error("sync worker requires SYNC_POLL_INTERVAL")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	store := claims.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.ClaimsTable, logger.Named("dynamostore"))
	fallback := claims.NewFileStore(cfg.LocalStorePath)

	var cache *claims.SnapshotCache
	if rdb := mainconfig.NewRedisClient(cfg); rdb != nil {
		cache = claims.NewSnapshotCache(rdb)
	}

	onSnapshot := func(snapshot []claims.Claim) {
		if err := fallback.SaveAll(snapshot); err != nil {
			logger.Warn("failed to refresh local fallback", "error", err)
		}
		if cache != nil {
			if err := cache.Save(ctx, snapshot); err != nil {
				logger.Warn("failed to refresh snapshot cache", "error", err)
			}
		}
		logger.Info("claims snapshot mirrored", "count", len(snapshot))
	}

	watcher := claims.NewWatcher(store, cfg.SyncPollInterval, onSnapshot, nil, logger.Named("watcher"))
	go watcher.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("sync worker shutting down")
	cancel()
}
