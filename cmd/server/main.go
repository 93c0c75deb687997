package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/internal/api"
	"github.com/hsnesn/staffrota/internal/config"
	"github.com/hsnesn/staffrota/pkg/clients/directory"
	"github.com/hsnesn/staffrota/pkg/clients/mailclient"
	"github.com/hsnesn/staffrota/pkg/db"
	"github.com/hsnesn/staffrota/pkg/notify"
	"github.com/hsnesn/staffrota/pkg/postgres"
	"github.com/hsnesn/staffrota/pkg/sqlite"
	"github.com/hsnesn/staffrota/pkg/utils/logging"
)

const defaultListenAddr = ":8080"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	logger, err := logging.InitLogger("server")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	notifier, err := buildNotifier(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build notifier: %w", err)
	}

	handler := &api.Handler{
		Database:       store,
		Dispatcher:     notify.NewDispatcher(notifier, logger),
		Logger:         logger,
		OverviewMonths: cfg.OverviewMonths,
	}

	addr := cfg.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("Listening", zap.String("addr", addr), zap.String("driver", cfg.Database.Driver))
	return server.ListenAndServe()
}

func openStore(ctx context.Context, cfg *config.Config) (db.Database, error) {
	switch cfg.Database.Driver {
	case "postgres":
		store, err := postgres.NewDB(ctx, cfg.Database.ConnString)
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil
	case "sqlite":
		return sqlite.New(cfg.Database.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func buildNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	if cfg.Notifier.Mode != "gmail" {
		return &notify.LogNotifier{Logger: logger}, nil
	}

	var cache directory.KV
	if cfg.Directory.RedisAddr != "" {
		cache = directory.NewRedisKV(redis.NewClient(&redis.Options{Addr: cfg.Directory.RedisAddr}))
	}
	ttl := time.Duration(cfg.Directory.CacheTTLMinutes) * time.Minute
	dir := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.APIToken, cache, ttl, logger)

	mail, err := mailclient.NewClient(ctx, mailclient.Credentials{
		ClientID:     cfg.Notifier.GmailClientID,
		ClientSecret: cfg.Notifier.GmailClientSecret,
		RefreshToken: cfg.Notifier.GmailRefreshToken,
	}, cfg.Notifier.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}

	return mailclient.NewNotifier(mail, dir), nil
}
