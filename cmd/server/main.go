package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/config"
	"github.com/mamadbah2/ganadero/internal/metrics"
	"github.com/mamadbah2/ganadero/internal/repository"
	"github.com/mamadbah2/ganadero/internal/repository/cache"
	"github.com/mamadbah2/ganadero/internal/repository/mongodb"
	"github.com/mamadbah2/ganadero/internal/repository/rest"
	"github.com/mamadbah2/ganadero/internal/repository/sheets"
	"github.com/mamadbah2/ganadero/internal/repository/sqlstore"
	"github.com/mamadbah2/ganadero/internal/scheduler"
	"github.com/mamadbah2/ganadero/internal/server/handlers"
	"github.com/mamadbah2/ganadero/internal/server/router"
	analyticssvc "github.com/mamadbah2/ganadero/internal/service/analytics"
	digestsvc "github.com/mamadbah2/ganadero/internal/service/digest"
	whatsappclient "github.com/mamadbah2/ganadero/pkg/clients/whatsapp"
	"github.com/mamadbah2/ganadero/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.New(registry)
	if err != nil {
		baseLogger.Fatal("failed to register metrics", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, closeGateway, err := openGateway(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init record store", zap.String("backend", string(cfg.Store.Backend)), zap.Error(err))
	}
	defer closeGateway()

	var source repository.Gateway = repository.NewInstrumented(gateway, cfg.Store.Timeout, recorder, baseLogger.Named("repo.instrumented"))
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, baseLogger.Named("cache.redis"))
		if err != nil {
			baseLogger.Warn("redis unavailable, reference cache disabled", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			source = cache.New(source, redisClient, cfg.Redis.TTL, baseLogger.Named("cache.records"))
		}
	}

	store := repository.NewStore(source, baseLogger.Named("repo.store"))
	analyticsSvc := analyticssvc.NewService(store, analyticssvc.Options{
		FeedLimit:    cfg.Analytics.FeedLimit,
		RecentWindow: cfg.Analytics.RecentWindow,
	}, recorder, baseLogger.Named("svc.analytics"))

	routes := router.Handlers{
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc, cfg.Analytics.StreamInterval, baseLogger.Named("handlers.analytics")),
	}

	if cfg.DigestEnabled() {
		loc, err := time.LoadLocation(cfg.Digest.Timezone)
		if err != nil {
			baseLogger.Fatal("invalid timezone", zap.Error(err))
		}
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp, baseLogger.Named("client.whatsapp"))
		digestSvc := digestsvc.NewService(analyticsSvc, whatsClient, cfg.Digest.Recipient, loc, baseLogger.Named("svc.digest"))
		routes.Digest = handlers.NewDigestHandler(digestSvc, baseLogger.Named("handlers.digest"))

		sched, err := scheduler.NewScheduler(cfg.Digest, digestSvc, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Warn("whatsapp credentials or digest recipient missing, digest disabled")
	}

	engine := router.New(cfg.Server.GinMode, routes, registry, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", string(cfg.Store.Backend)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openGateway connects the configured backend and returns its release func.
func openGateway(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Gateway, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	pool := sqlstore.PoolConfig{
		MaxOpenConns:    cfg.SQL.MaxOpenConns,
		MaxIdleConns:    cfg.SQL.MaxIdleConns,
		ConnMaxLifetime: cfg.SQL.ConnMaxLifetime,
	}

	switch cfg.Store.Backend {
	case config.BackendMongoDB:
		gw, err := mongodb.NewGateway(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, log.Named("repo.mongodb"))
		if err != nil {
			return nil, nil, err
		}
		return gw, func() {
			if err := gw.Close(context.Background()); err != nil {
				log.Error("failed to close mongodb connection", zap.Error(err))
			}
		}, nil
	case config.BackendPostgres:
		gw, err := sqlstore.Open(connectCtx, sqlstore.DialectPostgres, cfg.SQL.DatabaseURL, pool, log.Named("repo.postgres"))
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { _ = gw.Close() }, nil
	case config.BackendSQLite:
		gw, err := sqlstore.Open(connectCtx, sqlstore.DialectSQLite, cfg.SQL.SQLitePath, pool, log.Named("repo.sqlite"))
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { _ = gw.Close() }, nil
	case config.BackendREST:
		return rest.NewGateway(cfg.REST, log.Named("repo.rest")), func() {}, nil
	case config.BackendSheets:
		// The client keeps its context for token refreshes.
		reader, err := sheets.NewGoogleSheetReader(ctx, cfg.Sheets)
		if err != nil {
			return nil, nil, err
		}
		return sheets.NewGateway(reader, log.Named("repo.sheets")), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", cfg.Store.Backend)
	}
}
