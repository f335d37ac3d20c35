// API server entry point for ChemFP-Engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appfp "github.com/turtacn/ChemFP-Engine/internal/application/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/config"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/search/milvus"
	httpserver "github.com/turtacn/ChemFP-Engine/internal/interfaces/http"
	"github.com/turtacn/ChemFP-Engine/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	fromFile := true
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: using environment configuration: %v\n", err)
		fromFile = false
		cfg, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: load configuration: %v\n", err)
			os.Exit(1)
		}
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	// Log level follows the config file while the server runs.
	if fromFile {
		config.Watch(*configPath, func(next *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
			}
			logger.Info("configuration reloaded", logging.String("log_level", next.Log.Level))
		})
	}

	logger.Info("starting ChemFP-Engine API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("build_date", buildDate),
		logging.Int("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", logging.Err(err))
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx := context.Background()

	collector := prometheus.NewNopCollector()
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            "chemfp",
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return fmt.Errorf("initialize metrics collector: %w", err)
		}
		collector = c
	}
	metrics := prometheus.NewAppMetrics(collector)

	var checkers []handlers.HealthChecker

	// The cache is an optimization: a Redis outage degrades to recomputation
	// rather than preventing startup.
	var cache *redis.FingerprintCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, running without fingerprint cache", logging.Err(err))
		} else {
			redisClient = rc
			cache = redis.NewFingerprintCache(rc, cfg.Redis, logger, metrics)
			checkers = append(checkers, handlers.CheckerFunc{
				CheckerName: "redis",
				Fn:          rc.Ping,
			})
		}
	}

	// The similarity index is required for index/search operations only;
	// when Milvus is down those endpoints return 503 and the rest serve.
	var index *milvus.FingerprintIndex
	var milvusClient *milvus.Client
	if cfg.Milvus.Enabled {
		mc, err := milvus.NewClient(ctx, cfg.Milvus, logger)
		if err != nil {
			logger.Warn("milvus unavailable, running without similarity index", logging.Err(err))
		} else {
			milvusClient = mc
			index = milvus.NewFingerprintIndex(mc, cfg.Milvus, logger, metrics)
			checkers = append(checkers, handlers.CheckerFunc{
				CheckerName: "milvus",
				Fn:          mc.Ping,
			})

			if err := index.EnsureCollection(ctx, chem.SchemeCircular,
				cfg.Engine.DefaultRadius, cfg.Engine.DefaultLength); err != nil {
				logger.Warn("ensure default collection failed", logging.Err(err))
			}
		}
	}

	svc := appfp.NewService(cfg.Engine, cache, index, logger, metrics)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		FingerprintHandler: handlers.NewFingerprintHandler(svc, logger),
		SimilarityHandler:  handlers.NewSimilarityHandler(svc, logger),
		HealthHandler:      handlers.NewHealthHandler(version, checkers...),
		Logger:             logger,
		Metrics:            metrics,
		Collector:          collector,
		Mode:               cfg.Server.Mode,
		MaxBodySize:        cfg.Server.MaxBodySize,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logging.String("addr", srv.Addr()))
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", logging.Err(err))
		}
	}
	if milvusClient != nil {
		if err := milvusClient.Close(); err != nil {
			logger.Error("milvus close error", logging.Err(err))
		}
	}

	logger.Info("server stopped")
	return nil
}
