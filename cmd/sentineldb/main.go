package main

import (
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sentineldb/sentineldb/internal/bootstrap"
	"github.com/sentineldb/sentineldb/internal/config"
	"github.com/sentineldb/sentineldb/internal/logger"
	"github.com/sentineldb/sentineldb/internal/metrics"
	"github.com/sentineldb/sentineldb/internal/sentinel"
)

const (
	snapshotInterval = 5 * time.Minute
	version          = "0.1.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewFromConfig(cfg.Log.Level, cfg.Log.Format)
	logger.SetDefault(appLogger)
	metrics.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)

	appLogger.Info("Starting SentinelDB",
		logger.String("data_dir", cfg.Store.DataDir),
		logger.String("decision_policy", cfg.Policy.Default),
		logger.String("retention_mode", cfg.Retention.Mode),
		logger.String("wal_enabled", walEnabledLabel(cfg.WAL.Enabled)))

	policy, ok := sentinel.ParseDecisionPolicy(policyWALName(cfg.Policy.Default))
	if !ok {
		err := &sentinel.InvalidPolicyError{Name: cfg.Policy.Default}
		appLogger.Error("invalid decision policy in configuration", logger.Error(err))
		log.Fatalf("%v", err)
	}

	var opts []sentinel.Option
	if cfg.WAL.Enabled {
		opts = append(opts, sentinel.WithWAL(cfg.WALPath()))
	}

	engine, err := sentinel.NewEngine(appLogger, opts...)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	// Recovery (if any) may have restored an earlier decision policy; the
	// configured default only applies when nothing was recovered.
	recovered := cfg.WAL.Enabled &&
		(len(sentinel.ReadLines(cfg.WALPath(), appLogger)) > 0 ||
			len(sentinel.ReadLines(sentinel.SnapshotPath(cfg.WALPath()), appLogger)) > 0)
	if !recovered {
		engine.SetDecisionPolicy(policy)
	}

	engine.SetRetentionPolicy(retentionPolicyFromConfig(cfg))

	if err := bootstrap.LoadGuards(cfg.Bootstrap.GuardsFile, engine, appLogger); err != nil {
		log.Fatalf("Failed to bootstrap guards: %v", err)
	}

	stop := make(chan struct{})
	if cfg.WAL.Enabled {
		go runSnapshotLoop(engine, appLogger, stop)
	}

	appLogger.Info("SentinelDB ready", logger.Int("guards", len(engine.ListGuards())))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down SentinelDB...")
	close(stop)

	if cfg.WAL.Enabled {
		if err := engine.Snapshot(); err != nil {
			appLogger.Error("final snapshot failed", logger.Error(err))
		}
	}
	if err := engine.Close(); err != nil {
		appLogger.Error("error closing engine", logger.Error(err))
	}
	appLogger.Info("SentinelDB exited gracefully")
}

func runSnapshotLoop(engine *sentinel.Engine, log logger.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := engine.Snapshot(); err != nil {
				log.Error("periodic snapshot failed", logger.Error(err))
			}
		case <-stop:
			return
		}
	}
}

func retentionPolicyFromConfig(cfg *config.Config) sentinel.RetentionPolicy {
	switch cfg.Retention.Mode {
	case "last_n":
		return sentinel.LastN(cfg.Retention.Count)
	case "last_t":
		return sentinel.LastT(cfg.Retention.Seconds)
	default:
		return sentinel.Full()
	}
}

// policyWALName translates config's lower_snake_case spelling into the
// WAL/log spelling ParseDecisionPolicy expects.
func policyWALName(name string) string {
	switch name {
	case "dev_friendly":
		return "DEV_FRIENDLY"
	case "strict":
		return "STRICT"
	default:
		return "SAFE_DEFAULT"
	}
}

func walEnabledLabel(enabled bool) string {
	if enabled {
		return "true"
	}
	return "false"
}
