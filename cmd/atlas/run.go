package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"lendstack-hq/atlas/pkg/config"
	"lendstack-hq/atlas/pkg/match/engine"
	"lendstack-hq/atlas/pkg/match/rules"
	"lendstack-hq/atlas/pkg/policy"
	"lendstack-hq/atlas/pkg/results/retention"
	"lendstack-hq/atlas/pkg/results/storage"
	"lendstack-hq/atlas/pkg/telemetry/health"
	"lendstack-hq/atlas/pkg/telemetry/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the matching service",
	Long: `Run Atlas as a long-lived service: load the policy directory, watch it
for changes, expose Prometheus metrics, and enforce match record retention
on schedule.

On startup, if the policy directory fails to load and a snapshot store is
configured, the last known-good policy set is restored from the snapshot.

Examples:
  # Run with a config file
  atlas run --config config.yaml

  # Run with defaults against a policy directory
  atlas run --policies ./policies`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return err
	}
	logger := slog.Default().With("component", "atlas")

	registry := rules.NewRegistry()
	loader := policy.NewLoader(&policy.LoaderConfig{
		MaxFileSize: cfg.Policy.MaxFileSize,
		TypeChecker: registry,
	})
	store := policy.NewStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var snapshots *policy.SnapshotStore
	if cfg.Policy.SnapshotPath != "" {
		snapshots, err = policy.OpenSnapshotStore(cfg.Policy.SnapshotPath)
		if err != nil {
			return fmt.Errorf("failed to open policy snapshot store: %w", err)
		}
		defer snapshots.Close()
	}

	if err := loadPolicies(ctx, cfg, loader, store, snapshots, logger); err != nil {
		return err
	}

	// Hot reload on policy file changes.
	var watcher *policy.Watcher
	if cfg.Policy.Watch {
		wcfg := policy.DefaultWatcherConfig(cfg.Policy.Dir)
		wcfg.DebounceInterval = cfg.Policy.DebounceInterval
		watcher, err = policy.NewWatcher(wcfg, loader, store)
		if err != nil {
			return fmt.Errorf("failed to create policy watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("policy watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	checker := health.New(0)
	checker.Register("policies", func(ctx context.Context) error {
		if store.Len() == 0 {
			return fmt.Errorf("no active policies")
		}
		return nil
	})

	// Retention enforcement for recorded matches.
	if cfg.Results.Enabled && cfg.Results.Backend == "sqlite" {
		backend, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Results.SQLitePath,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  cfg.Results.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open results storage: %w", err)
		}
		defer backend.Close()

		scheduler := retention.NewScheduler(retention.NewPruner(backend, &retention.Config{
			RetentionDays: cfg.Results.Retention.RetentionDays,
			PruneSchedule: cfg.Results.Retention.PruneSchedule,
			MaxRecords:    cfg.Results.Retention.MaxRecords,
		}))
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		defer scheduler.Stop()

		checker.Register("results", func(ctx context.Context) error {
			_, err := backend.Count(ctx)
			return err
		})
	}

	// Metrics and health endpoints share one operational server.
	if cfg.Telemetry.Metrics.Enabled {
		// Engine collectors are registered before the listener starts so
		// the first scrape already exports every metric family.
		engine.NewMetrics(nil)

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, promhttp.Handler())
		mux.HandleFunc("/healthz", checker.LivenessHandler())
		mux.HandleFunc("/readyz", checker.ReadinessHandler())
		srv := &http.Server{
			Addr:              cfg.Telemetry.Metrics.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening",
				"address", cfg.Telemetry.Metrics.ListenAddress,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("atlas started",
		"policy_dir", cfg.Policy.Dir,
		"lenders", store.Len(),
		"policy_version", store.Version(),
		"watch", cfg.Policy.Watch,
	)

	<-ctx.Done()
	logger.Info("atlas shutting down")
	return nil
}

// loadPolicies loads the directory into the store, falling back to the
// snapshot store when the directory cannot be loaded, and saves a fresh
// snapshot after a successful load.
func loadPolicies(ctx context.Context, cfg *config.Config, loader *policy.Loader, store *policy.Store, snapshots *policy.SnapshotStore, logger *slog.Logger) error {
	policies, loadErrs, err := loader.LoadDirectory(cfg.Policy.Dir, cfg.Policy.SkipInvalid)
	if err == nil && len(policies) > 0 {
		if len(loadErrs) > 0 {
			logger.Warn("some policy files failed to load", "skipped", len(loadErrs))
		}
		if err := store.Replace(policies); err != nil {
			return fmt.Errorf("failed to activate policy set: %w", err)
		}
		if snapshots != nil {
			if err := snapshots.Save(ctx, policies); err != nil {
				logger.Warn("failed to save policy snapshot", "error", err)
			}
		}
		return nil
	}

	if snapshots == nil {
		if err != nil {
			return fmt.Errorf("failed to load policy directory: %w", err)
		}
		return fmt.Errorf("policy directory %q contains no valid policies", cfg.Policy.Dir)
	}

	logger.Error("policy directory load failed, restoring snapshot",
		"dir", cfg.Policy.Dir,
		"error", err,
	)
	restored, serr := snapshots.Load(ctx)
	if serr != nil || len(restored) == 0 {
		return fmt.Errorf("failed to load policy directory and no usable snapshot: %w", err)
	}
	if err := store.Replace(restored); err != nil {
		return fmt.Errorf("failed to activate snapshot policy set: %w", err)
	}
	logger.Warn("running on snapshot policy set", "lenders", len(restored))
	return nil
}
