package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/internal/telemetry"
	"github.com/streamshard/megaflow/pkg/config"
	"github.com/streamshard/megaflow/pkg/controlplane"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/metrics"

	// Registers the Prometheus-backed DataflowMetrics constructor.
	_ "github.com/streamshard/megaflow/pkg/metrics/prometheus"
	"github.com/streamshard/megaflow/pkg/runtime"
	"github.com/streamshard/megaflow/pkg/statestore"
)

// tickInterval is how often the driving loop advances the cluster's control
// and data frontiers. There is no real upstream dataflow behind this binary
// ("the example driver" is out of scope); the CLI's job is to keep the
// control ingestion service and the cluster's installation protocol running
// so an embedding application — or an operator poking the HTTP API by hand —
// can observe reconfiguration taking effect.
const tickInterval = 500 * time.Millisecond

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the worker cluster and control ingestion service",
	Long: `Start boots a cluster of simulated workers (pkg/runtime) wired to the
control ingestion HTTP service (pkg/controlplane): Control messages admitted
over HTTP are forwarded to every worker's routing operator, compiled into
ControlSet snapshots, and installed once the cluster-wide probe frontier
allows it.

Examples:
  # Start with the default config location
  megaflow start

  # Start with a custom config file
  megaflow start --config /etc/megaflow/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := initLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "megaflow",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	var dfMetrics metrics.DataflowMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		dfMetrics = metrics.NewDataflowMetrics()
		metricsSrv := startMetricsServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics server listening", logger.Port(cfg.Metrics.Port))
	} else {
		logger.Info("metrics collection disabled")
	}

	cp, err := controlplane.New(ctx, &controlplane.Options{
		Database: &cfg.Database,
		API:      &cfg.ControlIngestion,
		Metrics:  dfMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize control plane: %w", err)
	}
	defer func() {
		if err := cp.Close(); err != nil {
			logger.Error("control plane shutdown error", logger.Err(err))
		}
	}()

	cpDone := make(chan error, 1)
	go func() { cpDone <- cp.Start(ctx) }()

	cluster := runtime.New[[]byte, []byte, []byte](
		cfg.Cluster.Workers,
		statestore.NewSliceContainer[[]byte](),
		megakey.Hash64,
		func(worker int, t uint64, v []byte) {
			logger.Debug("record admitted downstream", logger.Worker(worker), logger.DataFrontier(fmt.Sprintf("%d", t)), logger.Bytes(len(v)))
		},
	)
	cluster.SetMetrics(dfMetrics)

	var highestControlTime atomic.Uint64
	go feedControlMessages(ctx, cluster, cp, &highestControlTime)

	logger.Info("cluster started",
		logger.Worker(cfg.Cluster.Workers),
	)
	fmt.Printf("megaflow cluster running with %d workers, control ingestion on port %d\n",
		cfg.Cluster.Workers, cfg.ControlIngestion.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var frontier uint64
	for {
		select {
		case <-ticker.C:
			frontier++
			if seen := highestControlTime.Load(); seen >= frontier {
				frontier = seen + 1
			}
			cluster.Tick(frontier, frontier)
		case sig := <-sigChan:
			signal.Stop(sigChan)
			logger.Info("shutdown signal received", slog.String("signal", sig.String()))
			cancel()
			if err := <-cpDone; err != nil {
				logger.Error("control plane error", logger.Err(err))
				return err
			}
			logger.Info("megaflow stopped gracefully")
			return nil
		case err := <-cpDone:
			signal.Stop(sigChan)
			if err != nil {
				logger.Error("control plane error", logger.Err(err))
				return err
			}
			return nil
		}
	}
}

// feedControlMessages drains the control plane's admitted-message channel
// and broadcasts each one to every worker, tagged with its own Sequence as
// the logical time. Every shard of one logical reconfiguration carries the
// same Sequence ("count indicates how many messages share this
// sequence"), so this is exactly the stash key the compiler needs to see
// every shard before the control frontier passes it ("Control path").
// highestSeen records the greatest time submitted so the driving loop in
// runStart can make sure the control frontier eventually overtakes it.
func feedControlMessages[V any, W any, M any](ctx context.Context, cluster *runtime.Cluster[V, W, M], cp *controlplane.ControlPlane, highestSeen *atomic.Uint64) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-cp.Messages():
			if !ok {
				return
			}
			cluster.SubmitControl(msg, msg.Sequence)
			for {
				cur := highestSeen.Load()
				if msg.Sequence <= cur || highestSeen.CompareAndSwap(cur, msg.Sequence) {
					break
				}
			}
		}
	}
}

func startMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", logger.Err(err))
		}
	}()
	return srv
}

func initLogger(cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
