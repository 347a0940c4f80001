package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/blocksync"
)

var syncFileCmd = &cobra.Command{
	Use:   "sync-file <file>",
	Short: "Keep the store in line with a file of hex encoded blocks until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, err := cmd.Flags().GetDuration("interval")
		if err != nil {
			return err
		}
		if interval <= 0 {
			interval = cfg.Sync.PollInterval
		}

		source, err := blocksync.NewFileSource(args[0])
		if err != nil {
			return err
		}

		chainStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(chainStore)

		stopPrometheus := startPrometheus()
		defer stopPrometheus()

		collector := blocksync.NewStatsCollector(logger, chainStore, blocksync.WithStatCollectionInterval(cfg.Sync.StatsInterval))
		err = collector.Start()
		if err != nil {
			return err
		}
		defer collector.Shutdown()

		synchronizer := newSynchronizer(chainStore, source, blocksync.WithPollInterval(interval))

		_, err = synchronizer.Sync(cmd.Context())
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Initial sync failed", slog.String("err", err.Error()))
		}

		err = synchronizer.Start()
		if err != nil {
			return err
		}
		defer synchronizer.Shutdown()

		logger.Info("Following block file", slog.String("file", args[0]), slog.Duration("interval", interval))

		<-cmd.Context().Done()
		logger.Info("Shutting down")

		return nil
	},
}

// startPrometheus serves the default registry when enabled and returns a function stopping the server.
func startPrometheus() func() {
	if !cfg.Prometheus.IsEnabled() {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Prometheus.Endpoint, promhttp.Handler())
	server := &http.Server{
		Addr:              cfg.Prometheus.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting prometheus", slog.String("endpoint", cfg.Prometheus.Endpoint), slog.String("addr", cfg.Prometheus.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start prometheus server", slog.String("err", err.Error()))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := server.Shutdown(ctx)
		if err != nil {
			logger.Error("Failed to shutdown prometheus server", slog.String("err", err.Error()))
		}
	}
}

func init() {
	syncFileCmd.Flags().Duration("interval", 0, "Poll interval, defaults to sync.pollInterval")
}
