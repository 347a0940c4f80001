package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bitcoin-sv/chainstore/config"
	chainstoreLogger "github.com/bitcoin-sv/chainstore/internal/logger"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

const serviceName = "chainstore"

var (
	cfg             *config.ChainstoreConfig
	logger          *slog.Logger
	shutdownTracing = func() {}
)

var RootCmd = &cobra.Command{
	Use:           "chainstore",
	Short:         "Stores a block chain in a relational database and keeps it in line with a block source",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		configDir, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}

		cfg, err = config.Load(configDir)
		if err != nil {
			return fmt.Errorf("failed to load app config: %w", err)
		}

		logger, err = chainstoreLogger.NewLogger(cfg.LogLevel, cfg.LogFormat, chainstoreLogger.WithWriter(os.Stderr))
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		if cfg.Tracing.IsEnabled() {
			cleanup, err := tracing.Enable(logger, serviceName, cfg.Tracing.DialAddr, cfg.Tracing.Sample)
			if err != nil {
				return fmt.Errorf("failed to enable tracing: %w", err)
			}
			shutdownTracing = cleanup
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		dumpConfigFile, err := cmd.Flags().GetString("dump-config")
		if err != nil {
			return err
		}

		if dumpConfigFile == "" {
			return cmd.Help()
		}

		return config.DumpConfig(cfg, dumpConfigFile)
	},
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Directory containing config.yaml")
	RootCmd.Flags().String("dump-config", "", "Write the effective config as yaml to this file and exit")

	RootCmd.AddCommand(migrateCmd)
	RootCmd.AddCommand(tipCmd)
	RootCmd.AddCommand(blockCmd)
	RootCmd.AddCommand(removeLastCmd)
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(syncFileCmd)
}

// Execute runs the command line until it completes or SIGINT/SIGTERM cancels it.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownTracing()
	}()

	return RootCmd.ExecuteContext(ctx)
}
