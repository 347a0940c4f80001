package app

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var removeLastCmd = &cobra.Command{
	Use:   "remove-last",
	Short: "Remove the tip block and the transactions only it referenced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		chainStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(chainStore)

		err = chainStore.RemoveLast(cmd.Context())
		if err != nil {
			return err
		}

		tip, _, err := chainStore.GetLast(cmd.Context())
		if err != nil {
			return err
		}

		stats, err := chainStore.GetStats(cmd.Context())
		if err != nil {
			return err
		}

		logger.Info("Removed tip", slog.Int64("tipHeight", stats.TipHeight))

		return printYAML(cmd.OutOrStdout(), summarizeTip(tip, stats))
	},
}
