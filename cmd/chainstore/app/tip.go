package app

import (
	"github.com/spf13/cobra"
)

var tipCmd = &cobra.Command{
	Use:   "tip",
	Short: "Show the stored tip and row counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		chainStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(chainStore)

		tip, _, err := chainStore.GetLast(cmd.Context())
		if err != nil {
			return err
		}

		stats, err := chainStore.GetStats(cmd.Context())
		if err != nil {
			return err
		}

		return printYAML(cmd.OutOrStdout(), summarizeTip(tip, stats))
	},
}
