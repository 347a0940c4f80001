package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/blocksync"
)

type syncSummary struct {
	Added     int   `yaml:"added"`
	Removed   int   `yaml:"removed"`
	TipHeight int64 `yaml:"tipHeight"`
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bring the store in line with a file of hex encoded blocks",
	Long:  "Reads one hex encoded block per line, the n-th block being at height n. Stored blocks the file does not contain are removed first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := blocksync.NewFileSource(args[0])
		if err != nil {
			return err
		}

		chainStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(chainStore)

		result, err := newSynchronizer(chainStore, source).Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", args[0], err)
		}

		return printYAML(cmd.OutOrStdout(), syncSummary(result))
	},
}
