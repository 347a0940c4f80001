package app

import (
	"errors"
	"fmt"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
	"github.com/spf13/cobra"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/blocksync"
)

var (
	ErrBlockNotFound      = errors.New("block not found")
	ErrBlockLookupMissing = errors.New("exactly one of --height and --hash is required")
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Show a stored block by height or hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()

		height, err := flags.GetInt64("height")
		if err != nil {
			return err
		}

		hashStr, err := flags.GetString("hash")
		if err != nil {
			return err
		}

		raw, err := flags.GetBool("raw")
		if err != nil {
			return err
		}

		byHeight := flags.Changed("height")
		if byHeight == (hashStr != "") {
			return ErrBlockLookupMissing
		}

		chainStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(chainStore)

		var block *wire.MsgBlock
		if byHeight {
			block, err = chainStore.GetByHeight(cmd.Context(), height)
		} else {
			var hash *chainhash.Hash
			hash, err = chainhash.NewHashFromStr(hashStr)
			if err != nil {
				return fmt.Errorf("invalid hash %q: %w", hashStr, err)
			}

			block, height, err = chainStore.GetByHash(cmd.Context(), *hash)
		}
		if err != nil {
			return err
		}

		if block == nil {
			return ErrBlockNotFound
		}

		if raw {
			return blocksync.WriteBlocks(cmd.OutOrStdout(), block)
		}

		return printYAML(cmd.OutOrStdout(), summarize(block, height))
	},
}

func init() {
	blockCmd.Flags().Int64("height", 0, "Height of the block")
	blockCmd.Flags().String("hash", "", "Hash of the block")
	blockCmd.Flags().Bool("raw", false, "Print the serialized block as hex")
}
