package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/blocksync"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/storetest"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}

	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(args ...string) (string, error) {
	resetFlags(RootCmd)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)

	err := RootCmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestCommands(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Setenv("CHAINSTORE_LOGLEVEL", "ERROR")
	t.Setenv("CHAINSTORE_DB_MODE", "sqlite")
	t.Setenv("CHAINSTORE_DB_SQLITE_PATH", filepath.Join(dir, "chain.sqlite"))

	chain := storetest.NewChain(3)

	var buf bytes.Buffer
	require.NoError(t, blocksync.WriteBlocks(&buf, chain...))
	blockFile := filepath.Join(dir, "blocks.hex")
	require.NoError(t, os.WriteFile(blockFile, buf.Bytes(), 0o600))

	t.Run("migrate", func(t *testing.T) {
		_, err := execute("migrate")
		require.NoError(t, err)
	})

	t.Run("import", func(t *testing.T) {
		out, err := execute("import", blockFile)
		require.NoError(t, err)
		require.Contains(t, out, "added: 3")
		require.Contains(t, out, "tipHeight: 2")
	})

	t.Run("import again adds nothing", func(t *testing.T) {
		out, err := execute("import", blockFile)
		require.NoError(t, err)
		require.Contains(t, out, "added: 0")
	})

	t.Run("tip", func(t *testing.T) {
		out, err := execute("tip")
		require.NoError(t, err)
		require.Contains(t, out, "height: 2")
		require.Contains(t, out, chain[2].BlockHash().String())
		require.Contains(t, out, "blocks: 3")
	})

	t.Run("block by height", func(t *testing.T) {
		out, err := execute("block", "--height", "1")
		require.NoError(t, err)
		require.Contains(t, out, "hash: "+chain[1].BlockHash().String())
		require.Contains(t, out, "previous: "+chain[0].BlockHash().String())
	})

	t.Run("block by hash", func(t *testing.T) {
		out, err := execute("block", "--hash", chain[2].BlockHash().String())
		require.NoError(t, err)
		require.Contains(t, out, "height: 2")
	})

	t.Run("raw block", func(t *testing.T) {
		out, err := execute("block", "--height", "0", "--raw")
		require.NoError(t, err)

		blocks, err := blocksync.ReadBlocks(bytes.NewBufferString(out))
		require.NoError(t, err)
		require.Len(t, blocks, 1)
		require.Equal(t, chain[0].BlockHash(), blocks[0].BlockHash())
	})

	t.Run("block lookup arguments", func(t *testing.T) {
		_, err := execute("block")
		require.ErrorIs(t, err, ErrBlockLookupMissing)

		_, err = execute("block", "--height", "1", "--hash", chain[1].BlockHash().String())
		require.ErrorIs(t, err, ErrBlockLookupMissing)
	})

	t.Run("block not found", func(t *testing.T) {
		_, err := execute("block", "--height", "9")
		require.ErrorIs(t, err, ErrBlockNotFound)
	})

	t.Run("remove last", func(t *testing.T) {
		out, err := execute("remove-last")
		require.NoError(t, err)
		require.Contains(t, out, "height: 1")
		require.Contains(t, out, chain[1].BlockHash().String())
	})

	t.Run("dump config", func(t *testing.T) {
		dumpFile := filepath.Join(dir, "dump.yaml")

		_, err := execute("--dump-config", dumpFile)
		require.NoError(t, err)

		content, err := os.ReadFile(dumpFile)
		require.NoError(t, err)
		require.Contains(t, string(content), "mode: sqlite")
	})
}

func TestOpenStore(t *testing.T) {
	// given
	t.Setenv("CHAINSTORE_LOGLEVEL", "ERROR")
	t.Setenv("CHAINSTORE_DB_MODE", "mongodb")

	// when
	_, err := execute("tip")

	// then
	require.ErrorIs(t, err, ErrUnknownDBMode)
}
