package blocksync_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/libsv/go-p2p/wire"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/blocksync"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/storetest"
)

func writeBlockFile(t *testing.T, path string, blocks ...*wire.MsgBlock) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("# test chain\n\n")
	require.NoError(t, blocksync.WriteBlocks(&buf, blocks...))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestReadBlocks(t *testing.T) {
	chain := storetest.NewChain(3)

	tt := []struct {
		name  string
		input func(t *testing.T) string

		expectedCount int
		expectedErr   string
	}{
		{
			name: "written blocks",
			input: func(t *testing.T) string {
				var buf bytes.Buffer
				require.NoError(t, blocksync.WriteBlocks(&buf, chain...))
				return buf.String()
			},

			expectedCount: 3,
		},
		{
			name: "comments and blank lines",
			input: func(_ *testing.T) string {
				return "# nothing here\n\n   \n"
			},

			expectedCount: 0,
		},
		{
			name: "invalid hex",
			input: func(_ *testing.T) string {
				return "# header\nzz\n"
			},

			expectedErr: "line 2",
		},
		{
			name: "truncated block",
			input: func(_ *testing.T) string {
				return "0100\n"
			},

			expectedErr: "line 1",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// when
			blocks, err := blocksync.ReadBlocks(strings.NewReader(tc.input(t)))

			// then
			if tc.expectedErr != "" {
				require.ErrorContains(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, blocks, tc.expectedCount)
			for i, b := range blocks {
				require.Equal(t, chain[i].BlockHash(), b.BlockHash())
				require.Len(t, b.Transactions, len(chain[i].Transactions))
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	t.Run("serves blocks by height", func(t *testing.T) {
		// given
		chain := storetest.NewChain(2)
		path := filepath.Join(t.TempDir(), "blocks.hex")
		writeBlockFile(t, path, chain...)

		sut, err := blocksync.NewFileSource(path)
		require.NoError(t, err)

		// when
		count, err := sut.GetBlockCount(context.Background())
		require.NoError(t, err)
		second, err := sut.GetBlockByHeight(context.Background(), 1)
		require.NoError(t, err)
		beyond, err := sut.GetBlockByHeight(context.Background(), 2)
		require.NoError(t, err)

		// then
		require.Equal(t, int64(2), count)
		require.Equal(t, chain[1].BlockHash(), second.BlockHash())
		require.Nil(t, beyond)
	})

	t.Run("reloads changed file", func(t *testing.T) {
		// given
		chain := storetest.NewChain(3)
		path := filepath.Join(t.TempDir(), "blocks.hex")
		writeBlockFile(t, path, chain[:1]...)

		sut, err := blocksync.NewFileSource(path)
		require.NoError(t, err)

		count, err := sut.GetBlockCount(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(1), count)

		// when
		writeBlockFile(t, path, chain...)
		later := time.Now().Add(time.Minute)
		require.NoError(t, os.Chtimes(path, later, later))

		count, err = sut.GetBlockCount(context.Background())

		// then
		require.NoError(t, err)
		require.Equal(t, int64(3), count)
	})

	t.Run("missing file", func(t *testing.T) {
		// when
		_, err := blocksync.NewFileSource(filepath.Join(t.TempDir(), "missing.hex"))

		// then
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "blocks.hex")
		require.NoError(t, os.WriteFile(path, []byte("not hex\n"), 0o600))

		// when
		_, err := blocksync.NewFileSource(path)

		// then
		require.ErrorIs(t, err, blocksync.ErrInvalidBlockFile)
	})

	t.Run("feeds the synchronizer", func(t *testing.T) {
		// given
		chain := storetest.NewChain(3)
		path := filepath.Join(t.TempDir(), "blocks.hex")
		writeBlockFile(t, path, chain...)

		source, err := blocksync.NewFileSource(path)
		require.NoError(t, err)

		chainStore := newStore(t, nil)
		sut := blocksync.NewSynchronizer(newLogger(), chainStore, source)

		// when
		result, err := sut.Sync(context.Background())

		// then
		require.NoError(t, err)
		require.Equal(t, blocksync.Result{Added: 3, TipHeight: 2}, result)

		last, height, err := chainStore.GetLast(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(2), height)
		require.Equal(t, chain[2].BlockHash(), last.BlockHash())
	})
}
