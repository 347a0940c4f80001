package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/storetest"
)

func newSQLite(t *testing.T, path string) *SQLite {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sut, err := New(path, WithLogger(logger), WithTracer())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sut.Close()
	})

	return sut
}

func TestSQLiteChainStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.ChainStore {
		return newSQLite(t, "")
	})
}

func TestSQLiteFile(t *testing.T) {
	ctx := context.Background()

	t.Run("chain survives reopening", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "chainstore.sqlite")
		blocks := storetest.NewChain(3)

		sut, err := New(path)
		require.NoError(t, err)
		for i, b := range blocks {
			require.NoError(t, sut.Add(ctx, b, int64(i)))
		}
		require.NoError(t, sut.Close())

		// when
		reopened := newSQLite(t, path)
		last, height, err := reopened.GetLast(ctx)

		// then
		require.NoError(t, err)
		require.Equal(t, int64(2), height)
		require.Equal(t, blocks[2].BlockHash(), last.BlockHash())
		require.NoError(t, reopened.Ping(ctx))
	})
}

func TestSQLiteMissingPredecessor(t *testing.T) {
	ctx := context.Background()

	// given
	blocks := storetest.NewChain(3)
	sut := newSQLite(t, "")
	for i, b := range blocks {
		require.NoError(t, sut.Add(ctx, b, int64(i)))
	}

	middle := blocks[1].BlockHash()
	require.NoError(t, sut.db.Exec("DELETE FROM block_transactions WHERE block_hash = ?", middle.CloneBytes()).Error)
	require.NoError(t, sut.db.Exec("DELETE FROM blocks WHERE height = ?", 1).Error)

	t.Run("get by height", func(t *testing.T) {
		// when
		block, err := sut.GetByHeight(ctx, 2)

		// then
		require.ErrorIs(t, err, store.ErrInconsistentChain)
		require.Nil(t, block)
	})

	t.Run("get last", func(t *testing.T) {
		// when
		block, _, err := sut.GetLast(ctx)

		// then
		require.ErrorIs(t, err, store.ErrInconsistentChain)
		require.Nil(t, block)
	})

	t.Run("get by hash", func(t *testing.T) {
		// when
		block, _, err := sut.GetByHash(ctx, blocks[2].BlockHash())

		// then
		require.ErrorIs(t, err, store.ErrInconsistentChain)
		require.Nil(t, block)
	})

	t.Run("genesis is still readable", func(t *testing.T) {
		// when
		block, err := sut.GetFirst(ctx)

		// then
		require.NoError(t, err)
		require.Equal(t, blocks[0].BlockHash(), block.BlockHash())
	})
}

func TestClassifyError(t *testing.T) {
	tt := []struct {
		name             string
		err              error
		expectedConflict bool
	}{
		{
			name:             "duplicated key",
			err:              gorm.ErrDuplicatedKey,
			expectedConflict: true,
		},
		{
			name:             "busy",
			err:              errors.New("database is locked (5) (SQLITE_BUSY)"),
			expectedConflict: true,
		},
		{
			name:             "unique constraint",
			err:              errors.New("constraint failed: UNIQUE constraint failed: blocks.height (2067)"),
			expectedConflict: true,
		},
		{
			name:             "already a conflict",
			err:              errors.Join(store.ErrConflict, errors.New("height 0 is already taken")),
			expectedConflict: true,
		},
		{
			name: "foreign key",
			err:  errors.New("constraint failed: FOREIGN KEY constraint failed (787)"),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// when
			actual := classifyError(tc.err)

			// then
			require.Equal(t, tc.expectedConflict, errors.Is(actual, store.ErrConflict))
			require.ErrorIs(t, actual, tc.err)
		})
	}
}
