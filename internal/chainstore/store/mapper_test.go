package store_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/libsv/go-p2p/wire"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/storetest"
)

func TestToRows(t *testing.T) {
	coinbase := storetest.NewTx(1, nil)
	spend := storetest.NewTx(2, coinbase, 10, 20)
	block := storetest.NewBlock(nil, 1, coinbase, spend)

	tt := []struct {
		name        string
		block       *wire.MsgBlock
		height      int64
		expectedErr error
	}{
		{
			name:   "valid block",
			block:  block,
			height: 0,
		},
		{
			name:        "nil block",
			height:      0,
			expectedErr: store.ErrInvalidArgument,
		},
		{
			name:        "negative height",
			block:       block,
			height:      -1,
			expectedErr: store.ErrInvalidArgument,
		},
		{
			name:        "duplicate transaction",
			block:       storetest.NewBlock(nil, 1, coinbase, spend, coinbase),
			expectedErr: store.ErrDuplicateTransaction,
		},
		{
			name:        "nil transaction",
			block:       storetest.NewBlock(nil, 1, coinbase, nil),
			expectedErr: store.ErrInvalidArgument,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rows, err := store.ToRows(tc.block, tc.height)

			// then
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				require.Nil(t, rows)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.block.BlockHash(), rows.Hash)
			require.Equal(t, tc.height, rows.Height)
			require.Len(t, rows.Transactions, len(tc.block.Transactions))

			for i, link := range rows.Transactions {
				require.Equal(t, int64(i), link.Index)
				require.Equal(t, rows.Hash, link.BlockHash)
				require.Equal(t, tc.block.Transactions[i].TxHash(), link.TransactionHash)
				require.NotNil(t, link.Transaction)

				for j, o := range link.Transaction.Outputs {
					require.Equal(t, int64(j), o.Index)
					require.Equal(t, link.TransactionHash, o.TransactionHash)
				}
				for j, in := range link.Transaction.Inputs {
					require.Equal(t, int64(j), in.Index)
				}
			}
		})
	}
}

func TestToRowsRecomputesHash(t *testing.T) {
	// given
	block := storetest.NewBlock(nil, 1, storetest.NewTx(1, nil))
	before := block.BlockHash()

	// when
	block.Header.Nonce++
	rows, err := store.ToRows(block, 0)

	// then
	require.NoError(t, err)
	require.NotEqual(t, before, rows.Hash)
	require.Equal(t, block.BlockHash(), rows.Hash)
}

func TestFromRows(t *testing.T) {
	blocks := storetest.NewChain(2)

	t.Run("round trip", func(t *testing.T) {
		for i, expected := range blocks {
			// given
			rows, err := store.ToRows(expected, int64(i))
			require.NoError(t, err)

			var previous *store.Block
			if i > 0 {
				previous, err = store.ToRows(blocks[i-1], int64(i-1))
				require.NoError(t, err)
			}

			// when
			actual, err := store.FromRows(rows, previous)

			// then
			require.NoError(t, err)
			if d := cmp.Diff(expected, actual, cmpopts.EquateEmpty()); d != "" {
				t.Fatalf("block mismatch (-expected +actual):\n%s", d)
			}
		}
	})

	t.Run("rows in any order", func(t *testing.T) {
		// given
		rows, err := store.ToRows(blocks[1], 1)
		require.NoError(t, err)
		previous, err := store.ToRows(blocks[0], 0)
		require.NoError(t, err)

		rows.Transactions[0], rows.Transactions[1] = rows.Transactions[1], rows.Transactions[0]
		outs := rows.Transactions[0].Transaction.Outputs
		outs[0], outs[2] = outs[2], outs[0]

		// when
		actual, err := store.FromRows(rows, previous)

		// then
		require.NoError(t, err)
		require.Equal(t, blocks[1].BlockHash(), actual.BlockHash())
		require.Equal(t, blocks[1].Transactions[1].TxHash(), actual.Transactions[1].TxHash())
	})

	t.Run("missing predecessor", func(t *testing.T) {
		// given
		rows, err := store.ToRows(blocks[1], 1)
		require.NoError(t, err)

		// when
		_, err = store.FromRows(rows, nil)

		// then
		require.ErrorIs(t, err, store.ErrInconsistentChain)
	})

	t.Run("transaction not loaded", func(t *testing.T) {
		// given
		rows, err := store.ToRows(blocks[0], 0)
		require.NoError(t, err)
		rows.Transactions[0].Transaction = nil

		// when
		_, err = store.FromRows(rows, nil)

		// then
		require.ErrorIs(t, err, store.ErrInconsistentChain)
	})

	t.Run("time is utc", func(t *testing.T) {
		// given
		rows, err := store.ToRows(blocks[0], 0)
		require.NoError(t, err)
		rows.Time = rows.Time.In(time.FixedZone("CET", 3600))

		// when
		actual, err := store.FromRows(rows, nil)

		// then
		require.NoError(t, err)
		require.Equal(t, time.UTC, actual.Header.Timestamp.Location())
		require.Equal(t, blocks[0].BlockHash(), actual.BlockHash())
	})
}
