package store_test

import (
	"testing"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/storetest"
)

func TestDropExisting(t *testing.T) {
	tx1 := storetest.NewTx(1, nil)
	tx2 := storetest.NewTx(2, nil)
	tx3 := storetest.NewTx(3, tx1)

	tt := []struct {
		name            string
		existing        []*chainhash.Hash
		expectedDropped int
		expectedNew     []chainhash.Hash
	}{
		{
			name:        "nothing stored",
			expectedNew: []chainhash.Hash{tx1.TxHash(), tx2.TxHash(), tx3.TxHash()},
		},
		{
			name:            "one stored",
			existing:        []*chainhash.Hash{ptrTo(tx2.TxHash())},
			expectedDropped: 1,
			expectedNew:     []chainhash.Hash{tx1.TxHash(), tx3.TxHash()},
		},
		{
			name:            "all stored",
			existing:        []*chainhash.Hash{ptrTo(tx1.TxHash()), ptrTo(tx2.TxHash()), ptrTo(tx3.TxHash())},
			expectedDropped: 3,
		},
		{
			name:        "unrelated hash stored",
			existing:    []*chainhash.Hash{ptrTo(storetest.NewTx(4, nil).TxHash())},
			expectedNew: []chainhash.Hash{tx1.TxHash(), tx2.TxHash(), tx3.TxHash()},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// given
			rows, err := store.ToRows(storetest.NewBlock(nil, 1, tx1, tx2, tx3), 0)
			require.NoError(t, err)

			existing := make(map[chainhash.Hash]struct{})
			for _, h := range tc.existing {
				existing[*h] = struct{}{}
			}

			// when
			dropped := store.DropExisting(rows, existing)

			// then
			require.Equal(t, tc.expectedDropped, dropped)

			var actualNew []chainhash.Hash
			for _, tx := range rows.NewTransactions() {
				actualNew = append(actualNew, tx.Hash)
			}
			require.Equal(t, tc.expectedNew, actualNew)

			// links are always kept with their index
			require.Equal(t, []chainhash.Hash{tx1.TxHash(), tx2.TxHash(), tx3.TxHash()}, rows.TransactionHashes())
			for i, link := range rows.Transactions {
				require.Equal(t, int64(i), link.Index)
			}
		})
	}
}

func ptrTo[T any](v T) *T {
	return &v
}
