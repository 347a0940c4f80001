package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/libsv/go-p2p/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

// Run runs the behaviour suite against the stores returned by newStore. Every call of newStore
// must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.ChainStore) {
	t.Helper()

	tests := map[string]func(t *testing.T, sut store.ChainStore){
		"empty store":                     testEmptyStore,
		"invalid arguments":               testInvalidArguments,
		"scenario":                        testScenario,
		"round trip":                      testRoundTrip,
		"dense heights":                   testDenseHeights,
		"chain linkage":                   testChainLinkage,
		"get by hash":                     testGetByHash,
		"shared transaction":              testSharedTransaction,
		"remove last collects orphans":    testRemoveLastCollectsOrphans,
		"reorg to other branch":           testReorg,
		"add rejects gaps and duplicates": testAddRejectsGapsAndDuplicates,
		"concurrent add at same height":   testConcurrentAdd,
		"concurrent remove last":          testConcurrentRemoveLast,
		"cancelled context":               testCancelledContext,
		"output order is stable":          testOutputOrder,
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			sut := newStore(t)
			test(t, sut)
		})
	}
}

func diff(t *testing.T, expected, actual *wire.MsgBlock) {
	t.Helper()

	if d := cmp.Diff(expected, actual, cmpopts.EquateEmpty()); d != "" {
		t.Fatalf("block mismatch (-expected +actual):\n%s", d)
	}
}

func stats(t *testing.T, sut store.ChainStore) store.Stats {
	t.Helper()

	s, err := sut.GetStats(context.Background())
	require.NoError(t, err)

	return *s
}

func addChain(t *testing.T, sut store.ChainStore, blocks []*wire.MsgBlock) {
	t.Helper()

	for i, b := range blocks {
		require.NoError(t, sut.Add(context.Background(), b, int64(i)))
	}
}

func testEmptyStore(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	first, err := sut.GetFirst(ctx)
	require.NoError(t, err)
	require.Nil(t, first)

	last, height, err := sut.GetLast(ctx)
	require.NoError(t, err)
	require.Nil(t, last)
	require.Equal(t, int64(0), height)

	byHeight, err := sut.GetByHeight(ctx, 0)
	require.NoError(t, err)
	require.Nil(t, byHeight)

	byHash, _, err := sut.GetByHash(ctx, ZeroHash)
	require.NoError(t, err)
	require.Nil(t, byHash)

	require.NoError(t, sut.RemoveLast(ctx))
	require.Equal(t, store.Stats{TipHeight: -1}, stats(t, sut))
}

func testInvalidArguments(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	tt := []struct {
		name string
		call func() error
	}{
		{
			name: "add nil block",
			call: func() error { return sut.Add(ctx, nil, 0) },
		},
		{
			name: "add at negative height",
			call: func() error { return sut.Add(ctx, NewBlock(nil, 1, NewTx(1, nil)), -1) },
		},
		{
			name: "get by negative height",
			call: func() error {
				_, err := sut.GetByHeight(ctx, -1)
				return err
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// when
			err := tc.call()

			// then
			require.ErrorIs(t, err, store.ErrInvalidArgument)
		})
	}

	require.Equal(t, store.Stats{TipHeight: -1}, stats(t, sut))
}

func testScenario(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: coinbaseIndex}, Sequence: 0xffffffff})
	tx.AddTxOut(wire.NewTxOut(satoshis, []byte("OP1")))
	genesis := NewBlock(nil, 0, tx)

	// when
	require.NoError(t, sut.Add(ctx, genesis, 0))

	// then
	first, err := sut.GetFirst(ctx)
	require.NoError(t, err)
	require.Len(t, first.Transactions, 1)
	require.Len(t, first.Transactions[0].TxOut, 1)
	assert.Equal(t, int64(satoshis), first.Transactions[0].TxOut[0].Value)
	assert.Equal(t, []byte("OP1"), first.Transactions[0].TxOut[0].PkScript)

	last, height, err := sut.GetLast(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), height)
	diff(t, genesis, last)

	// when
	require.NoError(t, sut.RemoveLast(ctx))

	// then
	last, _, err = sut.GetLast(ctx)
	require.NoError(t, err)
	require.Nil(t, last)
	require.Equal(t, store.Stats{TipHeight: -1}, stats(t, sut))
}

func testRoundTrip(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	blocks := NewChain(3)
	extra := NewTx(999, blocks[1].Transactions[0], 7, 8, 9, 10, 11, 12)
	extra.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: blocks[0].Transactions[0].TxHash(), Index: 3},
		SignatureScript:  nil,
		Sequence:         42,
	})
	blocks[2].Transactions = append(blocks[2].Transactions, extra)

	// when
	addChain(t, sut, blocks)

	// then
	for i, expected := range blocks {
		actual, err := sut.GetByHeight(ctx, int64(i))
		require.NoError(t, err)
		diff(t, expected, actual)
		require.Equal(t, expected.BlockHash(), actual.BlockHash())
	}

	s := stats(t, sut)
	assert.Equal(t, int64(2), s.TipHeight)
	assert.Equal(t, int64(3), s.Blocks)
	assert.Equal(t, int64(6), s.Transactions)
	assert.Equal(t, int64(6), s.BlockTransactions)
}

func testDenseHeights(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	blocks := NewChain(5)
	addChain(t, sut, blocks)

	for h := range int64(len(blocks)) {
		b, err := sut.GetByHeight(ctx, h)
		require.NoError(t, err)
		require.NotNil(t, b, "height %d", h)
	}

	b, err := sut.GetByHeight(ctx, int64(len(blocks)))
	require.NoError(t, err)
	require.Nil(t, b)
}

func testChainLinkage(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	blocks := NewChain(4)
	addChain(t, sut, blocks)

	first, err := sut.GetFirst(ctx)
	require.NoError(t, err)
	require.Equal(t, ZeroHash, first.Header.PrevBlock)

	previous := first
	for h := int64(1); h < int64(len(blocks)); h++ {
		b, err := sut.GetByHeight(ctx, h)
		require.NoError(t, err)
		require.Equal(t, previous.BlockHash(), b.Header.PrevBlock)
		previous = b
	}

	last, height, err := sut.GetLast(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), height)
	diff(t, blocks[3], last)
}

func testGetByHash(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	blocks := NewChain(3)
	addChain(t, sut, blocks)

	for i, expected := range blocks {
		actual, height, err := sut.GetByHash(ctx, expected.BlockHash())
		require.NoError(t, err)
		require.Equal(t, int64(i), height)
		diff(t, expected, actual)
	}

	missing := NewChain(1)[0]
	missing.Header.Nonce = 12345

	actual, height, err := sut.GetByHash(ctx, missing.BlockHash())
	require.NoError(t, err)
	require.Nil(t, actual)
	require.Equal(t, int64(0), height)
}

// sharedChain returns two blocks which both contain shared, at index 1 and 0.
func sharedChain() (b0, b1 *wire.MsgBlock, shared *wire.MsgTx) {
	shared = NewTx(7, nil)
	b0 = NewBlock(nil, 1, NewTx(1, nil), shared)
	b1 = NewBlock(b0, 2, shared, NewTx(2, nil))

	return b0, b1, shared
}

func testSharedTransaction(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	b0, b1, shared := sharedChain()

	// when
	require.NoError(t, sut.Add(ctx, b0, 0))
	require.NoError(t, sut.Add(ctx, b1, 1))

	// then
	s := stats(t, sut)
	assert.Equal(t, int64(3), s.Transactions)
	assert.Equal(t, int64(4), s.BlockTransactions)
	assert.Equal(t, int64(3), s.Outputs)

	got0, err := sut.GetByHeight(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, shared.TxHash(), got0.Transactions[1].TxHash())

	got1, err := sut.GetByHeight(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, shared.TxHash(), got1.Transactions[0].TxHash())

	diff(t, b0, got0)
	diff(t, b1, got1)
}

func testRemoveLastCollectsOrphans(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	b0, b1, shared := sharedChain()
	require.NoError(t, sut.Add(ctx, b0, 0))
	require.NoError(t, sut.Add(ctx, b1, 1))

	// when
	require.NoError(t, sut.RemoveLast(ctx))

	// then
	s := stats(t, sut)
	assert.Equal(t, store.Stats{TipHeight: 0, Blocks: 1, Transactions: 2, BlockTransactions: 2, Outputs: 2, Inputs: 2}, s)

	got0, err := sut.GetByHeight(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, shared.TxHash(), got0.Transactions[1].TxHash())
	diff(t, b0, got0)

	// when
	require.NoError(t, sut.RemoveLast(ctx))

	// then
	require.Equal(t, store.Stats{TipHeight: -1}, stats(t, sut))
}

func testReorg(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	b0, b1, shared := sharedChain()
	require.NoError(t, sut.Add(ctx, b0, 0))
	require.NoError(t, sut.Add(ctx, b1, 1))

	fork := NewBlock(b0, 3, NewTx(3, nil), shared)

	// when
	require.NoError(t, sut.RemoveLast(ctx))
	require.NoError(t, sut.Add(ctx, fork, 1))

	// then
	last, height, err := sut.GetLast(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), height)
	diff(t, fork, last)

	old, _, err := sut.GetByHash(ctx, b1.BlockHash())
	require.NoError(t, err)
	require.Nil(t, old)

	s := stats(t, sut)
	assert.Equal(t, int64(3), s.Transactions)
	assert.Equal(t, int64(4), s.BlockTransactions)
}

func testAddRejectsGapsAndDuplicates(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	blocks := NewChain(3)

	tt := []struct {
		name        string
		block       *wire.MsgBlock
		height      int64
		expectedErr error
	}{
		{
			name:        "gap above empty store",
			block:       blocks[1],
			height:      1,
			expectedErr: store.ErrInconsistentChain,
		},
		{
			name:   "genesis",
			block:  blocks[0],
			height: 0,
		},
		{
			name:        "height taken",
			block:       blocks[1],
			height:      0,
			expectedErr: store.ErrHeightTaken,
		},
		{
			name:        "gap above tip",
			block:       blocks[2],
			height:      2,
			expectedErr: store.ErrInconsistentChain,
		},
		{
			name:   "next height",
			block:  blocks[1],
			height: 1,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// when
			err := sut.Add(ctx, tc.block, tc.height)

			// then
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}

	s := stats(t, sut)
	assert.Equal(t, int64(1), s.TipHeight)
	assert.Equal(t, int64(2), s.Blocks)
}

func testConcurrentAdd(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	shared := NewTx(5, nil)
	candidates := []*wire.MsgBlock{
		NewBlock(nil, 1, NewTx(1, nil), shared),
		NewBlock(nil, 2, NewTx(2, nil), shared),
	}
	errs := make([]error, len(candidates))

	// when
	var g errgroup.Group
	for i, b := range candidates {
		g.Go(func() error {
			errs[i] = sut.Add(ctx, b, 0)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// then
	var committed, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, store.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, committed)
	require.Equal(t, 1, conflicts)

	s := stats(t, sut)
	assert.Equal(t, int64(1), s.Blocks)
	assert.Equal(t, int64(2), s.Transactions)
	assert.Equal(t, int64(0), s.TipHeight)
}

func testConcurrentRemoveLast(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	addChain(t, sut, NewChain(4))

	// when
	var g errgroup.Group
	for range 3 {
		g.Go(func() error {
			err := sut.RemoveLast(ctx)
			if errors.Is(err, store.ErrConflict) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	// then
	s := stats(t, sut)
	require.GreaterOrEqual(t, s.TipHeight, int64(0))
	require.Equal(t, s.TipHeight+1, s.Blocks)

	for h := range s.Blocks {
		b, err := sut.GetByHeight(ctx, h)
		require.NoError(t, err)
		require.NotNil(t, b)
	}
}

func testCancelledContext(t *testing.T, sut store.ChainStore) {
	// given
	blocks := NewChain(2)
	require.NoError(t, sut.Add(context.Background(), blocks[0], 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	addErr := sut.Add(ctx, blocks[1], 1)
	removeErr := sut.RemoveLast(ctx)
	_, getErr := sut.GetByHeight(ctx, 0)

	// then
	require.ErrorIs(t, addErr, context.Canceled)
	require.ErrorIs(t, removeErr, context.Canceled)
	require.ErrorIs(t, getErr, context.Canceled)

	s := stats(t, sut)
	assert.Equal(t, int64(0), s.TipHeight)
	assert.Equal(t, int64(1), s.Blocks)
}

func testOutputOrder(t *testing.T, sut store.ChainStore) {
	ctx := context.Background()

	// given
	values := []int64{50, 40, 30, 20, 10, 0, 60, 70, 80, 90, 100, 110}
	genesis := NewBlock(nil, 1, NewTx(1, nil, values...))
	require.NoError(t, sut.Add(ctx, genesis, 0))

	// when
	for range 3 {
		b, err := sut.GetFirst(ctx)
		require.NoError(t, err)

		// then
		outs := b.Transactions[0].TxOut
		require.Len(t, outs, len(values))
		for i, v := range values {
			require.Equal(t, v, outs[i].Value)
		}
	}
}
