package store_test

import (
	"errors"
	"testing"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

func TestCompareOutputs(t *testing.T) {
	low := chainhash.Hash{0x01}
	high := chainhash.Hash{0x02}

	tt := []struct {
		name     string
		a, b     store.Output
		expected int
	}{
		{
			name:     "hash decides before index",
			a:        store.Output{TransactionHash: low, Index: 5},
			b:        store.Output{TransactionHash: high, Index: 0},
			expected: -1,
		},
		{
			name:     "hash compares bytes from the start",
			a:        store.Output{TransactionHash: chainhash.Hash{0x00, 0xff}},
			b:        store.Output{TransactionHash: chainhash.Hash{0x01}},
			expected: -1,
		},
		{
			name:     "same hash, index ascending",
			a:        store.Output{TransactionHash: low, Index: 3},
			b:        store.Output{TransactionHash: low, Index: 2},
			expected: 1,
		},
		{
			name:     "same key, different content",
			a:        store.Output{TransactionHash: low, Index: 1, Value: 10},
			b:        store.Output{TransactionHash: low, Index: 1, Value: 20},
			expected: 0,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, store.CompareOutputs(tc.a, tc.b))
			require.Equal(t, -tc.expected, store.CompareOutputs(tc.b, tc.a))
		})
	}
}

func TestOutputsEqual(t *testing.T) {
	low := chainhash.Hash{0x01}
	high := chainhash.Hash{0x02}

	tt := []struct {
		name     string
		a, b     store.Output
		expected bool
	}{
		{
			name:     "same key, same content",
			a:        store.Output{TransactionHash: low, Index: 1, Value: 10, Script: []byte("OP1")},
			b:        store.Output{TransactionHash: low, Index: 1, Value: 10, Script: []byte("OP1")},
			expected: true,
		},
		{
			name:     "same key, different content",
			a:        store.Output{TransactionHash: low, Index: 1, Value: 10, Script: []byte("OP1")},
			b:        store.Output{TransactionHash: low, Index: 1, Value: 20, Script: []byte("OP2")},
			expected: true,
		},
		{
			name:     "different index",
			a:        store.Output{TransactionHash: low, Index: 1},
			b:        store.Output{TransactionHash: low, Index: 2},
			expected: false,
		},
		{
			name:     "different hash",
			a:        store.Output{TransactionHash: low, Index: 1},
			b:        store.Output{TransactionHash: high, Index: 1},
			expected: false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, store.OutputsEqual(tc.a, tc.b))
			require.Equal(t, tc.expected, store.CompareOutputs(tc.a, tc.b) == 0)
		})
	}
}

func TestInputsEqual(t *testing.T) {
	low := chainhash.Hash{0x01}

	tt := []struct {
		name     string
		a, b     store.Input
		expected bool
	}{
		{
			name:     "same key, different spent output",
			a:        store.Input{TransactionHash: low, Index: 0, OutputHash: chainhash.Hash{0x09}, OutputIndex: 2, Sequence: 7},
			b:        store.Input{TransactionHash: low, Index: 0, OutputHash: chainhash.Hash{0x08}, OutputIndex: 3, Sequence: 8},
			expected: true,
		},
		{
			name:     "different index",
			a:        store.Input{TransactionHash: low, Index: 0},
			b:        store.Input{TransactionHash: low, Index: 1},
			expected: false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, store.InputsEqual(tc.a, tc.b))
			require.Equal(t, tc.expected, store.CompareInputs(tc.a, tc.b) == 0)
		})
	}
}

func TestSortOutputs(t *testing.T) {
	// given
	h1, h2 := chainhash.Hash{0x01}, chainhash.Hash{0x02}
	outputs := []store.Output{
		{TransactionHash: h2, Index: 0},
		{TransactionHash: h1, Index: 2},
		{TransactionHash: h1, Index: 0},
		{TransactionHash: h2, Index: 1},
		{TransactionHash: h1, Index: 1},
	}

	// when
	store.SortOutputs(outputs)

	// then
	expected := []store.Output{
		{TransactionHash: h1, Index: 0},
		{TransactionHash: h1, Index: 1},
		{TransactionHash: h1, Index: 2},
		{TransactionHash: h2, Index: 0},
		{TransactionHash: h2, Index: 1},
	}
	require.Equal(t, expected, outputs)
}

func TestValidateNextHeight(t *testing.T) {
	tt := []struct {
		name        string
		tip         int64
		height      int64
		expectedErr error
	}{
		{name: "genesis on empty chain", tip: -1, height: 0},
		{name: "next height", tip: 4, height: 5},
		{name: "gap on empty chain", tip: -1, height: 1, expectedErr: store.ErrInconsistentChain},
		{name: "gap above tip", tip: 4, height: 6, expectedErr: store.ErrInconsistentChain},
		{name: "tip taken", tip: 4, height: 4, expectedErr: store.ErrHeightTaken},
		{name: "below tip", tip: 4, height: 1, expectedErr: store.ErrHeightTaken},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := store.ValidateNextHeight(tc.tip, tc.height)
			if tc.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.expectedErr)
			if errors.Is(tc.expectedErr, store.ErrHeightTaken) {
				require.ErrorIs(t, err, store.ErrConflict)
			}
		})
	}
}
