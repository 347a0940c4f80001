package blocksync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/mocks"
)

func TestStatsCollector_Start(t *testing.T) {
	tt := []struct {
		name        string
		getStatsErr error

		expectedTipHeight float64
		expectedBlocks    float64
		expectedOutputs   float64
	}{
		{
			name: "success",

			expectedTipHeight: 9,
			expectedBlocks:    10,
			expectedOutputs:   40,
		},
		{
			name:        "error",
			getStatsErr: errors.New("some error"),

			expectedTipHeight: 0,
			expectedBlocks:    0,
			expectedOutputs:   0,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			// given
			chainStore := &mocks.ChainStoreMock{
				GetStatsFunc: func(_ context.Context) (*store.Stats, error) {
					return &store.Stats{
						TipHeight:         9,
						Blocks:            10,
						Transactions:      20,
						BlockTransactions: 21,
						Outputs:           40,
						Inputs:            30,
					}, tc.getStatsErr
				},
			}

			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
			sut := NewStatsCollector(logger, chainStore, WithStatCollectionInterval(30*time.Millisecond))

			// when
			err := sut.Start()
			require.NoError(t, err)

			time.Sleep(50 * time.Millisecond)
			sut.Shutdown()

			// then
			require.Equal(t, tc.expectedTipHeight, testutil.ToFloat64(sut.tipHeight))
			require.Equal(t, tc.expectedBlocks, testutil.ToFloat64(sut.blocks))
			require.Equal(t, tc.expectedOutputs, testutil.ToFloat64(sut.outputs))
			require.NotEmpty(t, chainStore.GetStatsCalls())
		})
	}
}

func TestRegisterStats(t *testing.T) {
	// given
	first := newSyncStats()
	second := newSyncStats()

	require.NoError(t, registerStats(first.collectors()...))
	defer unregisterStats(first.collectors()...)

	// when
	err := registerStats(second.collectors()...)

	// then
	require.ErrorIs(t, err, ErrFailedToRegisterStats)

	unregisterStats(first.collectors()...)
	require.NoError(t, registerStats(second.collectors()...))
	unregisterStats(second.collectors()...)
}
