package config

import (
	"testing"

	"github.com/libsv/go-p2p/wire"
	"github.com/stretchr/testify/assert"
)

func TestGetNetwork(t *testing.T) {
	testCases := []struct {
		name            string
		networkStr      string
		expectedNetwork wire.BitcoinNet
		expectedError   error
	}{
		{
			name:            "mainnet",
			networkStr:      "mainnet",
			expectedNetwork: wire.MainNet,
		},
		{
			name:            "testnet",
			networkStr:      "testnet",
			expectedNetwork: wire.TestNet3,
		},
		{
			name:            "regtest",
			networkStr:      "regtest",
			expectedNetwork: wire.TestNet,
		},
		{
			name:          "invalid network",
			networkStr:    "invalidnet",
			expectedError: ErrConfigUnknownNetwork,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			actualNetwork, err := GetNetwork(tc.networkStr)

			// then
			assert.Equal(t, tc.expectedNetwork, actualNetwork)
			assert.ErrorIs(t, err, tc.expectedError)
		})
	}
}
