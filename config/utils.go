package config

import (
	"errors"
	"fmt"

	"github.com/libsv/go-p2p/wire"
)

var ErrConfigUnknownNetwork = errors.New("unknown network")

// GetNetwork selects the chain parameters for a configured network name.
func GetNetwork(networkStr string) (wire.BitcoinNet, error) {
	switch networkStr {
	case "mainnet":
		return wire.MainNet, nil
	case "testnet":
		return wire.TestNet3, nil
	case "regtest":
		return wire.TestNet, nil
	}

	return 0, errors.Join(ErrConfigUnknownNetwork, fmt.Errorf("network: %s", networkStr))
}
