package app

import (
	"io"
	"time"

	"github.com/libsv/go-p2p/wire"
	"gopkg.in/yaml.v3"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

type blockSummary struct {
	Hash         string    `yaml:"hash"`
	Height       int64     `yaml:"height"`
	Previous     string    `yaml:"previous"`
	MerkleRoot   string    `yaml:"merkleRoot"`
	Version      int32     `yaml:"version"`
	Bits         uint32    `yaml:"bits"`
	Nonce        uint32    `yaml:"nonce"`
	Time         time.Time `yaml:"time"`
	Transactions []string  `yaml:"transactions"`
}

func summarize(block *wire.MsgBlock, height int64) blockSummary {
	s := blockSummary{
		Hash:         block.BlockHash().String(),
		Height:       height,
		Previous:     block.Header.PrevBlock.String(),
		MerkleRoot:   block.Header.MerkleRoot.String(),
		Version:      block.Header.Version,
		Bits:         block.Header.Bits,
		Nonce:        block.Header.Nonce,
		Time:         block.Header.Timestamp.UTC(),
		Transactions: make([]string, len(block.Transactions)),
	}

	for i, tx := range block.Transactions {
		s.Transactions[i] = tx.TxHash().String()
	}

	return s
}

type tipSummary struct {
	Height            int64  `yaml:"height"`
	Hash              string `yaml:"hash,omitempty"`
	Blocks            int64  `yaml:"blocks"`
	Transactions      int64  `yaml:"transactions"`
	BlockTransactions int64  `yaml:"blockTransactions"`
	Outputs           int64  `yaml:"outputs"`
	Inputs            int64  `yaml:"inputs"`
}

func summarizeTip(tip *wire.MsgBlock, stats *store.Stats) tipSummary {
	s := tipSummary{
		Height:            stats.TipHeight,
		Blocks:            stats.Blocks,
		Transactions:      stats.Transactions,
		BlockTransactions: stats.BlockTransactions,
		Outputs:           stats.Outputs,
		Inputs:            stats.Inputs,
	}

	if tip != nil {
		s.Hash = tip.BlockHash().String()
	}

	return s
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(v)
	if err != nil {
		return err
	}

	return enc.Close()
}
