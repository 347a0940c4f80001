// Package storetest holds the behaviour every store.ChainStore implementation has to show, and
// helpers to build blocks for it.
package storetest

import (
	"encoding/binary"
	"time"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
)

const (
	coinbaseIndex = 0xffffffff
	satoshis      = 5_000_000_000
)

// NewTx returns a transaction which spends output 0 of spends, or a coinbase when spends is nil.
// seed makes the transaction unique.
func NewTx(seed uint32, spends *wire.MsgTx, values ...int64) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.LockTime = seed

	prev := wire.OutPoint{Index: coinbaseIndex}
	if spends != nil {
		prev = wire.OutPoint{Hash: spends.TxHash(), Index: 0}
	}

	script := make([]byte, 4)
	binary.LittleEndian.PutUint32(script, seed)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: prev,
		SignatureScript:  script,
		Sequence:         0xffffffff,
	})

	if len(values) == 0 {
		values = []int64{satoshis}
	}
	for i, v := range values {
		tx.AddTxOut(wire.NewTxOut(v, []byte{0x51, byte(i), byte(seed)}))
	}

	return tx
}

// NewBlock returns a block on top of previous, nil for genesis, holding txs.
func NewBlock(previous *wire.MsgBlock, nonce uint32, txs ...*wire.MsgTx) *wire.MsgBlock {
	header := wire.BlockHeader{
		Version:   1,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(nonce) * 10 * time.Minute),
		Bits:      0x207fffff,
		Nonce:     nonce,
	}

	if previous != nil {
		header.PrevBlock = previous.BlockHash()
	}

	if len(txs) > 0 {
		header.MerkleRoot = txs[0].TxHash()
	}

	return &wire.MsgBlock{Header: header, Transactions: txs}
}

// NewChain returns n linked blocks, each with a coinbase and a transaction spending the
// previous coinbase.
func NewChain(n int) []*wire.MsgBlock {
	blocks := make([]*wire.MsgBlock, 0, n)

	var (
		previous *wire.MsgBlock
		coinbase *wire.MsgTx
	)
	for i := range n {
		nonce := uint32(i + 1) // nolint: gosec // small test values
		txs := []*wire.MsgTx{NewTx(nonce*100, nil)}
		if coinbase != nil {
			txs = append(txs, NewTx(nonce*100+1, coinbase, 1_000, 2_000, 3_000))
		}
		coinbase = txs[0]

		previous = NewBlock(previous, nonce, txs...)
		blocks = append(blocks, previous)
	}

	return blocks
}

// ZeroHash is the previous block hash of a genesis block.
var ZeroHash = chainhash.Hash{}
