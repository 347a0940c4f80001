package store

import (
	"bytes"
	"cmp"
	"slices"
	"time"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

// Block is the persisted form of a block header at a chain height.
type Block struct {
	Hash       chainhash.Hash
	Height     int64
	Version    int32
	Bits       uint32
	Nonce      uint32
	Time       time.Time
	MerkleRoot chainhash.Hash

	Transactions []BlockTransaction
}

// BlockTransaction links a block to a transaction at position Index.
type BlockTransaction struct {
	BlockHash       chainhash.Hash
	TransactionHash chainhash.Hash
	Index           int64

	// Transaction is nil when the body is already stored and must not be inserted again.
	Transaction *Transaction
}

type Transaction struct {
	Hash     chainhash.Hash
	Version  int32
	LockTime uint32

	Outputs []Output
	Inputs  []Input
}

type Output struct {
	TransactionHash chainhash.Hash
	Index           int64
	Value           int64
	Script          []byte
}

type Input struct {
	TransactionHash chainhash.Hash
	Index           int64
	OutputHash      chainhash.Hash
	OutputIndex     uint32
	Script          []byte
	Sequence        uint32
}

// CompareOutputs orders outputs by transaction hash bytes, then by index.
func CompareOutputs(a, b Output) int {
	if c := bytes.Compare(a.TransactionHash[:], b.TransactionHash[:]); c != 0 {
		return c
	}

	return cmp.Compare(a.Index, b.Index)
}

// OutputsEqual reports whether a and b are the same output, which is decided by the key alone.
func OutputsEqual(a, b Output) bool {
	return CompareOutputs(a, b) == 0
}

// CompareInputs orders inputs by transaction hash bytes, then by index.
func CompareInputs(a, b Input) int {
	if c := bytes.Compare(a.TransactionHash[:], b.TransactionHash[:]); c != 0 {
		return c
	}

	return cmp.Compare(a.Index, b.Index)
}

func InputsEqual(a, b Input) bool {
	return CompareInputs(a, b) == 0
}

func SortOutputs(outputs []Output) {
	slices.SortStableFunc(outputs, CompareOutputs)
}

func SortInputs(inputs []Input) {
	slices.SortStableFunc(inputs, CompareInputs)
}

func sortBlockTransactions(links []BlockTransaction) {
	slices.SortStableFunc(links, func(a, b BlockTransaction) int {
		return cmp.Compare(a.Index, b.Index)
	})
}
