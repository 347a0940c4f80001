package store

import (
	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

// TransactionHashes returns the hashes of all transactions linked to the block in index order.
func (b *Block) TransactionHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(b.Transactions))
	for i, link := range b.Transactions {
		hashes[i] = link.TransactionHash
	}

	return hashes
}

// NewTransactions returns the transaction bodies that still have to be inserted.
func (b *Block) NewTransactions() []*Transaction {
	txs := make([]*Transaction, 0, len(b.Transactions))
	for _, link := range b.Transactions {
		if link.Transaction != nil {
			txs = append(txs, link.Transaction)
		}
	}

	return txs
}

// DropExisting clears the body of every linked transaction whose hash is in existing.
// The links themselves, including their index, are kept.
func DropExisting(b *Block, existing map[chainhash.Hash]struct{}) (dropped int) {
	for i := range b.Transactions {
		if _, found := existing[b.Transactions[i].TransactionHash]; !found {
			continue
		}

		b.Transactions[i].Transaction = nil
		dropped++
	}

	return dropped
}
