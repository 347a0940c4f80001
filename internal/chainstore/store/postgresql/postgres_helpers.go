package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const blockColumns = `hash, height, version, bits, nonce, time, merkle_root`

func bytesOf(h chainhash.Hash) []byte {
	b := make([]byte, chainhash.HashSize)
	copy(b, h[:])
	return b
}

func hashesToBytes(hashes []chainhash.Hash) [][]byte {
	b := make([][]byte, len(hashes))
	for i, h := range hashes {
		b[i] = bytesOf(h)
	}
	return b
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

func toHash(b []byte) (chainhash.Hash, error) {
	h, err := chainhash.NewHash(b)
	if err != nil {
		return chainhash.Hash{}, errors.Join(store.ErrFailedToGetRows, err)
	}
	return *h, nil
}

// queryBlocks returns the block rows selected by predicate without their transactions.
func queryBlocks(ctx context.Context, q queryer, predicate string, args ...any) ([]*store.Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks ` + predicate

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(store.ErrFailedToGetRows, err)
	}
	defer rows.Close()

	blocks := make([]*store.Block, 0, 2)
	for rows.Next() {
		var (
			hash, merkleRoot []byte
			bits, nonce      int64
			blockTime        time.Time
			b                store.Block
		)

		err = rows.Scan(&hash, &b.Height, &b.Version, &bits, &nonce, &blockTime, &merkleRoot)
		if err != nil {
			return nil, errors.Join(store.ErrFailedToGetRows, err)
		}

		if b.Hash, err = toHash(hash); err != nil {
			return nil, err
		}
		if b.MerkleRoot, err = toHash(merkleRoot); err != nil {
			return nil, err
		}
		if b.Bits, err = safecast.ToUint32(bits); err != nil {
			return nil, errors.Join(store.ErrFailedToGetRows, fmt.Errorf("bits of block %s: %w", b.Hash, err))
		}
		if b.Nonce, err = safecast.ToUint32(nonce); err != nil {
			return nil, errors.Join(store.ErrFailedToGetRows, fmt.Errorf("nonce of block %s: %w", b.Hash, err))
		}
		b.Time = blockTime.UTC()

		blocks = append(blocks, &b)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(store.ErrFailedToGetRows, err)
	}

	return blocks, nil
}

// loadTransactions fills the transaction links of b, each with its outputs and inputs.
func loadTransactions(ctx context.Context, q queryer, b *store.Block) error {
	const qTxs = `
		SELECT bt.transaction_hash, bt.index, t.version, t.lock_time
		FROM block_transactions bt
		JOIN transactions t ON t.hash = bt.transaction_hash
		WHERE bt.block_hash = $1
		ORDER BY bt.index
	`

	rows, err := q.QueryContext(ctx, qTxs, bytesOf(b.Hash))
	if err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}
	defer rows.Close()

	txs := make(map[chainhash.Hash]*store.Transaction)
	b.Transactions = b.Transactions[:0]

	for rows.Next() {
		var (
			hash     []byte
			lockTime int64
			link     = store.BlockTransaction{BlockHash: b.Hash}
			tx       store.Transaction
		)

		if err = rows.Scan(&hash, &link.Index, &tx.Version, &lockTime); err != nil {
			return errors.Join(store.ErrFailedToGetRows, err)
		}

		if tx.Hash, err = toHash(hash); err != nil {
			return err
		}
		if tx.LockTime, err = safecast.ToUint32(lockTime); err != nil {
			return errors.Join(store.ErrFailedToGetRows, fmt.Errorf("lock time of transaction %s: %w", tx.Hash, err))
		}

		link.TransactionHash = tx.Hash
		link.Transaction = &tx
		txs[tx.Hash] = &tx
		b.Transactions = append(b.Transactions, link)
	}

	if err = rows.Err(); err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}

	if err = loadOutputs(ctx, q, b.Hash, txs); err != nil {
		return err
	}

	return loadInputs(ctx, q, b.Hash, txs)
}

func loadOutputs(ctx context.Context, q queryer, blockHash chainhash.Hash, txs map[chainhash.Hash]*store.Transaction) error {
	const qOutputs = `
		SELECT o.transaction_hash, o.index, o.value, o.script
		FROM outputs o
		JOIN block_transactions bt ON bt.transaction_hash = o.transaction_hash
		WHERE bt.block_hash = $1
		ORDER BY o.transaction_hash, o.index
	`

	rows, err := q.QueryContext(ctx, qOutputs, bytesOf(blockHash))
	if err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hash []byte
			o    store.Output
		)

		if err = rows.Scan(&hash, &o.Index, &o.Value, &o.Script); err != nil {
			return errors.Join(store.ErrFailedToGetRows, err)
		}

		if o.TransactionHash, err = toHash(hash); err != nil {
			return err
		}

		tx, found := txs[o.TransactionHash]
		if !found {
			return errors.Join(store.ErrInconsistentChain, fmt.Errorf("output of unlinked transaction %s", o.TransactionHash))
		}
		tx.Outputs = append(tx.Outputs, o)
	}

	if err = rows.Err(); err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}

	return nil
}

func loadInputs(ctx context.Context, q queryer, blockHash chainhash.Hash, txs map[chainhash.Hash]*store.Transaction) error {
	const qInputs = `
		SELECT i.transaction_hash, i.index, i.output_hash, i.output_index, i.script, i.sequence
		FROM inputs i
		JOIN block_transactions bt ON bt.transaction_hash = i.transaction_hash
		WHERE bt.block_hash = $1
		ORDER BY i.transaction_hash, i.index
	`

	rows, err := q.QueryContext(ctx, qInputs, bytesOf(blockHash))
	if err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hash, outputHash      []byte
			outputIndex, sequence int64
			in                    store.Input
		)

		if err = rows.Scan(&hash, &in.Index, &outputHash, &outputIndex, &in.Script, &sequence); err != nil {
			return errors.Join(store.ErrFailedToGetRows, err)
		}

		if in.TransactionHash, err = toHash(hash); err != nil {
			return err
		}
		if in.OutputHash, err = toHash(outputHash); err != nil {
			return err
		}
		if in.OutputIndex, err = safecast.ToUint32(outputIndex); err != nil {
			return errors.Join(store.ErrFailedToGetRows, fmt.Errorf("output index of %s:%d: %w", in.TransactionHash, in.Index, err))
		}
		if in.Sequence, err = safecast.ToUint32(sequence); err != nil {
			return errors.Join(store.ErrFailedToGetRows, fmt.Errorf("sequence of %s:%d: %w", in.TransactionHash, in.Index, err))
		}

		tx, found := txs[in.TransactionHash]
		if !found {
			return errors.Join(store.ErrInconsistentChain, fmt.Errorf("input of unlinked transaction %s", in.TransactionHash))
		}
		tx.Inputs = append(tx.Inputs, in)
	}

	if err = rows.Err(); err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}

	return nil
}

// reconstruct loads the transactions of data and maps it back to a block. previous must be
// the block directly below data, or nil at genesis.
func reconstruct(ctx context.Context, q queryer, data *store.Block, previous *store.Block) (*wire.MsgBlock, error) {
	if data.Height > 0 && (previous == nil || previous.Height != data.Height-1) {
		return nil, errors.Join(store.ErrInconsistentChain, fmt.Errorf("no block below height %d", data.Height))
	}

	if err := loadTransactions(ctx, q, data); err != nil {
		return nil, err
	}

	return store.FromRows(data, previous)
}
