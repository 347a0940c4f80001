package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/libsv/go-p2p/chaincfg/chainhash"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// RemoveLast deletes the tip block with its links. Transactions which are no longer linked to
// any block are deleted together with their outputs and inputs.
func (p *PostgreSQL) RemoveLast(ctx context.Context) (err error) {
	ctx, span := tracing.StartTracing(ctx, "RemoveLast", p.tracingEnabled, p.tracingAttributes...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var (
		tip      *store.Block
		orphaned []chainhash.Hash
	)

	err = p.withTx(ctx, sql.LevelSerializable, false, func(tx *sql.Tx) error {
		rows, err := queryBlocks(ctx, tx, "ORDER BY height DESC LIMIT 1")
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}
		tip = rows[0]

		linked, err := deleteBlockTransactions(ctx, tx, tip.Hash)
		if err != nil {
			return err
		}

		orphaned, err = unreferencedTransactions(ctx, tx, linked)
		if err != nil {
			return err
		}

		if err = deleteTransactions(ctx, tx, orphaned); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM blocks WHERE hash = $1`, bytesOf(tip.Hash))
		if err != nil {
			return errors.Join(store.ErrFailedToDeleteRows, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if tip == nil {
		p.logger.Debug("No block to remove")
		return nil
	}

	p.logger.Debug("Block removed",
		slog.String("hash", tip.Hash.String()),
		slog.Int64("height", tip.Height),
		slog.Int("removedTxs", len(orphaned)),
	)

	return nil
}

// deleteBlockTransactions deletes the links of a block and returns the hashes of the transactions
// which were linked.
func deleteBlockTransactions(ctx context.Context, tx *sql.Tx, blockHash chainhash.Hash) ([]chainhash.Hash, error) {
	const q = `DELETE FROM block_transactions WHERE block_hash = $1 RETURNING transaction_hash`

	rows, err := tx.QueryContext(ctx, q, bytesOf(blockHash))
	if err != nil {
		return nil, errors.Join(store.ErrFailedToDeleteRows, err)
	}

	return scanHashes(rows, store.ErrFailedToDeleteRows)
}

// unreferencedTransactions returns those of hashes which no block links to anymore.
func unreferencedTransactions(ctx context.Context, tx *sql.Tx, hashes []chainhash.Hash) ([]chainhash.Hash, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	const q = `
		SELECT h.hash FROM UNNEST($1::BYTEA[]) AS h(hash)
		WHERE NOT EXISTS (
			SELECT 1 FROM block_transactions bt WHERE bt.transaction_hash = h.hash
		)
	`

	rows, err := tx.QueryContext(ctx, q, hashesToBytes(hashes))
	if err != nil {
		return nil, errors.Join(store.ErrFailedToGetRows, err)
	}

	return scanHashes(rows, store.ErrFailedToGetRows)
}

// deleteTransactions deletes transactions with their outputs and inputs. The owned rows go first.
func deleteTransactions(ctx context.Context, tx *sql.Tx, hashes []chainhash.Hash) error {
	if len(hashes) == 0 {
		return nil
	}

	arg := hashesToBytes(hashes)

	for _, q := range []string{
		`DELETE FROM outputs WHERE transaction_hash = ANY($1::BYTEA[])`,
		`DELETE FROM inputs WHERE transaction_hash = ANY($1::BYTEA[])`,
		`DELETE FROM transactions WHERE hash = ANY($1::BYTEA[])`,
	} {
		if _, err := tx.ExecContext(ctx, q, arg); err != nil {
			return errors.Join(store.ErrFailedToDeleteRows, err)
		}
	}

	return nil
}

func scanHashes(rows *sql.Rows, errKind error) ([]chainhash.Hash, error) {
	defer rows.Close()

	var hashes []chainhash.Hash
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, errors.Join(errKind, err)
		}

		h, err := toHash(b)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(errKind, err)
	}

	return hashes, nil
}
