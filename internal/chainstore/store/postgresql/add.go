package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// Add inserts block at height, which must be directly above the current tip. Transactions
// which are already stored are only linked.
func (p *PostgreSQL) Add(ctx context.Context, block *wire.MsgBlock, height int64) (err error) {
	rows, err := store.ToRows(block, height)
	if err != nil {
		return err
	}

	ctx, span := tracing.StartTracing(ctx, "Add", p.tracingEnabled, append(p.tracingAttributes, attribute.Int64("height", height), attribute.Int("txs", len(rows.Transactions)))...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var dropped int
	err = p.withTx(ctx, sql.LevelSerializable, false, func(tx *sql.Tx) error {
		if err := checkExtendsTip(ctx, tx, height); err != nil {
			return err
		}

		existing, err := existingTransactions(ctx, tx, rows.TransactionHashes())
		if err != nil {
			return err
		}

		dropped = store.DropExisting(rows, existing)

		if err = insertBlock(ctx, tx, rows); err != nil {
			return err
		}

		if err = insertTransactions(ctx, tx, rows.NewTransactions()); err != nil {
			return err
		}

		return insertBlockTransactions(ctx, tx, rows.Transactions)
	})
	if err != nil {
		return err
	}

	p.logger.Debug("Block added",
		slog.String("hash", rows.Hash.String()),
		slog.Int64("height", height),
		slog.Int("txs", len(rows.Transactions)),
		slog.Int("existingTxs", dropped),
	)

	return nil
}

// checkExtendsTip rejects a height which would leave a gap above the current tip or which is
// already taken.
func checkExtendsTip(ctx context.Context, tx *sql.Tx, height int64) error {
	var tip int64
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(height), -1) FROM blocks`).Scan(&tip)
	if err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}

	return store.ValidateNextHeight(tip, height)
}

// existingTransactions returns which of hashes are already stored, in one query.
func existingTransactions(ctx context.Context, tx *sql.Tx, hashes []chainhash.Hash) (map[chainhash.Hash]struct{}, error) {
	existing := make(map[chainhash.Hash]struct{})
	if len(hashes) == 0 {
		return existing, nil
	}

	const q = `SELECT hash FROM transactions WHERE hash = ANY($1::BYTEA[])`

	rows, err := tx.QueryContext(ctx, q, hashesToBytes(hashes))
	if err != nil {
		return nil, errors.Join(store.ErrFailedToGetRows, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b []byte
		if err = rows.Scan(&b); err != nil {
			return nil, errors.Join(store.ErrFailedToGetRows, err)
		}

		hash, err := chainhash.NewHash(b)
		if err != nil {
			return nil, errors.Join(store.ErrFailedToGetRows, err)
		}

		existing[*hash] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(store.ErrFailedToGetRows, err)
	}

	return existing, nil
}

func insertBlock(ctx context.Context, tx *sql.Tx, b *store.Block) error {
	const q = `
		INSERT INTO blocks (hash, height, version, bits, nonce, time, merkle_root)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.ExecContext(ctx, q,
		b.Hash[:],
		b.Height,
		b.Version,
		int64(b.Bits),
		int64(b.Nonce),
		b.Time,
		b.MerkleRoot[:],
	)
	if err != nil {
		return errors.Join(store.ErrFailedToInsertBlock, err)
	}

	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, txs []*store.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	hashes := make([][]byte, len(txs))
	versions := make([]int32, len(txs))
	lockTimes := make([]int64, len(txs))

	var outputs []store.Output
	var inputs []store.Input

	for i, t := range txs {
		hashes[i] = bytesOf(t.Hash)
		versions[i] = t.Version
		lockTimes[i] = int64(t.LockTime)

		outputs = append(outputs, t.Outputs...)
		inputs = append(inputs, t.Inputs...)
	}

	const qTxs = `
		INSERT INTO transactions (hash, version, lock_time)
		SELECT * FROM UNNEST($1::BYTEA[], $2::INTEGER[], $3::BIGINT[])
	`

	_, err := tx.ExecContext(ctx, qTxs, hashes, versions, lockTimes)
	if err != nil {
		return errors.Join(store.ErrFailedToInsertTxs, err)
	}

	if err = insertOutputs(ctx, tx, outputs); err != nil {
		return err
	}

	return insertInputs(ctx, tx, inputs)
}

func insertOutputs(ctx context.Context, tx *sql.Tx, outputs []store.Output) error {
	if len(outputs) == 0 {
		return nil
	}

	txHashes := make([][]byte, len(outputs))
	indexes := make([]int64, len(outputs))
	values := make([]int64, len(outputs))
	scripts := make([][]byte, len(outputs))

	for i, o := range outputs {
		txHashes[i] = bytesOf(o.TransactionHash)
		indexes[i] = o.Index
		values[i] = o.Value
		scripts[i] = nonNil(o.Script)
	}

	const q = `
		INSERT INTO outputs (transaction_hash, index, value, script)
		SELECT * FROM UNNEST($1::BYTEA[], $2::BIGINT[], $3::BIGINT[], $4::BYTEA[])
	`

	_, err := tx.ExecContext(ctx, q, txHashes, indexes, values, scripts)
	if err != nil {
		return errors.Join(store.ErrFailedToInsertTxs, err)
	}

	return nil
}

func insertInputs(ctx context.Context, tx *sql.Tx, inputs []store.Input) error {
	if len(inputs) == 0 {
		return nil
	}

	txHashes := make([][]byte, len(inputs))
	indexes := make([]int64, len(inputs))
	outputHashes := make([][]byte, len(inputs))
	outputIndexes := make([]int64, len(inputs))
	scripts := make([][]byte, len(inputs))
	sequences := make([]int64, len(inputs))

	for i, in := range inputs {
		txHashes[i] = bytesOf(in.TransactionHash)
		indexes[i] = in.Index
		outputHashes[i] = bytesOf(in.OutputHash)
		outputIndexes[i] = int64(in.OutputIndex)
		scripts[i] = nonNil(in.Script)
		sequences[i] = int64(in.Sequence)
	}

	const q = `
		INSERT INTO inputs (transaction_hash, index, output_hash, output_index, script, sequence)
		SELECT * FROM UNNEST($1::BYTEA[], $2::BIGINT[], $3::BYTEA[], $4::BIGINT[], $5::BYTEA[], $6::BIGINT[])
	`

	_, err := tx.ExecContext(ctx, q, txHashes, indexes, outputHashes, outputIndexes, scripts, sequences)
	if err != nil {
		return errors.Join(store.ErrFailedToInsertTxs, err)
	}

	return nil
}

func insertBlockTransactions(ctx context.Context, tx *sql.Tx, links []store.BlockTransaction) error {
	if len(links) == 0 {
		return nil
	}

	blockHashes := make([][]byte, len(links))
	txHashes := make([][]byte, len(links))
	indexes := make([]int64, len(links))

	for i, l := range links {
		blockHashes[i] = bytesOf(l.BlockHash)
		txHashes[i] = bytesOf(l.TransactionHash)
		indexes[i] = l.Index
	}

	const q = `
		INSERT INTO block_transactions (block_hash, transaction_hash, index)
		SELECT * FROM UNNEST($1::BYTEA[], $2::BYTEA[], $3::BIGINT[])
	`

	_, err := tx.ExecContext(ctx, q, blockHashes, txHashes, indexes)
	if err != nil {
		return errors.Join(store.ErrFailedToInsertTxs, err)
	}

	return nil
}
