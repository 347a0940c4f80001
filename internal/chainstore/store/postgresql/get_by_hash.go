package postgresql

import (
	"context"
	"database/sql"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// GetByHash returns the block with the given hash and its height. The block and its
// predecessor are read from one snapshot.
func (p *PostgreSQL) GetByHash(ctx context.Context, hash chainhash.Hash) (block *wire.MsgBlock, height int64, err error) {
	ctx, span := tracing.StartTracing(ctx, "GetByHash", p.tracingEnabled, append(p.tracingAttributes, attribute.String("hash", hash.String()))...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = p.withTx(ctx, sql.LevelRepeatableRead, true, func(tx *sql.Tx) error {
		rows, err := queryBlocks(ctx, tx, "WHERE hash = $1", bytesOf(hash))
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		data := rows[0]

		var previous *store.Block
		if data.Height > 0 {
			prevRows, err := queryBlocks(ctx, tx, "WHERE height = $1", data.Height-1)
			if err != nil {
				return err
			}
			if len(prevRows) > 0 {
				previous = prevRows[0]
			}
		}

		block, err = reconstruct(ctx, tx, data, previous)
		if err != nil {
			return err
		}
		height = data.Height

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return block, height, nil
}
