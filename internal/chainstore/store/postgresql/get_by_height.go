package postgresql

import (
	"context"
	"database/sql"

	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// GetByHeight returns the block at height. The block and its predecessor are fetched in one query.
func (p *PostgreSQL) GetByHeight(ctx context.Context, height int64) (block *wire.MsgBlock, err error) {
	if err = store.ValidateHeight(height); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartTracing(ctx, "GetByHeight", p.tracingEnabled, append(p.tracingAttributes, attribute.Int64("height", height))...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = p.withTx(ctx, sql.LevelReadCommitted, true, func(tx *sql.Tx) error {
		rows, err := queryBlocks(ctx, tx, "WHERE height = $1 OR height = $1 - 1 ORDER BY height DESC", height)
		if err != nil {
			return err
		}

		if len(rows) == 0 || rows[0].Height != height {
			return nil
		}

		var previous *store.Block
		if len(rows) > 1 {
			previous = rows[1]
		}

		block, err = reconstruct(ctx, tx, rows[0], previous)
		return err
	})
	if err != nil {
		return nil, err
	}

	return block, nil
}
