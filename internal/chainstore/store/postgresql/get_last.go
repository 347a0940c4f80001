package postgresql

import (
	"context"
	"database/sql"

	"github.com/libsv/go-p2p/wire"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// GetLast returns the tip of the chain and its height.
func (p *PostgreSQL) GetLast(ctx context.Context) (block *wire.MsgBlock, height int64, err error) {
	ctx, span := tracing.StartTracing(ctx, "GetLast", p.tracingEnabled, p.tracingAttributes...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = p.withTx(ctx, sql.LevelReadCommitted, true, func(tx *sql.Tx) error {
		rows, err := queryBlocks(ctx, tx, "ORDER BY height DESC LIMIT 2")
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		var previous *store.Block
		if len(rows) > 1 {
			previous = rows[1]
		}

		block, err = reconstruct(ctx, tx, rows[0], previous)
		if err != nil {
			return err
		}
		height = rows[0].Height

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return block, height, nil
}
