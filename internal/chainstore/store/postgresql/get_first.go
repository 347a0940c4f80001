package postgresql

import (
	"context"
	"database/sql"

	"github.com/libsv/go-p2p/wire"

	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// GetFirst returns the genesis block, the block at height 0.
func (p *PostgreSQL) GetFirst(ctx context.Context) (block *wire.MsgBlock, err error) {
	ctx, span := tracing.StartTracing(ctx, "GetFirst", p.tracingEnabled, p.tracingAttributes...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = p.withTx(ctx, sql.LevelReadCommitted, true, func(tx *sql.Tx) error {
		rows, err := queryBlocks(ctx, tx, "WHERE height = 0")
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		block, err = reconstruct(ctx, tx, rows[0], nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return block, nil
}
