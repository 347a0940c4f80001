package postgresql

import (
	"context"
	"errors"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

func (p *PostgreSQL) GetStats(ctx context.Context) (*store.Stats, error) {
	const q = `
		SELECT
			(SELECT COALESCE(MAX(height), -1) FROM blocks),
			(SELECT COUNT(*) FROM blocks),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM block_transactions),
			(SELECT COUNT(*) FROM outputs),
			(SELECT COUNT(*) FROM inputs)
	`

	stats := &store.Stats{}

	err := p.db.QueryRowContext(ctx, q).Scan(
		&stats.TipHeight,
		&stats.Blocks,
		&stats.Transactions,
		&stats.BlockTransactions,
		&stats.Outputs,
		&stats.Inputs,
	)
	if err != nil {
		return nil, withContextErr(ctx, errors.Join(store.ErrFailedToGetRows, err))
	}

	return stats, nil
}
