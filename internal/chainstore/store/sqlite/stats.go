package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

func (s *SQLite) GetStats(ctx context.Context) (*store.Stats, error) {
	stats := &store.Stats{}

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		if stats.TipHeight, err = tipHeight(tx); err != nil {
			return err
		}

		for _, c := range []struct {
			model any
			count *int64
		}{
			{&Block{}, &stats.Blocks},
			{&Transaction{}, &stats.Transactions},
			{&BlockTransaction{}, &stats.BlockTransactions},
			{&Output{}, &stats.Outputs},
			{&Input{}, &stats.Inputs},
		} {
			if err = tx.Model(c.model).Count(c.count).Error; err != nil {
				return errors.Join(store.ErrFailedToGetRows, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
