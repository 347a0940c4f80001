package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"gorm.io/gorm"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// RemoveLast deletes the tip block with its links, then every transaction no block links to anymore.
func (s *SQLite) RemoveLast(ctx context.Context) (err error) {
	ctx, span := tracing.StartTracing(ctx, "RemoveLast", s.tracingEnabled, s.tracingAttributes...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var (
		tip      *store.Block
		orphaned [][]byte
	)

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		rows, err := findBlocks(tx.Order("height DESC").Limit(1))
		if err != nil || len(rows) == 0 {
			return err
		}
		tip = rows[0]
		tipHash := tip.Hash.CloneBytes()

		var linked [][]byte
		err = tx.Model(&BlockTransaction{}).Where("block_hash = ?", tipHash).Pluck("transaction_hash", &linked).Error
		if err != nil {
			return errors.Join(store.ErrFailedToGetRows, err)
		}

		if err = tx.Where("block_hash = ?", tipHash).Delete(&BlockTransaction{}).Error; err != nil {
			return errors.Join(store.ErrFailedToDeleteRows, err)
		}

		for chunk := range slices.Chunk(linked, maxBindVars) {
			var unreferenced [][]byte
			err = tx.Model(&Transaction{}).
				Where("hash IN ?", chunk).
				Where("NOT EXISTS (SELECT 1 FROM block_transactions bt WHERE bt.transaction_hash = transactions.hash)").
				Pluck("hash", &unreferenced).Error
			if err != nil {
				return errors.Join(store.ErrFailedToGetRows, err)
			}

			if err = deleteTransactions(tx, unreferenced); err != nil {
				return err
			}
			orphaned = append(orphaned, unreferenced...)
		}

		if err = tx.Where("hash = ?", tipHash).Delete(&Block{}).Error; err != nil {
			return errors.Join(store.ErrFailedToDeleteRows, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if tip == nil {
		s.logger.Debug("No block to remove")
		return nil
	}

	s.logger.Debug("Block removed",
		slog.String("hash", tip.Hash.String()),
		slog.Int64("height", tip.Height),
		slog.Int("removedTxs", len(orphaned)),
	)

	return nil
}

// deleteTransactions deletes transactions together with the outputs and inputs they own.
func deleteTransactions(tx *gorm.DB, hashes [][]byte) error {
	if len(hashes) == 0 {
		return nil
	}

	if err := tx.Where("transaction_hash IN ?", hashes).Delete(&Output{}).Error; err != nil {
		return errors.Join(store.ErrFailedToDeleteRows, err)
	}

	if err := tx.Where("transaction_hash IN ?", hashes).Delete(&Input{}).Error; err != nil {
		return errors.Join(store.ErrFailedToDeleteRows, err)
	}

	if err := tx.Where("hash IN ?", hashes).Delete(&Transaction{}).Error; err != nil {
		return errors.Join(store.ErrFailedToDeleteRows, err)
	}

	return nil
}
