package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

// maxBindVars keeps IN lists and batched inserts below the SQLite variable limit.
const maxBindVars = 500

// Add inserts block at height, which must be directly above the current tip. Transactions
// which are already stored are only linked.
func (s *SQLite) Add(ctx context.Context, block *wire.MsgBlock, height int64) (err error) {
	rows, err := store.ToRows(block, height)
	if err != nil {
		return err
	}

	ctx, span := tracing.StartTracing(ctx, "Add", s.tracingEnabled, append(s.tracingAttributes, attribute.Int64("height", height), attribute.Int("txs", len(rows.Transactions)))...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var dropped int
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		tip, err := tipHeight(tx)
		if err != nil {
			return err
		}

		if err = store.ValidateNextHeight(tip, height); err != nil {
			return err
		}

		existing, err := existingTransactions(tx, rows.TransactionHashes())
		if err != nil {
			return err
		}

		dropped = store.DropExisting(rows, existing)

		if err = tx.Omit(clause.Associations).Create(blockToModel(rows)).Error; err != nil {
			return errors.Join(store.ErrFailedToInsertBlock, err)
		}

		txs, outputs, inputs := transactionsToModels(rows.NewTransactions())
		if err = createInBatches(tx, txs); err != nil {
			return err
		}
		if err = createInBatches(tx, outputs); err != nil {
			return err
		}
		if err = createInBatches(tx, inputs); err != nil {
			return err
		}

		return createInBatches(tx, linksToModels(rows.Transactions))
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Block added",
		slog.String("hash", rows.Hash.String()),
		slog.Int64("height", height),
		slog.Int("txs", len(rows.Transactions)),
		slog.Int("existingTxs", dropped),
	)

	return nil
}

func tipHeight(tx *gorm.DB) (int64, error) {
	var tip int64
	err := tx.Raw(`SELECT COALESCE(MAX(height), -1) FROM blocks`).Scan(&tip).Error
	if err != nil {
		return 0, errors.Join(store.ErrFailedToGetRows, err)
	}

	return tip, nil
}

// existingTransactions returns which of hashes are already stored.
func existingTransactions(tx *gorm.DB, hashes []chainhash.Hash) (map[chainhash.Hash]struct{}, error) {
	existing := make(map[chainhash.Hash]struct{})

	for chunk := range slices.Chunk(hashesToBytes(hashes), maxBindVars) {
		var found [][]byte
		err := tx.Model(&Transaction{}).Where("hash IN ?", chunk).Pluck("hash", &found).Error
		if err != nil {
			return nil, errors.Join(store.ErrFailedToGetRows, err)
		}

		for _, b := range found {
			h, err := toHash(b)
			if err != nil {
				return nil, err
			}
			existing[h] = struct{}{}
		}
	}

	return existing, nil
}

func createInBatches[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	err := tx.Omit(clause.Associations).CreateInBatches(rows, maxBindVars/8).Error
	if err != nil {
		return errors.Join(store.ErrFailedToInsertTxs, err)
	}

	return nil
}

func hashesToBytes(hashes []chainhash.Hash) [][]byte {
	b := make([][]byte, len(hashes))
	for i := range hashes {
		b[i] = hashes[i].CloneBytes()
	}

	return b
}
