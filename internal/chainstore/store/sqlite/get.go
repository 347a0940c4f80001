package sqlite

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

func (s *SQLite) GetByHash(ctx context.Context, hash chainhash.Hash) (block *wire.MsgBlock, height int64, err error) {
	ctx, span := tracing.StartTracing(ctx, "GetByHash", s.tracingEnabled, append(s.tracingAttributes, attribute.String("hash", hash.String()))...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		rows, err := findBlocks(tx.Where("hash = ?", hash.CloneBytes()))
		if err != nil || len(rows) == 0 {
			return err
		}

		var previous *store.Block
		if rows[0].Height > 0 {
			prevRows, err := findBlocks(tx.Where("height = ?", rows[0].Height-1))
			if err != nil {
				return err
			}
			if len(prevRows) > 0 {
				previous = prevRows[0]
			}
		}

		block, err = reconstruct(tx, rows[0], previous)
		height = rows[0].Height

		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return block, height, nil
}

func (s *SQLite) GetByHeight(ctx context.Context, height int64) (block *wire.MsgBlock, err error) {
	if err = store.ValidateHeight(height); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartTracing(ctx, "GetByHeight", s.tracingEnabled, append(s.tracingAttributes, attribute.Int64("height", height))...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		rows, err := findBlocks(tx.Where("height = ? OR height = ?", height, height-1).Order("height DESC"))
		if err != nil || len(rows) == 0 || rows[0].Height != height {
			return err
		}

		var previous *store.Block
		if len(rows) > 1 {
			previous = rows[1]
		}

		block, err = reconstruct(tx, rows[0], previous)
		return err
	})
	if err != nil {
		return nil, err
	}

	return block, nil
}

func (s *SQLite) GetFirst(ctx context.Context) (block *wire.MsgBlock, err error) {
	ctx, span := tracing.StartTracing(ctx, "GetFirst", s.tracingEnabled, s.tracingAttributes...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		rows, err := findBlocks(tx.Where("height = ?", 0))
		if err != nil || len(rows) == 0 {
			return err
		}

		block, err = reconstruct(tx, rows[0], nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return block, nil
}

func (s *SQLite) GetLast(ctx context.Context) (block *wire.MsgBlock, height int64, err error) {
	ctx, span := tracing.StartTracing(ctx, "GetLast", s.tracingEnabled, s.tracingAttributes...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		rows, err := findBlocks(tx.Order("height DESC").Limit(2))
		if err != nil || len(rows) == 0 {
			return err
		}

		var previous *store.Block
		if len(rows) > 1 {
			previous = rows[1]
		}

		block, err = reconstruct(tx, rows[0], previous)
		height = rows[0].Height

		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return block, height, nil
}

func findBlocks(query *gorm.DB) ([]*store.Block, error) {
	var models []Block
	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Join(store.ErrFailedToGetRows, err)
	}

	blocks := make([]*store.Block, len(models))
	for i, m := range models {
		b, err := blockFromModel(m)
		if err != nil {
			return nil, err
		}
		blocks[i] = b
	}

	return blocks, nil
}

// reconstruct loads the transactions of data and maps it back to a block. previous must be the
// block directly below data, or nil at genesis.
func reconstruct(tx *gorm.DB, data *store.Block, previous *store.Block) (*wire.MsgBlock, error) {
	if data.Height > 0 && (previous == nil || previous.Height != data.Height-1) {
		return nil, errors.Join(store.ErrInconsistentChain, fmt.Errorf("no block below height %d", data.Height))
	}

	if err := loadTransactions(tx, data); err != nil {
		return nil, err
	}

	return store.FromRows(data, previous)
}

func loadTransactions(tx *gorm.DB, b *store.Block) error {
	var links []BlockTransaction
	if err := tx.Where("block_hash = ?", b.Hash.CloneBytes()).Find(&links).Error; err != nil {
		return errors.Join(store.ErrFailedToGetRows, err)
	}

	hashes := make([][]byte, len(links))
	for i, l := range links {
		hashes[i] = l.TransactionHash
	}

	txs := make(map[chainhash.Hash]*store.Transaction, len(links))

	for chunk := range slices.Chunk(hashes, maxBindVars) {
		var (
			txModels []Transaction
			outputs  []Output
			inputs   []Input
		)

		if err := tx.Where("hash IN ?", chunk).Find(&txModels).Error; err != nil {
			return errors.Join(store.ErrFailedToGetRows, err)
		}
		for _, m := range txModels {
			hash, err := toHash(m.Hash)
			if err != nil {
				return err
			}
			txs[hash] = &store.Transaction{Hash: hash, Version: m.Version, LockTime: m.LockTime}
		}

		if err := tx.Where("transaction_hash IN ?", chunk).Find(&outputs).Error; err != nil {
			return errors.Join(store.ErrFailedToGetRows, err)
		}
		if err := addOutputs(txs, outputs); err != nil {
			return err
		}

		if err := tx.Where("transaction_hash IN ?", chunk).Find(&inputs).Error; err != nil {
			return errors.Join(store.ErrFailedToGetRows, err)
		}
		if err := addInputs(txs, inputs); err != nil {
			return err
		}
	}

	b.Transactions = make([]store.BlockTransaction, len(links))
	for i, l := range links {
		hash, err := toHash(l.TransactionHash)
		if err != nil {
			return err
		}

		b.Transactions[i] = store.BlockTransaction{
			BlockHash:       b.Hash,
			TransactionHash: hash,
			Index:           l.Index,
			Transaction:     txs[hash],
		}
	}

	return nil
}

func addOutputs(txs map[chainhash.Hash]*store.Transaction, outputs []Output) error {
	for _, o := range outputs {
		hash, err := toHash(o.TransactionHash)
		if err != nil {
			return err
		}

		tx, found := txs[hash]
		if !found {
			return errors.Join(store.ErrInconsistentChain, fmt.Errorf("output of unlinked transaction %s", hash))
		}

		tx.Outputs = append(tx.Outputs, store.Output{
			TransactionHash: hash,
			Index:           o.Index,
			Value:           o.Value,
			Script:          o.Script,
		})
	}

	return nil
}

func addInputs(txs map[chainhash.Hash]*store.Transaction, inputs []Input) error {
	for _, in := range inputs {
		hash, err := toHash(in.TransactionHash)
		if err != nil {
			return err
		}

		outputHash, err := toHash(in.OutputHash)
		if err != nil {
			return err
		}

		tx, found := txs[hash]
		if !found {
			return errors.Join(store.ErrInconsistentChain, fmt.Errorf("input of unlinked transaction %s", hash))
		}

		tx.Inputs = append(tx.Inputs, store.Input{
			TransactionHash: hash,
			Index:           in.Index,
			OutputHash:      outputHash,
			OutputIndex:     in.OutputIndex,
			Script:          in.Script,
			Sequence:        in.Sequence,
		})
	}

	return nil
}
