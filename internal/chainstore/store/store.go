package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
)

var (
	ErrInvalidArgument          = errors.New("invalid argument")
	ErrConflict                 = errors.New("conflicting concurrent write, retry the operation")
	ErrInconsistentChain        = errors.New("chain heights are not contiguous")
	ErrHeightTaken              = errors.New("height is already taken")
	ErrFailedToOpenDB           = errors.New("failed to open database")
	ErrUnableToGetSQLConnection = errors.New("unable to get or create sql connection")
	ErrFailedToBeginTx          = errors.New("failed to begin transaction")
	ErrFailedToCommitTx         = errors.New("failed to commit transaction")
	ErrFailedToInsertBlock      = errors.New("failed to insert block")
	ErrFailedToInsertTxs        = errors.New("failed to insert transactions")
	ErrFailedToGetRows          = errors.New("failed to get rows")
	ErrFailedToDeleteRows       = errors.New("failed to delete rows")
	ErrFailedToMigrate          = errors.New("failed to run migrations")
)

// ChainStore persists a single linear chain of blocks.
//
// Lookups that find nothing return a nil block and a nil error.
type ChainStore interface {
	// Add stores block at height. The block hash is recomputed from the header.
	Add(ctx context.Context, block *wire.MsgBlock, height int64) error
	GetByHash(ctx context.Context, hash chainhash.Hash) (*wire.MsgBlock, int64, error)
	GetByHeight(ctx context.Context, height int64) (*wire.MsgBlock, error)
	GetFirst(ctx context.Context) (*wire.MsgBlock, error)
	GetLast(ctx context.Context) (*wire.MsgBlock, int64, error)
	// RemoveLast removes the tip and every transaction no other block references.
	RemoveLast(ctx context.Context) error

	GetStats(ctx context.Context) (*Stats, error)
	Ping(ctx context.Context) error
	Close() error
}

type Stats struct {
	// TipHeight is -1 for an empty chain.
	TipHeight         int64
	Blocks            int64
	Transactions      int64
	BlockTransactions int64
	Outputs           int64
	Inputs            int64
}

// ValidateAdd checks Add arguments before any storage access.
func ValidateAdd(block *wire.MsgBlock, height int64) error {
	if block == nil {
		return errors.Join(ErrInvalidArgument, errors.New("block is nil"))
	}

	return ValidateHeight(height)
}

func ValidateHeight(height int64) error {
	if height < 0 {
		return errors.Join(ErrInvalidArgument, errors.New("height is negative"))
	}

	return nil
}

// ValidateNextHeight checks that height directly extends a chain whose tip is at tip, -1 when empty.
// A taken height is a conflict with whoever added it first; ErrHeightTaken tells callers that
// repeating the same Add cannot succeed until the tip is removed.
func ValidateNextHeight(tip int64, height int64) error {
	switch {
	case height <= tip:
		return errors.Join(ErrConflict, ErrHeightTaken, fmt.Errorf("height %d, tip is at %d", height, tip))
	case height > tip+1:
		return errors.Join(ErrInconsistentChain, fmt.Errorf("height %d leaves a gap above tip %d", height, tip))
	}

	return nil
}
