// Package blocksync keeps a store.ChainStore in line with an external source of blocks. New
// blocks are added in height order. When the source has switched to another branch the stored
// tip is removed block by block down to the fork point first.
package blocksync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

const (
	pollIntervalDefault    = 10 * time.Second
	maxRetryElapsedDefault = time.Minute
)

var (
	ErrFailedToGetBlockCount = errors.New("failed to get block count from source")
	ErrFailedToGetBlock      = errors.New("failed to get block from source")
	ErrBlockMissing          = errors.New("source has no block at height")
	ErrSourceChanged         = errors.New("source block does not extend the stored tip")
	ErrFailedToRegisterStats = errors.New("failed to register stats collector")
)

// BlockSource provides the blocks of the chain to follow.
type BlockSource interface {
	// GetBlockCount returns the number of blocks, the highest height is one less.
	GetBlockCount(ctx context.Context) (int64, error)
	// GetBlockByHeight returns the block at height or nil if there is none.
	GetBlockByHeight(ctx context.Context, height int64) (*wire.MsgBlock, error)
}

// Result summarizes one Sync call.
type Result struct {
	Added     int
	Removed   int
	TipHeight int64
}

type Synchronizer struct {
	logger          *slog.Logger
	store           store.ChainStore
	source          BlockSource
	pollInterval    time.Duration
	maxRetryElapsed time.Duration
	stats           *syncStats

	tracingEnabled    bool
	tracingAttributes []attribute.KeyValue

	waitGroup *sync.WaitGroup
	cancelAll context.CancelFunc
	ctx       context.Context
}

func NewSynchronizer(logger *slog.Logger, chainStore store.ChainStore, source BlockSource, opts ...func(*Synchronizer)) *Synchronizer {
	s := &Synchronizer{
		logger:          logger.With(slog.String("module", "blocksync")),
		store:           chainStore,
		source:          source,
		pollInterval:    pollIntervalDefault,
		maxRetryElapsed: maxRetryElapsedDefault,
		stats:           newSyncStats(),
		waitGroup:       &sync.WaitGroup{},
	}

	for _, opt := range opts {
		opt(s)
	}

	ctx, cancelAll := context.WithCancel(context.Background())
	s.cancelAll = cancelAll
	s.ctx = ctx

	return s
}

// Sync brings the store up to the source. A conflict with a concurrent writer restarts the
// pass from the stored tip until maxRetryElapsed is exceeded.
func (s *Synchronizer) Sync(ctx context.Context) (result Result, err error) {
	ctx, span := tracing.StartTracing(ctx, "Sync", s.tracingEnabled, s.tracingAttributes...)
	defer func() {
		tracing.EndTracing(span, err)
	}()

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = s.maxRetryElapsed

	err = backoff.Retry(func() error {
		tipHeight, err := s.syncOnce(ctx, &result)
		if err == nil {
			result.TipHeight = tipHeight
			return nil
		}

		if errors.Is(err, store.ErrConflict) && ctx.Err() == nil {
			s.stats.conflictRetries.Inc()
			s.logger.Warn("Conflicting write, retrying", slog.String("err", err.Error()))
			return err
		}

		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		s.stats.syncErrors.Inc()
		return result, err
	}

	if result.Added > 0 || result.Removed > 0 {
		s.logger.Info("Chain synchronized",
			slog.Int("added", result.Added),
			slog.Int("removed", result.Removed),
			slog.Int64("tipHeight", result.TipHeight),
		)
	}

	return result, nil
}

// syncOnce removes stored blocks the source does not have anymore and adds the missing ones.
// It returns the resulting tip height, -1 for an empty chain.
func (s *Synchronizer) syncOnce(ctx context.Context, result *Result) (int64, error) {
	count, err := s.source.GetBlockCount(ctx)
	if err != nil {
		return 0, errors.Join(ErrFailedToGetBlockCount, err)
	}

	tip, tipHeight, err := s.store.GetLast(ctx)
	if err != nil {
		return 0, err
	}

	for tip != nil {
		matches, err := s.sourceHas(ctx, tip, tipHeight, count)
		if err != nil {
			return 0, err
		}
		if matches {
			break
		}

		if err = s.store.RemoveLast(ctx); err != nil {
			return 0, err
		}
		result.Removed++
		s.stats.blocksRemoved.Inc()
		s.logger.Info("Removed block of abandoned branch", slog.String("hash", tip.BlockHash().String()), slog.Int64("height", tipHeight))

		tip, tipHeight, err = s.store.GetLast(ctx)
		if err != nil {
			return 0, err
		}
	}

	next := int64(0)
	if tip != nil {
		next = tipHeight + 1
	}

	for height := next; height < count; height++ {
		if err = ctx.Err(); err != nil {
			return 0, err
		}

		block, err := s.blockAt(ctx, height)
		if err != nil {
			return 0, err
		}

		if tip != nil && block.Header.PrevBlock != tip.BlockHash() {
			return 0, errors.Join(ErrSourceChanged, fmt.Errorf("height %d", height))
		}

		if err = s.store.Add(ctx, block, height); err != nil {
			return 0, err
		}
		result.Added++
		s.stats.blocksAdded.Inc()
		s.logger.Debug("Added block", slog.String("hash", block.BlockHash().String()), slog.Int64("height", height))

		tip = block
		tipHeight = height
	}

	if tip == nil {
		return -1, nil
	}

	return tipHeight, nil
}

// sourceHas reports whether the source has tip at the same height.
func (s *Synchronizer) sourceHas(ctx context.Context, tip *wire.MsgBlock, height int64, count int64) (bool, error) {
	if height >= count {
		return false, nil
	}

	candidate, err := s.blockAt(ctx, height)
	if err != nil {
		return false, err
	}

	return candidate.BlockHash() == tip.BlockHash(), nil
}

func (s *Synchronizer) blockAt(ctx context.Context, height int64) (*wire.MsgBlock, error) {
	block, err := s.source.GetBlockByHeight(ctx, height)
	if err != nil {
		return nil, errors.Join(ErrFailedToGetBlock, fmt.Errorf("height %d", height), err)
	}

	if block == nil {
		return nil, errors.Join(ErrBlockMissing, fmt.Errorf("height %d", height))
	}

	return block, nil
}

// Start syncs once every poll interval until Shutdown is called.
func (s *Synchronizer) Start() error {
	err := registerStats(s.stats.collectors()...)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(s.pollInterval)

	s.waitGroup.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Recovered from panic", "panic", r, slog.String("stacktrace", string(debug.Stack())))
			}
		}()
		defer func() {
			ticker.Stop()
			unregisterStats(s.stats.collectors()...)
			s.waitGroup.Done()
		}()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				_, err := s.Sync(s.ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Error("Failed to sync chain", slog.String("err", err.Error()))
				}
			}
		}
	}()

	return nil
}

func (s *Synchronizer) Shutdown() {
	s.cancelAll()
	s.waitGroup.Wait()
}
