package blocksync

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

const statCollectionIntervalDefault = 60 * time.Second

type syncStats struct {
	blocksAdded     prometheus.Counter
	blocksRemoved   prometheus.Counter
	conflictRetries prometheus.Counter
	syncErrors      prometheus.Counter
}

func newSyncStats() *syncStats {
	return &syncStats{
		blocksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainstore_sync_blocks_added_total",
			Help: "Number of blocks added by the synchronizer",
		}),
		blocksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainstore_sync_blocks_removed_total",
			Help: "Number of blocks removed while switching to another branch",
		}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainstore_sync_conflict_retries_total",
			Help: "Number of sync passes retried after a conflicting write",
		}),
		syncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainstore_sync_errors_total",
			Help: "Number of failed sync calls",
		}),
	}
}

func (s *syncStats) collectors() []prometheus.Collector {
	return []prometheus.Collector{s.blocksAdded, s.blocksRemoved, s.conflictRetries, s.syncErrors}
}

// StatsCollector periodically exports the store statistics as gauges.
type StatsCollector struct {
	logger   *slog.Logger
	store    store.ChainStore
	interval time.Duration

	mu                sync.RWMutex
	tipHeight         prometheus.Gauge
	blocks            prometheus.Gauge
	transactions      prometheus.Gauge
	blockTransactions prometheus.Gauge
	outputs           prometheus.Gauge
	inputs            prometheus.Gauge

	waitGroup *sync.WaitGroup
	cancelAll context.CancelFunc
	ctx       context.Context
}

func WithStatCollectionInterval(d time.Duration) func(*StatsCollector) {
	return func(p *StatsCollector) {
		p.interval = d
	}
}

func NewStatsCollector(logger *slog.Logger, chainStore store.ChainStore, opts ...func(*StatsCollector)) *StatsCollector {
	p := &StatsCollector{
		logger:   logger.With(slog.String("module", "stats-collector")),
		store:    chainStore,
		interval: statCollectionIntervalDefault,
		tipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainstore_tip_height",
			Help: "Height of the stored chain tip, -1 when empty",
		}),
		blocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainstore_blocks_count",
			Help: "Number of stored blocks",
		}),
		transactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainstore_transactions_count",
			Help: "Number of stored distinct transactions",
		}),
		blockTransactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainstore_block_transactions_count",
			Help: "Number of links between blocks and transactions",
		}),
		outputs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainstore_outputs_count",
			Help: "Number of stored transaction outputs",
		}),
		inputs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainstore_inputs_count",
			Help: "Number of stored transaction inputs",
		}),
		waitGroup: &sync.WaitGroup{},
	}

	for _, opt := range opts {
		opt(p)
	}

	p.ctx, p.cancelAll = context.WithCancel(context.Background())

	return p
}

func (p *StatsCollector) gauges() []prometheus.Collector {
	return []prometheus.Collector{p.tipHeight, p.blocks, p.transactions, p.blockTransactions, p.outputs, p.inputs}
}

func (p *StatsCollector) Start() error {
	err := registerStats(p.gauges()...)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(p.interval)

	p.waitGroup.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Recovered from panic", "panic", r, slog.String("stacktrace", string(debug.Stack())))
			}
		}()
		defer func() {
			ticker.Stop()
			unregisterStats(p.gauges()...)
			p.waitGroup.Done()
		}()

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				collectedStats, err := p.store.GetStats(p.ctx)
				if err != nil {
					p.logger.Error("failed to get stats", slog.String("err", err.Error()))
					continue
				}

				p.mu.Lock()
				p.tipHeight.Set(float64(collectedStats.TipHeight))
				p.blocks.Set(float64(collectedStats.Blocks))
				p.transactions.Set(float64(collectedStats.Transactions))
				p.blockTransactions.Set(float64(collectedStats.BlockTransactions))
				p.outputs.Set(float64(collectedStats.Outputs))
				p.inputs.Set(float64(collectedStats.Inputs))
				p.mu.Unlock()
			}
		}
	}()

	return nil
}

func (p *StatsCollector) Shutdown() {
	p.cancelAll()
	p.waitGroup.Wait()
}

func registerStats(cs ...prometheus.Collector) error {
	for i, c := range cs {
		err := prometheus.Register(c)
		if err != nil {
			unregisterStats(cs[:i]...)
			return errors.Join(ErrFailedToRegisterStats, err)
		}
	}

	return nil
}

func unregisterStats(cs ...prometheus.Collector) {
	for _, c := range cs {
		_ = prometheus.Unregister(c)
	}
}
