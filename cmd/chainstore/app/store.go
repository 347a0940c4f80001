package app

import (
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/chainstore/config"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/blocksync"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/postgresql"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/sqlite"
	"github.com/bitcoin-sv/chainstore/internal/tracing"
)

const (
	dbModePostgres = "postgres"
	dbModeSQLite   = "sqlite"
)

var ErrUnknownDBMode = errors.New("unknown db mode")

func tracingAttributes() []attribute.KeyValue {
	return tracing.Attributes(cfg.Tracing.Attributes)
}

func newPostgres() (*postgresql.PostgreSQL, error) {
	network, err := config.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	opts := []func(*postgresql.PostgreSQL){
		postgresql.WithLogger(logger),
		postgresql.WithNetwork(network),
	}
	if cfg.Tracing.IsEnabled() {
		opts = append(opts, postgresql.WithTracer(tracingAttributes()...))
	}

	pg := cfg.Db.Postgres

	return postgresql.New(pg.DBInfo(), pg.MaxIdleConns, pg.MaxOpenConns, opts...)
}

func newSQLite() (*sqlite.SQLite, error) {
	network, err := config.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	opts := []func(*sqlite.SQLite){
		sqlite.WithLogger(logger),
		sqlite.WithNetwork(network),
	}
	if cfg.Tracing.IsEnabled() {
		opts = append(opts, sqlite.WithTracer(tracingAttributes()...))
	}

	return sqlite.New(cfg.Db.Sqlite.Path, opts...)
}

// openStore opens the chain store selected by db.mode.
func openStore() (store.ChainStore, error) {
	switch cfg.Db.Mode {
	case dbModePostgres:
		return newPostgres()
	case dbModeSQLite:
		return newSQLite()
	}

	return nil, errors.Join(ErrUnknownDBMode, fmt.Errorf("mode: %s", cfg.Db.Mode))
}

func newSynchronizer(chainStore store.ChainStore, source blocksync.BlockSource, opts ...func(*blocksync.Synchronizer)) *blocksync.Synchronizer {
	opts = append(opts, blocksync.WithMaxRetryElapsed(cfg.Sync.MaxRetryElapsed))
	if cfg.Tracing.IsEnabled() {
		opts = append(opts, blocksync.WithTracer(tracingAttributes()...))
	}

	return blocksync.NewSynchronizer(logger, chainStore, source, opts...)
}

func closeStore(chainStore store.ChainStore) {
	err := chainStore.Close()
	if err != nil {
		logger.Error("Failed to close store", slog.String("err", err.Error()))
	}
}
