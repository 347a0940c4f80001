package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	_ "github.com/jackc/pgx/v5/stdlib" // nolint: revive // registers the pgx driver
	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

const postgresDriverName = "pgx"

type PostgreSQL struct {
	db                *sql.DB
	logger            *slog.Logger
	network           wire.BitcoinNet
	tracingEnabled    bool
	tracingAttributes []attribute.KeyValue
}

func WithLogger(logger *slog.Logger) func(*PostgreSQL) {
	return func(p *PostgreSQL) {
		p.logger = logger.With(slog.String("module", "postgresql"))
	}
}

// WithNetwork sets the network whose blocks are stored. It is reported with every span.
func WithNetwork(network wire.BitcoinNet) func(*PostgreSQL) {
	return func(p *PostgreSQL) {
		p.network = network
	}
}

func WithTracer(attr ...attribute.KeyValue) func(s *PostgreSQL) {
	return func(p *PostgreSQL) {
		p.tracingEnabled = true
		if len(attr) > 0 {
			p.tracingAttributes = append(p.tracingAttributes, attr...)
		}
		_, file, _, ok := runtime.Caller(1)
		if ok {
			p.tracingAttributes = append(p.tracingAttributes, attribute.String("file", file))
		}
	}
}

func New(dbInfo string, idleConns int, maxOpenConns int, opts ...func(postgreSQL *PostgreSQL)) (*PostgreSQL, error) {
	db, err := sql.Open(postgresDriverName, dbInfo)
	if err != nil {
		return nil, errors.Join(store.ErrFailedToOpenDB, err)
	}

	db.SetMaxIdleConns(idleConns)
	db.SetMaxOpenConns(maxOpenConns)

	p := &PostgreSQL{
		db:      db,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		network: wire.MainNet,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.tracingEnabled {
		p.tracingAttributes = append(p.tracingAttributes, attribute.String("network", p.network.String()))
	}

	return p, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

func (p *PostgreSQL) Ping(ctx context.Context) error {
	r, err := p.db.QueryContext(ctx, "SELECT 1;")
	if err != nil {
		return err
	}

	return r.Close()
}

// withTx runs fn in a transaction of the given isolation level. The transaction is committed
// when fn succeeds and rolled back on every other path.
func (p *PostgreSQL) withTx(ctx context.Context, isolation sql.IsolationLevel, readOnly bool, fn func(tx *sql.Tx) error) (err error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: isolation, ReadOnly: readOnly})
	if err != nil {
		return withContextErr(ctx, errors.Join(store.ErrFailedToBeginTx, err))
	}

	defer func() {
		if err == nil {
			return
		}

		if rErr := tx.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("failed to rollback: %w", rErr))
		}
	}()

	err = fn(tx)
	if err != nil {
		return withContextErr(ctx, classifyError(err))
	}

	err = tx.Commit()
	if err != nil {
		return withContextErr(ctx, errors.Join(store.ErrFailedToCommitTx, classifyError(err)))
	}

	return nil
}
