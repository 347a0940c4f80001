package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/glebarez/sqlite"
	"github.com/libsv/go-p2p/wire"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	gormtracing "gorm.io/plugin/opentelemetry/tracing"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

// connOpts enables foreign keys and makes writers wait for a lock instead of failing at once.
const connOpts = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLite is a ChainStore in a single SQLite file. All access goes through one connection, so
// transactions run one after the other and are serializable.
type SQLite struct {
	db                *gorm.DB
	logger            *slog.Logger
	network           wire.BitcoinNet
	tracingEnabled    bool
	tracingAttributes []attribute.KeyValue
}

func WithLogger(logger *slog.Logger) func(*SQLite) {
	return func(s *SQLite) {
		s.logger = logger.With(slog.String("module", "sqlite"))
	}
}

func WithNetwork(network wire.BitcoinNet) func(*SQLite) {
	return func(s *SQLite) {
		s.network = network
	}
}

func WithTracer(attr ...attribute.KeyValue) func(*SQLite) {
	return func(s *SQLite) {
		s.tracingEnabled = true
		if len(attr) > 0 {
			s.tracingAttributes = append(s.tracingAttributes, attr...)
		}
		_, file, _, ok := runtime.Caller(1)
		if ok {
			s.tracingAttributes = append(s.tracingAttributes, attribute.String("file", file))
		}
	}
}

// New opens the database at path and creates missing tables. An empty path opens a private
// in-memory database.
func New(path string, opts ...func(*SQLite)) (*SQLite, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != "" {
		dsn = fmt.Sprintf("file:%s?%s", path, connOpts)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, errors.Join(store.ErrFailedToOpenDB, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Join(store.ErrUnableToGetSQLConnection, err)
	}
	// an in-memory database lives as long as its connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	s := &SQLite{
		db:      db,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		network: wire.MainNet,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.tracingEnabled {
		s.tracingAttributes = append(s.tracingAttributes, attribute.String("network", s.network.String()))

		if err = db.Use(gormtracing.NewPlugin(gormtracing.WithoutMetrics())); err != nil {
			_ = sqlDB.Close()
			return nil, errors.Join(store.ErrFailedToOpenDB, err)
		}
	}

	for _, model := range migrateModels {
		s.logger.Debug("Migrating table", slog.String("table", fmt.Sprintf("%T", model)))
		if err = db.AutoMigrate(model); err != nil {
			_ = sqlDB.Close()
			return nil, errors.Join(store.ErrFailedToMigrate, err)
		}
	}

	return s, nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Join(store.ErrUnableToGetSQLConnection, err)
	}

	return sqlDB.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Join(store.ErrUnableToGetSQLConnection, err)
	}

	return sqlDB.PingContext(ctx)
}

// withTx runs fn in one transaction which is committed when fn succeeds and rolled back otherwise.
func (s *SQLite) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		return withContextErr(ctx, classifyError(err))
	}

	return nil
}
