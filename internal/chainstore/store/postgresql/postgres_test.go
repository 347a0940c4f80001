package postgresql

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
	"github.com/bitcoin-sv/chainstore/internal/chainstore/store/storetest"
	testutils "github.com/bitcoin-sv/chainstore/pkg/test_utils"
)

const migrationsPath = "file://migrations"

var (
	dbInfo string
	tables = []string{"inputs", "outputs", "block_transactions", "transactions", "blocks"}
)

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	os.Exit(testmain(m))
}

func testmain(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("failed to create pool: %v", err)
		return 1
	}

	port := "5438"
	resource, connStr, err := testutils.RunAndMigratePostgresql(pool, port, migrationsTable, migrationsPath)
	if err != nil {
		log.Print(err)
		return 1
	}
	defer func() {
		err = pool.Purge(resource)
		if err != nil {
			log.Fatalf("failed to purge pool: %v", err)
		}
	}()

	dbInfo = connStr
	return m.Run()
}

func newPostgres(t *testing.T) *PostgreSQL {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sut, err := New(dbInfo, 10, 10, WithLogger(logger), WithNetwork(wire.TestNet))
	require.NoError(t, err)

	testutils.PruneTables(t, sut.db, tables...)
	t.Cleanup(func() {
		_ = sut.Close()
	})

	return sut
}

func TestPostgresChainStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storetest.Run(t, func(t *testing.T) store.ChainStore {
		return newPostgres(t)
	})
}

func TestPostgresDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	t.Run("migrate up is idempotent", func(t *testing.T) {
		sut := newPostgres(t)

		require.NoError(t, sut.MigrateUp())
		require.NoError(t, sut.Ping(ctx))
	})

	t.Run("shared transaction is stored once with one link per block", func(t *testing.T) {
		// given
		sut := newPostgres(t)
		shared := storetest.NewTx(7, nil)
		b0 := storetest.NewBlock(nil, 1, storetest.NewTx(1, nil), shared)
		b1 := storetest.NewBlock(b0, 2, shared)

		// when
		require.NoError(t, sut.Add(ctx, b0, 0))
		require.NoError(t, sut.Add(ctx, b1, 1))

		// then
		sharedHash := shared.TxHash()
		require.Equal(t, int64(1), testutils.CountRows(t, dbInfo, "transactions", "hash = $1", sharedHash[:]))
		require.Equal(t, int64(1), testutils.CountRows(t, dbInfo, "outputs", "transaction_hash = $1", sharedHash[:]))
		require.Equal(t, int64(2), testutils.CountRows(t, dbInfo, "block_transactions", "transaction_hash = $1", sharedHash[:]))

		b0Hash, b1Hash := b0.BlockHash(), b1.BlockHash()
		require.Equal(t, int64(1), testutils.CountRows(t, dbInfo, "block_transactions", "block_hash = $1 AND transaction_hash = $2 AND index = 1", b0Hash[:], sharedHash[:]))
		require.Equal(t, int64(1), testutils.CountRows(t, dbInfo, "block_transactions", "block_hash = $1 AND transaction_hash = $2 AND index = 0", b1Hash[:], sharedHash[:]))
	})

	t.Run("missing predecessor", func(t *testing.T) {
		// given
		sut := newPostgres(t)
		testutils.LoadFixtures(t, sut.db, "fixtures/inconsistent_chain")

		raw, err := hex.DecodeString("0000000082b5015589a3fdf2d4baff403e6f0be035a5d9742c1cae6295464449")
		require.NoError(t, err)
		tipHash, err := chainhash.NewHash(raw)
		require.NoError(t, err)

		// when
		_, byHeightErr := sut.GetByHeight(ctx, 2)
		_, _, lastErr := sut.GetLast(ctx)
		_, _, byHashErr := sut.GetByHash(ctx, *tipHash)
		genesis, genesisErr := sut.GetFirst(ctx)

		// then
		require.ErrorIs(t, byHeightErr, store.ErrInconsistentChain)
		require.ErrorIs(t, lastErr, store.ErrInconsistentChain)
		require.ErrorIs(t, byHashErr, store.ErrInconsistentChain)
		require.NoError(t, genesisErr)
		require.NotNil(t, genesis)
		require.Empty(t, genesis.Transactions)
	})
}

func TestClassifyError(t *testing.T) {
	tt := []struct {
		name             string
		err              error
		expectedConflict bool
	}{
		{
			name:             "serialization failure",
			err:              &pgconn.PgError{Code: pgSerializationFailure},
			expectedConflict: true,
		},
		{
			name:             "deadlock",
			err:              errors.Join(store.ErrFailedToInsertBlock, &pgconn.PgError{Code: pgDeadlockDetected}),
			expectedConflict: true,
		},
		{
			name:             "unique violation",
			err:              &pgconn.PgError{Code: pgUniqueViolation},
			expectedConflict: true,
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503"},
		},
		{
			name: "other error",
			err:  errors.New("connection refused"),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			// when
			actual := classifyError(tc.err)

			// then
			require.Equal(t, tc.expectedConflict, errors.Is(actual, store.ErrConflict))
			require.ErrorIs(t, actual, tc.err)
		})
	}
}

func TestWithContextErr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cause := errors.New("failed to begin transaction")

	require.Equal(t, cause, withContextErr(ctx, cause))

	cancel()

	actual := withContextErr(ctx, cause)
	require.ErrorIs(t, actual, context.Canceled)
	require.ErrorIs(t, actual, cause)
}
