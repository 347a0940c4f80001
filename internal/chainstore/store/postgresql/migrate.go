package postgresql

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

const migrationsTable = "chainstore_migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// MigrateUp applies all pending schema migrations.
func (p *PostgreSQL) MigrateUp() error {
	m, err := p.newMigrate()
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Join(store.ErrFailedToMigrate, err)
	}

	return nil
}

// MigrateDown reverts all schema migrations.
func (p *PostgreSQL) MigrateDown() error {
	m, err := p.newMigrate()
	if err != nil {
		return err
	}

	err = m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Join(store.ErrFailedToMigrate, err)
	}

	return nil
}

func (p *PostgreSQL) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, errors.Join(store.ErrFailedToMigrate, err)
	}

	driver, err := migratepostgres.WithInstance(p.db, &migratepostgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return nil, errors.Join(store.ErrFailedToMigrate, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, errors.Join(store.ErrFailedToMigrate, err)
	}

	return m, nil
}
