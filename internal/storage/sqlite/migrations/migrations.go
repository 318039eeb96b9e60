// Package migrations holds the SQLite schema of the task registry, the
// configuration store and the reference store.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/blendeval/internal/log"
)

//go:embed sql/*.sql
var schema embed.FS

// ErrDirtySchema is returned when a previous migration was interrupted, the
// database needs a manual repair before being used again.
var ErrDirtySchema = errors.New("dirty schema")

// Migrator applies the embedded schema migrations to a database.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator returns a migrator for the database.
func NewMigrator(db *sql.DB, logger log.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = log.Noop
	}

	return &Migrator{
		db:     db,
		logger: logger.WithValues(log.Kv{"svc": "storage.SQLite.migrations"}),
	}, nil
}

// Up brings the schema to the latest version and returns that version.
func (m *Migrator) Up(ctx context.Context) (uint, error) {
	var version uint
	err := m.run(ctx, func(mg *migrate.Migrate) error {
		if _, err := currentVersion(mg); err != nil {
			return err
		}

		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not apply schema migrations: %w", err)
		}

		v, err := currentVersion(mg)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.logger.WithValues(log.Kv{"schema-version": version}).Debugf("Database schema up to date")
	return version, nil
}

// Down drops the whole schema, every task, configuration and reference item is lost.
func (m *Migrator) Down(ctx context.Context) error {
	err := m.run(ctx, func(mg *migrate.Migrate) error {
		if err := mg.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not revert schema migrations: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Warningf("Database schema dropped")
	return nil
}

// Version returns the applied schema version, 0 on an empty database.
func (m *Migrator) Version(ctx context.Context) (uint, error) {
	var version uint
	err := m.run(ctx, func(mg *migrate.Migrate) error {
		v, err := currentVersion(mg)
		version = v
		return err
	})
	return version, err
}

func currentVersion(mg *migrate.Migrate) (uint, error) {
	v, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not get schema version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("schema version %d: %w", v, ErrDirtySchema)
	}
	return v, nil
}

// run executes fn with a migrate instance over the embedded schema. The
// instance is not closed, closing it would close the shared database.
func (m *Migrator) run(ctx context.Context, fn func(mg *migrate.Migrate) error) error {
	src, err := iofs.New(schema, "sql")
	if err != nil {
		return fmt.Errorf("could not load embedded schema: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Errorf("Could not close embedded schema: %s", err)
		}
	}()

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Migrations stop between steps once the context is done.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mg.GracefulStop <- true
		case <-done:
		}
	}()

	return fn(mg)
}
