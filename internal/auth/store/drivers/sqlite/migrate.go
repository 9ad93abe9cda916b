package sqlite

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/devnet/internal/auth/store/drivers/sqlite/migrations"
)

// ApplyMigrations runs the embedded migrations on the store's own handle.
// The migrate instance is not closed: its driver would close s.db with it.
func (s *Store) ApplyMigrations() error {
	errb := oops.In("sqlite")

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return errb.With("operation", "migration driver").Wrap(err)
	}
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return errb.With("operation", "migration source").Wrap(err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return errb.With("operation", "migration init").Wrap(err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errb.With("operation", "migration up").Wrap(err)
	}
	return nil
}
