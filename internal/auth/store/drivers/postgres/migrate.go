package postgres

import (
	"errors"
	"strings"

	"github.com/aussiebroadwan/devnet/internal/auth/store/drivers/postgres/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

var errNoURL = errors.New("postgres: migrations need a database url")

// ApplyMigrations runs the embedded migrations through golang-migrate's pgx
// driver, which opens its own connection from the store url.
func (s *Store) ApplyMigrations() error {
	if s.url == "" {
		return errNoURL
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return oops.In("postgres").With("operation", "migration source").Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(s.url))
	if err != nil {
		_ = src.Close()
		return oops.In("postgres").With("operation", "migration init").Wrap(err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.In("postgres").With("operation", "migration up").Wrap(err)
	}
	return nil
}

// migrateURL rewrites postgres:// URLs to the pgx5:// scheme golang-migrate
// registers for pgx.
func migrateURL(url string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return url
}
