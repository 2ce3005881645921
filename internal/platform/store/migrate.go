package store

import (
	"context"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	perr "localpulse/internal/platform/errors"
	"localpulse/internal/platform/logger"
	"localpulse/migrations"
)

// Migrate applies all embedded SQL migrations against the given Postgres URL
func Migrate(url string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "open migration source")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "create migrator")
	}
	defer func() {
		if serr, derr := m.Close(); serr != nil || derr != nil {
			logger.Named("store").Warn().AnErr("source", serr).AnErr("db", derr).Msg("migrator close")
		}
	}()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return perr.Wrap(err, perr.ErrorCodeDB, "apply migrations")
	}
	logger.Named("store").Info().Msg("migrations applied")
	return nil
}

// EnsureEventTables applies the embedded clickhouse DDL through the given
// seam. Statements are idempotent (CREATE TABLE IF NOT EXISTS), so the call
// is safe on every boot
func EnsureEventTables(ctx context.Context, c Clickhouse) error {
	if c == nil {
		return nil
	}

	entries, err := migrations.CHFS.ReadDir("clickhouse")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "read clickhouse ddl")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		raw, err := migrations.CHFS.ReadFile("clickhouse/" + e.Name())
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDB, "read clickhouse ddl %s", e.Name())
		}
		if err := c.Exec(ctx, string(raw)); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDB, "apply clickhouse ddl %s", e.Name())
		}
	}
	logger.Named("store").Info().Int("statements", len(entries)).Msg("clickhouse tables ensured")
	return nil
}
