package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/pkg/controlplane/store/migrations"
)

// runMigrations applies every pending SQL migration under migrations.FS to
// the audit store's schema, using golang-migrate rather than GORM's own
// AutoMigrate so that the schema's evolution is versioned and reviewable.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("controlplane/store: open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
		DatabaseName:    "megaflow",
	})
	if err != nil {
		return fmt.Errorf("controlplane/store: create postgres migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("controlplane/store: load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("controlplane/store: build migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("controlplane/store: apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("controlplane/store: read migration version: %w", err)
	}
	logger.Info("audit store migrations applied",
		"schema_version", version,
		"dirty", dirty,
	)

	return nil
}
