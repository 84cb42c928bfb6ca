// internal/db/migrate.go
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrator applies the versioned SQL schema. When scriptsPath is empty the
// migrations compiled into the binary are used.
type Migrator struct {
	databaseURL string
	scriptsPath string
	logger      *zap.Logger
}

func NewMigrator(databaseURL, scriptsPath string, logger *zap.Logger) *Migrator {
	return &Migrator{
		databaseURL: databaseURL,
		scriptsPath: scriptsPath,
		logger:      logger,
	}
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	return m.run(func(mg *migrate.Migrate) error {
		from, _, err := version(mg)
		if err != nil {
			return err
		}
		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		to, _, err := version(mg)
		if err != nil {
			return err
		}
		m.logger.Info("migrations applied",
			zap.Uint("from_version", from),
			zap.Uint("to_version", to),
		)
		return nil
	})
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	return m.run(func(mg *migrate.Migrate) error {
		if err := mg.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run down migrations: %w", err)
		}
		m.logger.Info("down migration completed", zap.Int("steps", steps))
		return nil
	})
}

// Version returns the current schema version and dirty flag.
func (m *Migrator) Version() (uint, bool, error) {
	var (
		v     uint
		dirty bool
	)
	err := m.run(func(mg *migrate.Migrate) error {
		var err error
		v, dirty, err = version(mg)
		return err
	})
	return v, dirty, err
}

func (m *Migrator) run(fn func(*migrate.Migrate) error) error {
	sqlDB, err := sql.Open("postgres", m.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	var mg *migrate.Migrate
	if m.scriptsPath != "" {
		mg, err = migrate.NewWithDatabaseInstance("file://"+m.scriptsPath, "postgres", driver)
	} else {
		src, srcErr := iofs.New(migrationFS, "migrations")
		if srcErr != nil {
			return fmt.Errorf("failed to open embedded migrations: %w", srcErr)
		}
		mg, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	_, dirty, err := version(mg)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is in dirty state, fix it manually")
	}

	return fn(mg)
}

func version(mg *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return v, dirty, nil
}
