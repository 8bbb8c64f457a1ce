// Package storage opens the SQL backends and applies the embedded schema migrations.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	_ "modernc.org/sqlite"
)

// Driver names registered with database/sql.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Backend names accepted in configuration.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// PostgresDSN builds a pgx connection string.
func PostgresDSN(host string, port int, user, password, dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		user, password, host, port, dbName)
}

// SQLiteDSN builds a modernc connection string with foreign keys enforced.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// Open connects to the database behind dsn, applies pool limits and pings it.
func Open(ctx context.Context, driver, dsn string, maxOpenConns, maxIdleConns int) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		maxOpenConns, maxIdleConns = 1, 1
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	logger.Log.Infow("database connected", "driver", driver, "max_open_conns", maxOpenConns)
	return db, nil
}

// Migrate applies all pending up migrations for driver.
// It uses a dedicated connection because closing the migrator closes its database handle.
func Migrate(driver, dsn string) error {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer conn.Close()

	var (
		dbDriver migratedb.Driver
		dir      string
		name     string
	)
	switch driver {
	case DriverPostgres:
		dbDriver, err = migratepgx.WithInstance(conn, &migratepgx.Config{})
		dir, name = "migrations/postgres", "pgx5"
	case DriverSQLite:
		dbDriver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
		dir, name = "migrations/sqlite", "sqlite"
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, driver)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, dbDriver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Log.Infow("migrations applied", "driver", driver, "version", version, "dirty", dirty)
	return nil
}

// OpenSQLite opens (creating if needed) a SQLite file and migrates it.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := SQLiteDSN(path)
	if err := Migrate(DriverSQLite, dsn); err != nil {
		return nil, err
	}
	return Open(ctx, DriverSQLite, dsn, 1, 1)
}
