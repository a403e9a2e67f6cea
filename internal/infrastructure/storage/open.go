package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"NewsClassifier/internal/config"
)

const (
	driverPostgres = config.DriverPostgres
	driverSQLite   = config.DriverSQLite

	pingTimeout     = 5 * time.Second
	connMaxLifetime = 5 * time.Minute
)

// Open connects to the configured database. The pool holds a single connection: the
// pipeline issues one statement at a time and in-memory SQLite needs a shared connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, string, error) {
	driver := cfg.ResolvedDriver()
	dsn := cfg.DSN
	if driver == driverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if !inMemory(driver, dsn) {
		// Recycling the only connection of an in-memory database would drop its contents.
		db.SetConnMaxLifetime(connMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, driver, nil
}

// sqliteDSN accepts SQLAlchemy-style URLs ("sqlite:///rss_DB.db") as well as plain paths.
func sqliteDSN(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "sqlite:///"):
		return strings.TrimPrefix(dsn, "sqlite:///")
	case strings.HasPrefix(dsn, "sqlite://"):
		return strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "sqlite:"):
		return strings.TrimPrefix(dsn, "sqlite:")
	default:
		return dsn
	}
}

func inMemory(driver, dsn string) bool {
	if driver != driverSQLite {
		return false
	}
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory")
}
