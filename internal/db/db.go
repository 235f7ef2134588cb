package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// sqliteBusyTimeout is how long a SQLite connection waits on a lock held by
// another process (the admin CLI, a second server) before SQLITE_BUSY.
const sqliteBusyTimeout = 5 * time.Second

func Init(ctx context.Context, driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory for file databases
	if driver == DriverSQLite && !isMemory(connection) {
		dir := filepath.Dir(strings.TrimPrefix(sqlitePath(connection), "file:"))
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		connection = SQLiteDSN(connection)
	}

	db, err := sqlx.Open(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// SQLite allows one writer at a time. A single pooled connection
	// serializes writers in process instead of failing them with SQLITE_BUSY,
	// and keeps an in-memory database alive as long as the pool.
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// SQLiteDSN adds a busy timeout and immediate transactions to a file DSN
// unless the caller already chose them. Immediate transactions take the
// write lock at BEGIN, so the busy timeout applies instead of a lock upgrade
// failing midway.
func SQLiteDSN(connection string) string {
	var params []string
	if !strings.Contains(connection, "busy_timeout") {
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", sqliteBusyTimeout.Milliseconds()))
	}
	if !strings.Contains(connection, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return connection
	}

	sep := "?"
	if strings.Contains(connection, "?") {
		sep = "&"
	}
	return connection + sep + strings.Join(params, "&")
}

func sqlitePath(connection string) string {
	path, _, _ := strings.Cut(connection, "?")
	return path
}

func isMemory(connection string) bool {
	return strings.HasPrefix(connection, ":memory:") || strings.Contains(connection, "mode=memory")
}
