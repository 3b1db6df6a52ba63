package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/constants"
	_ "modernc.org/sqlite"
)

// sqliteDialect stores bools as 0/1 integers and times as RFC3339Nano
// strings.
type sqliteDialect struct{}

func (sqliteDialect) name() string { return DriverSqlite }

func (sqliteDialect) connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}
	// SQLite allows only one writer
	db.SetMaxOpenConns(constants.DefaultSQLiteMaxConnections)
	db.SetMaxIdleConns(constants.DefaultSQLiteMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultSQLiteLifetime)
	db.SetConnMaxIdleTime(constants.DefaultSQLiteIdleTime)
	return db, nil
}

func (sqliteDialect) ensureStatements(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT,
		total INTEGER NOT NULL,
		successful INTEGER NOT NULL,
		halted INTEGER NOT NULL DEFAULT 0,
		results TEXT NOT NULL,
		executed_at TEXT NOT NULL
	)`, table),
	}
}

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) boolToStorage(b bool) any {
	if b {
		return 1
	}
	return 0
}

func (sqliteDialect) boolFromStorage(v any) bool {
	switch i := v.(type) {
	case int64:
		return i != 0
	case int:
		return i != 0
	case bool:
		return i
	default:
		return false
	}
}

func (sqliteDialect) timeToStorage(t time.Time) any {
	return t.UTC().Format(time.RFC3339Nano)
}

func (sqliteDialect) timeFromStorage(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (sqliteDialect) lastInsertID() bool { return true }
