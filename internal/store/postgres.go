package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/constants"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// postgresDialect uses native bool and timestamptz storage and $N bind
// placeholders.
type postgresDialect struct{}

func (postgresDialect) name() string { return DriverPostgresql }

func (postgresDialect) connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgresql: %w", err)
	}
	db.SetMaxOpenConns(constants.DefaultPostgresMaxConnections)
	db.SetMaxIdleConns(constants.DefaultPostgresMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultMaxConnLifetime)
	db.SetConnMaxIdleTime(constants.DefaultMaxIdleTime)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping postgresql: %w", err)
	}
	return db, nil
}

func (postgresDialect) ensureStatements(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		label TEXT,
		total INTEGER NOT NULL,
		successful INTEGER NOT NULL,
		halted BOOLEAN NOT NULL DEFAULT FALSE,
		results TEXT NOT NULL,
		executed_at TIMESTAMPTZ NOT NULL
	)`, table),
	}
}

func (postgresDialect) placeholder(index int) string { return fmt.Sprintf("$%d", index) }

func (postgresDialect) boolToStorage(b bool) any { return b }

func (postgresDialect) boolFromStorage(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func (postgresDialect) timeToStorage(t time.Time) any { return t.UTC() }

func (postgresDialect) timeFromStorage(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t != nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (postgresDialect) lastInsertID() bool { return false }
