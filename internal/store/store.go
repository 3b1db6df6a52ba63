// Package store persists run history. Two backends share one SQL core:
// SQLite (default, file under the user's app dir) and PostgreSQL via the
// pgx stdlib driver.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/constants"
	"github.com/Benjamin-Hogan/restload/internal/task"
	"github.com/Benjamin-Hogan/restload/internal/util"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"
)

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one stored run: the aggregate counters plus the full
// result list as a JSON blob.
type RunRecord struct {
	ID         int64          `json:"id"`
	Label      string         `json:"label,omitempty"`
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Halted     bool           `json:"halted"`
	Results    []*task.Result `json:"results"`
	ExecutedAt time.Time      `json:"executed_at"`
}

// RunSummary is a RunRecord without the result blob, for listings.
type RunSummary struct {
	ID         int64     `json:"id"`
	Label      string    `json:"label,omitempty"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Halted     bool      `json:"halted"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Store persists and reads back run records.
type Store interface {
	SaveRun(ctx context.Context, rec *RunRecord) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	GetRun(ctx context.Context, id int64) (*RunRecord, error)
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Driver is sqlite (default) or postgresql.
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file. Empty means the default under
	// the user's home directory.
	Path string `mapstructure:"path"`
	// DSN connects the postgresql backend.
	DSN string `mapstructure:"dsn"`
	// TableName overrides the run history table name.
	TableName string `mapstructure:"table_name"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open connects the configured backend and ensures its schema.
func Open(cfg Config) (Store, error) {
	table := strings.TrimSpace(cfg.TableName)
	if table == "" {
		table = constants.DefaultRunHistoryTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}

	var d dialect
	var dsn string
	switch normalizeDriver(cfg.Driver) {
	case DriverSqlite:
		path := strings.TrimSpace(cfg.Path)
		if path == "" {
			var err error
			if path, err = DefaultHistoryPath(); err != nil {
				return nil, err
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
		d = sqliteDialect{}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_fk=1", path)
	case DriverPostgresql:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("store: postgresql requires a dsn")
		}
		d = postgresDialect{}
		dsn = cfg.DSN
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	return openSQL(d, dsn, table)
}

// DefaultHistoryPath returns $HOME/.restload/restload.db.
func DefaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: resolve home directory: %w", err)
	}
	return filepath.Join(home, constants.DefaultAppDir, constants.DefaultHistoryFile), nil
}

func normalizeDriver(driver string) string {
	switch util.TrimAndLower(driver) {
	case "", DriverSqlite, "sqlite3":
		return DriverSqlite
	case DriverPostgresql, "postgres", "pgx":
		return DriverPostgresql
	default:
		return driver
	}
}
