package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/common"
	"github.com/Benjamin-Hogan/restload/internal/constants"
	"github.com/Benjamin-Hogan/restload/internal/retry"
	"github.com/Benjamin-Hogan/restload/internal/task"
)

// dialect hides the differences between backends: placeholder syntax,
// bool/time storage forms, pool tuning and schema DDL.
type dialect interface {
	name() string
	connect(dsn string) (*sql.DB, error)
	ensureStatements(table string) []string
	placeholder(index int) string
	boolToStorage(b bool) any
	boolFromStorage(v any) bool
	timeToStorage(t time.Time) any
	timeFromStorage(v any) time.Time
	lastInsertID() bool
}

// sqlStore is the shared SQL implementation parameterized by dialect.
// The table name is validated in Open, so interpolating it is safe.
type sqlStore struct {
	db     *sql.DB
	d      dialect
	table  string
	logger *common.Logger
}

func openSQL(d dialect, dsn, table string) (*sqlStore, error) {
	db, err := d.connect(dsn)
	if err != nil {
		return nil, err
	}
	s := &sqlStore{
		db:     db,
		d:      d,
		table:  table,
		logger: common.GetLogger().WithStore(d.name()),
	}
	for _, stmt := range d.ensureStatements(table) {
		err := retry.Do(context.Background(), retry.DefaultPolicy(), func() error {
			_, err := db.Exec(stmt)
			return err
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	s.logger.Debug("store opened", "table", table)
	return s, nil
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun inserts a record, retrying transient failures with bounded
// backoff.
func (s *sqlStore) SaveRun(ctx context.Context, rec *RunRecord) (int64, error) {
	if rec == nil {
		return 0, errors.New("store: nil record")
	}
	blob, err := json.Marshal(rec.Results)
	if err != nil {
		return 0, fmt.Errorf("store: encode results: %w", err)
	}
	at := rec.ExecutedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var id int64
	err = retry.Do(ctx, retry.DefaultPolicy(), func() error {
		var err error
		id, err = s.insertRun(ctx, rec, string(blob), at)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("store: save run: %w", err)
	}
	s.logger.Info("run saved", "id", id, "total", rec.Total, "successful", rec.Successful)
	return id, nil
}

func (s *sqlStore) insertRun(ctx context.Context, rec *RunRecord, blob string, at time.Time) (int64, error) {
	args := []any{
		rec.Label,
		rec.Total,
		rec.Successful,
		s.d.boolToStorage(rec.Halted),
		blob,
		s.d.timeToStorage(at),
	}
	cols := "label, total, successful, halted, results, executed_at"
	ph := make([]string, len(args))
	for i := range ph {
		ph[i] = s.d.placeholder(i + 1)
	}

	if s.d.lastInsertID() {
		// #nosec G201 -- table identifier validated in Open; values are bind parameters
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.table, cols, strings.Join(ph, ", "))
		res, err := s.db.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	// #nosec G201 -- table identifier validated in Open; values are bind parameters
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", s.table, cols, strings.Join(ph, ", "))
	var id int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *sqlStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	// #nosec G201 -- table identifier validated in Open; limit is a bind parameter
	q := fmt.Sprintf(
		"SELECT id, label, total, successful, halted, executed_at FROM %s ORDER BY id DESC LIMIT %s",
		s.table, s.d.placeholder(1),
	)
	rows, err := retry.Value(ctx, retry.DefaultPolicy(), func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, q, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var halted, at any
		if err := rows.Scan(&rs.ID, &rs.Label, &rs.Total, &rs.Successful, &halted, &at); err != nil {
			return nil, err
		}
		rs.Halted = s.d.boolFromStorage(halted)
		rs.ExecutedAt = s.d.timeFromStorage(at)
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (s *sqlStore) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	// #nosec G201 -- table identifier validated in Open; id is a bind parameter
	q := fmt.Sprintf(
		"SELECT id, label, total, successful, halted, results, executed_at FROM %s WHERE id = %s",
		s.table, s.d.placeholder(1),
	)
	rec := &RunRecord{}
	var halted, at any
	var blob string
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.Label, &rec.Total, &rec.Successful, &halted, &blob, &at,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run %d: %w", id, err)
	}
	rec.Halted = s.d.boolFromStorage(halted)
	rec.ExecutedAt = s.d.timeFromStorage(at)
	if err := json.Unmarshal([]byte(blob), &rec.Results); err != nil {
		return nil, fmt.Errorf("store: decode results of run %d: %w", id, err)
	}
	if rec.Results == nil {
		rec.Results = []*task.Result{}
	}
	return rec, nil
}
