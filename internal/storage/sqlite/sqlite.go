package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"stxpipe/internal/storage"
)

// Store реализует storage.Store поверх SQLite.
type Store struct {
	db *sql.DB
}

// Open инициализирует соединение и выполняет миграции.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			module TEXT NOT NULL,
			payload BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ts ON results(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_results_module_ts ON results(module, ts);`,
		`CREATE TABLE IF NOT EXISTS run_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			module TEXT,
			assemblies INTEGER,
			status TEXT,
			detail TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON run_events(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_module_ts ON run_events(module, ts);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveResults сохраняет таблицу результатов модуля.
func (s *Store) SaveResults(ctx context.Context, rec storage.ResultsRecord) error {
	ts := rec.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO results(module, payload, ts) VALUES(?,?,?)`, rec.Module, rec.Payload, ts)
	if err != nil {
		return fmt.Errorf("insert results: %w", err)
	}
	return nil
}

// LatestResults возвращает последнюю таблицу результатов модуля.
func (s *Store) LatestResults(ctx context.Context, module string) (storage.ResultsRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT module, payload, ts FROM results WHERE module = ? ORDER BY ts DESC LIMIT 1`, module)
	var rec storage.ResultsRecord
	var ts string
	if err := row.Scan(&rec.Module, &rec.Payload, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ResultsRecord{}, fmt.Errorf("latest results not found: %w", err)
		}
		return storage.ResultsRecord{}, fmt.Errorf("query latest results: %w", err)
	}
	parsedTS, err := parseSQLiteTS(ts)
	if err != nil {
		return storage.ResultsRecord{}, fmt.Errorf("parse results timestamp: %w", err)
	}
	rec.TS = parsedTS
	return rec, nil
}

// SaveRun сохраняет событие прогона.
func (s *Store) SaveRun(ctx context.Context, ev storage.RunEvent) error {
	ts := ev.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO run_events(module, assemblies, status, detail, ts) VALUES(?,?,?,?,?)`,
		ev.Module, ev.Assemblies, ev.Status, ev.Detail, ts)
	if err != nil {
		return fmt.Errorf("insert run event: %w", err)
	}
	return nil
}

// QueryRuns возвращает историю прогонов по фильтрам.
func (s *Store) QueryRuns(ctx context.Context, q storage.RunQuery) ([]storage.RunEvent, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	from := q.From
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}
	to := q.To
	if to.IsZero() {
		to = time.Now().UTC()
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT module, assemblies, status, detail, ts
FROM run_events
WHERE ts >= ? AND ts <= ? AND (? = '' OR module = ?)
ORDER BY ts DESC
LIMIT ?`, from, to, q.Module, q.Module, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	events := make([]storage.RunEvent, 0, limit)
	for rows.Next() {
		var ev storage.RunEvent
		var ts string
		if err := rows.Scan(&ev.Module, &ev.Assemblies, &ev.Status, &ev.Detail, &ts); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		parsedTS, err := parseSQLiteTS(ts)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		ev.TS = parsedTS
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return events, nil
}

func parseSQLiteTS(v string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported sqlite time format: %q", v)
}

// Close закрывает соединение.
func (s *Store) Close() error {
	return s.db.Close()
}

// MarshalPayload упрощает сериализацию таблиц результатов.
func MarshalPayload(data interface{}) ([]byte, error) {
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return buf, nil
}
