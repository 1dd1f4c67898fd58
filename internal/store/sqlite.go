package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/fairwatch/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db   *sql.DB
	keys *keyedMutex
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, keys: newKeyedMutex()}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           TEXT PRIMARY KEY,
	system       TEXT NOT NULL,
	taken_at     DATETIME NOT NULL,
	sample_count INTEGER NOT NULL,
	payload      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_history (
	system    TEXT NOT NULL,
	metric    TEXT NOT NULL,
	ts        DATETIME NOT NULL,
	value     REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_system ON snapshots(system, taken_at);
CREATE INDEX IF NOT EXISTS idx_metric_history_key ON metric_history(system, metric, ts);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendSnapshot(ctx context.Context, snap *model.FairnessSnapshot) error {
	// The caller's snapshot stays untouched; a missing ID is generated
	// into the stored copy only.
	stored := *snap
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	payload, err := json.Marshal(&stored)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal snapshot")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, system, taken_at, sample_count, payload) VALUES (?, ?, ?, ?, ?)`,
		stored.ID, stored.System, stored.Timestamp.UTC(), stored.SampleCount, string(payload),
	)
	return eris.Wrapf(err, "sqlite: insert snapshot %s", stored.ID)
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.FairnessSnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE id = ?`, id,
	).Scan(&payload)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", id)
	}

	var snap model.FairnessSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal snapshot %s", id)
	}
	return &snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, system string, limit int) ([]model.FairnessSnapshot, error) {
	query := `SELECT payload FROM snapshots WHERE system = ? ORDER BY taken_at DESC`
	args := []any{system}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var out []model.FairnessSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		var snap model.FairnessSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal snapshot")
		}
		out = append(out, snap)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate snapshots")
}

func (s *SQLiteStore) AppendMetricValue(ctx context.Context, system, metric string, ts time.Time, value float64) error {
	unlock := s.keys.Lock(historyKey(system, metric))
	defer unlock()

	var latest sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(ts) FROM metric_history WHERE system = ? AND metric = ?`,
		system, metric,
	).Scan(&latest)
	if err != nil {
		return eris.Wrapf(err, "sqlite: check history order %s/%s", system, metric)
	}
	if latest.Valid && ts.UTC().Before(latest.Time) {
		return eris.Errorf("sqlite: append out of order for %s/%s", system, metric)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metric_history (system, metric, ts, value) VALUES (?, ?, ?, ?)`,
		system, metric, ts.UTC(), value,
	)
	return eris.Wrapf(err, "sqlite: append metric %s/%s", system, metric)
}

func (s *SQLiteStore) GetHistory(ctx context.Context, system, metric string, window int) ([]model.MetricPoint, error) {
	query := `SELECT ts, value FROM metric_history WHERE system = ? AND metric = ? ORDER BY ts DESC`
	args := []any{system, metric}
	if window > 0 {
		query += ` LIMIT ?`
		args = append(args, window)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get history %s/%s", system, metric)
	}
	defer rows.Close()

	var points []model.MetricPoint
	for rows.Next() {
		var p model.MetricPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan history point")
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate history")
	}

	// Query returned newest-first; callers expect ascending order.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
