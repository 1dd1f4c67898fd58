package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fairwatch/internal/db"
	"github.com/sells-group/fairwatch/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	keys    *keyedMutex
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, keys: newKeyedMutex(), closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           TEXT PRIMARY KEY,
	system       TEXT NOT NULL,
	taken_at     TIMESTAMPTZ NOT NULL,
	sample_count INTEGER NOT NULL,
	payload      JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_history (
	system TEXT NOT NULL,
	metric TEXT NOT NULL,
	ts     TIMESTAMPTZ NOT NULL,
	value  DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_system ON snapshots(system, taken_at);
CREATE INDEX IF NOT EXISTS idx_metric_history_key ON metric_history(system, metric, ts);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AppendSnapshot(ctx context.Context, snap *model.FairnessSnapshot) error {
	// The caller's snapshot stays untouched; a missing ID is generated
	// into the stored copy only.
	stored := *snap
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	payload, err := json.Marshal(&stored)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal snapshot")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, system, taken_at, sample_count, payload) VALUES ($1, $2, $3, $4, $5)`,
		stored.ID, stored.System, stored.Timestamp.UTC(), stored.SampleCount, payload,
	)
	return eris.Wrapf(err, "postgres: insert snapshot %s", stored.ID)
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.FairnessSnapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM snapshots WHERE id = $1`, id,
	).Scan(&payload)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", id)
	}

	var snap model.FairnessSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal snapshot %s", id)
	}
	return &snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, system string, limit int) ([]model.FairnessSnapshot, error) {
	query := `SELECT payload FROM snapshots WHERE system = $1 ORDER BY taken_at DESC`
	args := []any{system}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var out []model.FairnessSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		var snap model.FairnessSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal snapshot")
		}
		out = append(out, snap)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate snapshots")
}

func (s *PostgresStore) AppendMetricValue(ctx context.Context, system, metric string, ts time.Time, value float64) error {
	unlock := s.keys.Lock(historyKey(system, metric))
	defer unlock()

	var latest *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT MAX(ts) FROM metric_history WHERE system = $1 AND metric = $2`,
		system, metric,
	).Scan(&latest)
	if err != nil {
		return eris.Wrapf(err, "postgres: check history order %s/%s", system, metric)
	}
	if latest != nil && ts.UTC().Before(*latest) {
		return eris.Errorf("postgres: append out of order for %s/%s", system, metric)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO metric_history (system, metric, ts, value) VALUES ($1, $2, $3, $4)`,
		system, metric, ts.UTC(), value,
	)
	return eris.Wrapf(err, "postgres: append metric %s/%s", system, metric)
}

func (s *PostgresStore) GetHistory(ctx context.Context, system, metric string, window int) ([]model.MetricPoint, error) {
	query := `SELECT ts, value FROM metric_history WHERE system = $1 AND metric = $2 ORDER BY ts DESC`
	args := []any{system, metric}
	if window > 0 {
		query += ` LIMIT $3`
		args = append(args, window)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get history %s/%s", system, metric)
	}
	defer rows.Close()

	var points []model.MetricPoint
	for rows.Next() {
		var p model.MetricPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan history point")
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate history")
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
