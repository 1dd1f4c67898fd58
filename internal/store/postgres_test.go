package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fairwatch/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock, keys: newKeyedMutex()}, mock
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS snapshots").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendSnapshot(t *testing.T) {
	s, mock := newMockPostgres(t)

	snap := &model.FairnessSnapshot{
		ID:          "snap-1",
		System:      "loans",
		Timestamp:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		SampleCount: 500,
	}
	payload, err := json.Marshal(snap)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO snapshots").
		WithArgs("snap-1", "loans", snap.Timestamp, 500, payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.AppendSnapshot(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSnapshot(t *testing.T) {
	s, mock := newMockPostgres(t)

	payload, err := json.Marshal(&model.FairnessSnapshot{
		ID: "snap-1", System: "loans", SampleCount: 42,
	})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM snapshots WHERE id").
		WithArgs("snap-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := s.GetSnapshot(context.Background(), "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "loans", got.System)
	assert.Equal(t, 42, got.SampleCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendMetricValue_FirstPoint(t *testing.T) {
	s, mock := newMockPostgres(t)
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT MAX\(ts\) FROM metric_history`).
		WithArgs("loans", "calibration").
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectExec("INSERT INTO metric_history").
		WithArgs("loans", "calibration", ts, 0.1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.AppendMetricValue(context.Background(), "loans", "calibration", ts, 0.1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendMetricValue_RejectsOutOfOrder(t *testing.T) {
	s, mock := newMockPostgres(t)
	latest := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT MAX\(ts\) FROM metric_history`).
		WithArgs("loans", "calibration").
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(&latest))

	err := s.AppendMetricValue(context.Background(), "loans", "calibration",
		latest.Add(-time.Hour), 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of order")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetHistoryAscending(t *testing.T) {
	s, mock := newMockPostgres(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// The query returns newest-first; the store reverses to ascending.
	rows := pgxmock.NewRows([]string{"ts", "value"}).
		AddRow(base.Add(2*time.Hour), 0.3).
		AddRow(base.Add(time.Hour), 0.2).
		AddRow(base, 0.1)
	mock.ExpectQuery("SELECT ts, value FROM metric_history").
		WithArgs("loans", "calibration", 3).
		WillReturnRows(rows)

	points, err := s.GetHistory(context.Background(), "loans", "calibration", 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 0.1, points[0].Value, 1e-9)
	assert.InDelta(t, 0.3, points[2].Value, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
