package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/drift"
	"github.com/sells-group/fairwatch/internal/store"
)

func seedHistory(t *testing.T, st *store.MemoryStore, system, metric string, values []float64) {
	t.Helper()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		err := st.AppendMetricValue(context.Background(), system, metric,
			base.Add(time.Duration(i)*time.Hour), v)
		require.NoError(t, err)
	}
}

func TestChecker_AlertsOnDriftedSystem(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := store.NewMemory()
	// Major shift on one metric of one system; the other system is stable.
	seedHistory(t, st, "loans", "demographic_parity",
		[]float64{0.05, 0.05, 0.05, 0.05, 0.05, 0.20, 0.20, 0.20, 0.20, 0.20})
	seedHistory(t, st, "hiring", "demographic_parity",
		[]float64{0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10})

	mcfg := config.MonitoringConfig{WebhookURL: srv.URL, AlertsPerMinute: 600}
	monitor := drift.NewMonitor(st, config.DriftConfig{WindowSize: 5, PValueThreshold: 0.05, ControlLimitSigma: 2.0})
	policy := &config.Policy{Systems: []config.SystemPolicy{
		{Name: "loans", Metrics: []string{"demographic_parity"}},
		{Name: "hiring", Metrics: []string{"demographic_parity"}},
	}}
	c := NewChecker(monitor, NewAlerter(mcfg), policy, mcfg)

	c.check(context.Background(), zap.NewNop())

	assert.Equal(t, int32(1), hits.Load(), "only the drifted system alerts")
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	st := store.NewMemory()
	mcfg := config.MonitoringConfig{CheckIntervalSecs: 60}
	monitor := drift.NewMonitor(st, config.DriftConfig{WindowSize: 5})
	policy := &config.Policy{Systems: []config.SystemPolicy{{Name: "loans"}}}
	c := NewChecker(monitor, NewAlerter(mcfg), policy, mcfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("checker did not stop on context cancellation")
	}
}
