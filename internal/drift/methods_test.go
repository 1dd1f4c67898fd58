package drift

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fairwatch/internal/model"
)

func TestSeverityFromChange(t *testing.T) {
	tests := []struct {
		change float64
		want   model.Severity
	}{
		{0, model.SeverityNone},
		{0.029, model.SeverityNone},
		{0.03, model.SeverityMinor}, // lower bound inclusive
		{0.149, model.SeverityMinor},
		{0.15, model.SeverityMajor},
		{0.5, model.SeverityMajor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, severityFromChange(tt.change), "change %g", tt.change)
	}
}

func TestDeltaMethod_MajorShift(t *testing.T) {
	baseline := []float64{0.05, 0.05, 0.05, 0.05, 0.05}
	current := []float64{0.20, 0.20, 0.20, 0.20, 0.20}

	ev := deltaMethod(baseline, current)

	assert.Equal(t, model.MethodDelta, ev.Method)
	assert.InDelta(t, 0.05, ev.Baseline, 1e-9)
	assert.InDelta(t, 0.20, ev.Current, 1e-9)
	assert.InDelta(t, 0.15, ev.Change, 1e-9)
	assert.Equal(t, model.SeverityMajor, ev.Severity)
}

func TestDeltaMethod_NoChange(t *testing.T) {
	window := []float64{0.1, 0.1, 0.1, 0.1, 0.1}
	ev := deltaMethod(window, window)
	assert.Equal(t, model.SeverityNone, ev.Severity)
	assert.Equal(t, 0.0, ev.Change)
}

func TestDeltaMethod_DirectionIgnored(t *testing.T) {
	// An improvement of the same magnitude classifies identically; the
	// methods track change, not direction.
	up := deltaMethod([]float64{0.1, 0.1, 0.1}, []float64{0.2, 0.2, 0.2})
	down := deltaMethod([]float64{0.2, 0.2, 0.2}, []float64{0.1, 0.1, 0.1})
	assert.Equal(t, up.Change, down.Change)
	assert.Equal(t, up.Severity, down.Severity)
}

func TestStatisticalMethod_SignificantShift(t *testing.T) {
	// Tight baseline, clearly shifted current: p well below 0.05.
	baseline := []float64{0.050, 0.052, 0.048, 0.051, 0.049}
	current := []float64{0.200, 0.202, 0.198, 0.201, 0.199}

	ev := statisticalMethod(baseline, current, 0.05)

	require.NotNil(t, ev.PValue)
	assert.Less(t, *ev.PValue, 0.05)
	assert.Equal(t, model.SeverityMajor, ev.Severity)
}

func TestStatisticalMethod_NoisyShiftNotSignificant(t *testing.T) {
	// Large spread swamps the mean difference: p stays high and the
	// severity stays NONE even though the raw change clears the minor bar.
	baseline := []float64{0.02, 0.30, 0.05, 0.28, 0.10}
	current := []float64{0.08, 0.35, 0.12, 0.30, 0.15}

	ev := statisticalMethod(baseline, current, 0.05)

	require.NotNil(t, ev.PValue)
	assert.GreaterOrEqual(t, *ev.PValue, 0.05)
	assert.Equal(t, model.SeverityNone, ev.Severity)
}

func TestStatisticalMethod_ConstantWindows(t *testing.T) {
	// Zero variance on both sides degenerates cleanly.
	same := statisticalMethod([]float64{0.1, 0.1}, []float64{0.1, 0.1}, 0.05)
	require.NotNil(t, same.PValue)
	assert.Equal(t, 1.0, *same.PValue)
	assert.Equal(t, model.SeverityNone, same.Severity)

	shifted := statisticalMethod([]float64{0.1, 0.1}, []float64{0.3, 0.3}, 0.05)
	require.NotNil(t, shifted.PValue)
	assert.Equal(t, 0.0, *shifted.PValue)
	assert.Equal(t, model.SeverityMajor, shifted.Severity)
}

func TestStatisticalMethod_SingleValueWindows(t *testing.T) {
	// One value per window gives no variance estimate: no p-value, no
	// severity, and the event still serializes cleanly.
	ev := statisticalMethod([]float64{0.05}, []float64{0.20}, 0.05)

	assert.Nil(t, ev.PValue)
	assert.Equal(t, model.SeverityNone, ev.Severity)
	assert.InDelta(t, 0.15, ev.Change, 1e-9)

	out, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "p_value")
}

func TestWelchPValue_Symmetric(t *testing.T) {
	a := []float64{0.1, 0.12, 0.11, 0.13}
	b := []float64{0.2, 0.22, 0.21, 0.23}
	assert.InDelta(t, welchPValue(a, b), welchPValue(b, a), 1e-12)
}

func TestWelchPValue_Bounds(t *testing.T) {
	a := []float64{0.1, 0.2, 0.15}
	b := []float64{0.12, 0.18, 0.16}
	p := welchPValue(a, b)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestControlChart_WithinLimits(t *testing.T) {
	baseline := []float64{0.10, 0.12, 0.08, 0.11, 0.09}
	ev := controlChartMethod(baseline, 0.11, 2.0)

	assert.False(t, ev.OutOfControl)
	assert.Equal(t, model.SeverityNone, ev.Severity)
	require.NotNil(t, ev.SigmaDistance)
	assert.Less(t, *ev.SigmaDistance, 2.0)
}

func TestControlChart_OutOfControl(t *testing.T) {
	baseline := []float64{0.10, 0.12, 0.08, 0.11, 0.09}
	ev := controlChartMethod(baseline, 0.30, 2.0)

	assert.True(t, ev.OutOfControl)
	require.NotNil(t, ev.SigmaDistance)
	assert.Greater(t, *ev.SigmaDistance, 2.0)
	// Change 0.20 sits above the major boundary.
	assert.Equal(t, model.SeverityMajor, ev.Severity)
}

func TestControlChart_ZeroDeviationBaseline(t *testing.T) {
	baseline := []float64{0.05, 0.05, 0.05, 0.05, 0.05}

	// Any nonzero departure from a flat baseline is immediately major.
	ev := controlChartMethod(baseline, 0.06, 2.0)
	assert.True(t, ev.OutOfControl)
	assert.Equal(t, model.SeverityMajor, ev.Severity)
	assert.Nil(t, ev.SigmaDistance, "sigma distance undefined for flat baselines")

	// No departure, no verdict.
	ev = controlChartMethod(baseline, 0.05, 2.0)
	assert.False(t, ev.OutOfControl)
	assert.Equal(t, model.SeverityNone, ev.Severity)
}

func TestControlChart_SmallExcursionMinor(t *testing.T) {
	// Out of control by sigma distance, but the absolute change only
	// reaches the minor band.
	baseline := []float64{0.100, 0.102, 0.098, 0.101, 0.099}
	ev := controlChartMethod(baseline, 0.14, 2.0)

	assert.True(t, ev.OutOfControl)
	assert.Equal(t, model.SeverityMinor, ev.Severity)
}
