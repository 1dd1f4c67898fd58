package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleBatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		batch   SampleBatch
		wantErr bool
	}{
		{
			name: "valid with scores",
			batch: SampleBatch{
				Labels:      []int{1, 0, 1},
				Predictions: []int{1, 0, 0},
				Scores:      []float64{0.9, 0.1, 0.4},
				Attributes:  map[string][]string{"gender": {"F", "F", "M"}},
			},
		},
		{
			name: "valid without scores",
			batch: SampleBatch{
				Labels:      []int{1, 0},
				Predictions: []int{1, 1},
				Attributes:  map[string][]string{"gender": {"F", "M"}},
			},
		},
		{
			name:    "empty batch",
			batch:   SampleBatch{},
			wantErr: true,
		},
		{
			name: "mismatched predictions",
			batch: SampleBatch{
				Labels:      []int{1, 0, 1},
				Predictions: []int{1, 0},
			},
			wantErr: true,
		},
		{
			name: "mismatched attribute column",
			batch: SampleBatch{
				Labels:      []int{1, 0},
				Predictions: []int{1, 0},
				Attributes:  map[string][]string{"gender": {"F"}},
			},
			wantErr: true,
		},
		{
			name: "score out of range",
			batch: SampleBatch{
				Labels:      []int{1, 0},
				Predictions: []int{1, 0},
				Scores:      []float64{0.5, 1.2},
			},
			wantErr: true,
		},
		{
			name: "non-binary label",
			batch: SampleBatch{
				Labels:      []int{1, 2},
				Predictions: []int{1, 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.batch.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, eris.Is(err, ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubgroupKey_String(t *testing.T) {
	key := NewSubgroupKey("gender", "F", "age", "<30")
	assert.Equal(t, "gender=F|age=<30", key.String())
	assert.True(t, key.Intersectional())

	single := NewSubgroupKey("gender", "M")
	assert.Equal(t, "gender=M", single.String())
	assert.False(t, single.Intersectional())
}

func TestGroupStats_Rates(t *testing.T) {
	g := GroupStats{TP: 2, FN: 0, TN: 2, FP: 0, Count: 4}

	rate, ok := g.PositiveRate()
	require.True(t, ok)
	assert.InDelta(t, 0.5, rate, 1e-9)

	tpr, ok := g.TPR()
	require.True(t, ok)
	assert.InDelta(t, 1.0, tpr, 1e-9)

	acc, ok := g.Accuracy()
	require.True(t, ok)
	assert.InDelta(t, 1.0, acc, 1e-9)
}

func TestGroupStats_UndefinedRates(t *testing.T) {
	// All-negative ground truth: TPR undefined, FPR defined.
	g := GroupStats{TN: 3, FP: 1, Count: 4}

	_, ok := g.TPR()
	assert.False(t, ok, "TPR should be undefined with no positive cases")

	fpr, ok := g.FPR()
	require.True(t, ok)
	assert.InDelta(t, 0.25, fpr, 1e-9)

	// No positive predictions: precision undefined.
	_, ok = g.Precision()
	assert.False(t, ok)
}

func TestGroupStats_ECE(t *testing.T) {
	g := GroupStats{
		Count: 10,
		Bins: []CalibrationBin{
			{ScoreSum: 0.4, Positives: 0, Count: 4}, // mean 0.1, rate 0.0 -> diff 0.1
			{ScoreSum: 5.4, Positives: 6, Count: 6}, // mean 0.9, rate 1.0 -> diff 0.1
		},
	}
	ece, ok := g.ECE()
	require.True(t, ok)
	assert.InDelta(t, 0.1, ece, 1e-9)

	empty := GroupStats{Count: 5}
	_, ok = empty.ECE()
	assert.False(t, ok)
}

func TestSeverity_Ordering(t *testing.T) {
	assert.True(t, SeverityNone < SeverityMinor)
	assert.True(t, SeverityMinor < SeverityMajor)
	assert.Equal(t, "MAJOR", SeverityMajor.String())

	b, err := SeverityMinor.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"MINOR"`, string(b))
}
