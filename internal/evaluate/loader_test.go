package evaluate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fairwatch/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "batch.csv", `label,prediction,score,gender,region
1,1,0.9,F,east
0,0,0.1,F,west
1,0,0.4,M,east
0,1,0.7,M,west
`)
	batch, err := LoadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0, 1, 0}, batch.Labels)
	assert.Equal(t, []int{1, 0, 0, 1}, batch.Predictions)
	assert.Equal(t, []float64{0.9, 0.1, 0.4, 0.7}, batch.Scores)
	assert.Equal(t, []string{"F", "F", "M", "M"}, batch.Attributes["gender"])
	assert.Equal(t, []string{"east", "west", "east", "west"}, batch.Attributes["region"])
}

func TestLoadCSV_ScoreOptional(t *testing.T) {
	path := writeFile(t, "batch.csv", `label,prediction,gender
1,1,F
0,0,M
`)
	batch, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Nil(t, batch.Scores)
}

func TestLoadCSV_HeaderCaseAndSpace(t *testing.T) {
	path := writeFile(t, "batch.csv", `Label, Prediction ,GENDER
1,1,F
0,0,M
`)
	batch, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "M"}, batch.Attributes["gender"])
}

func TestLoadCSV_MissingRequiredColumns(t *testing.T) {
	path := writeFile(t, "batch.csv", `label,gender
1,F
`)
	_, err := LoadCSV(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestLoadCSV_BadLabel(t *testing.T) {
	path := writeFile(t, "batch.csv", `label,prediction
yes,1
`)
	_, err := LoadCSV(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadCSV_BadScore(t *testing.T) {
	path := writeFile(t, "batch.csv", `label,prediction,score
1,1,high
`)
	_, err := LoadCSV(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "batch.json", `{
		"labels": [1, 0],
		"predictions": [1, 0],
		"scores": [0.9, 0.1],
		"attributes": {"gender": ["F", "M"]}
	}`)
	batch, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, batch.Labels)
	assert.Equal(t, []string{"F", "M"}, batch.Attributes["gender"])
}

func TestLoadJSON_InvalidBatch(t *testing.T) {
	path := writeFile(t, "batch.json", `{"labels": [1, 0], "predictions": [1]}`)
	_, err := LoadJSON(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestLoadBatch_Dispatch(t *testing.T) {
	csvPath := writeFile(t, "b.csv", "label,prediction\n1,1\n")
	_, err := LoadBatch(csvPath)
	assert.NoError(t, err)

	_, err = LoadBatch("batch.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported batch format")
}

func TestLoadBatch_MissingFile(t *testing.T) {
	_, err := LoadBatch(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
