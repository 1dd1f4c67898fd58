package evaluate

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fairwatch/internal/model"
)

// reserved CSV column names; every other column is a subgroup attribute.
const (
	colLabel      = "label"
	colPrediction = "prediction"
	colScore      = "score"
)

// LoadCSV reads a sample batch from a CSV file. The header must contain
// "label" and "prediction"; a "score" column is optional; all remaining
// columns become subgroup attributes.
func LoadCSV(path string) (*model.SampleBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: read header of %s", path)
	}

	labelIdx, predIdx, scoreIdx := -1, -1, -1
	attrIdx := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch name {
		case colLabel:
			labelIdx = i
		case colPrediction:
			predIdx = i
		case colScore:
			scoreIdx = i
		default:
			attrIdx[name] = i
		}
	}
	if labelIdx < 0 || predIdx < 0 {
		return nil, eris.Wrapf(model.ErrInvalidInput, "%s: header must contain label and prediction columns", path)
	}

	batch := &model.SampleBatch{Attributes: make(map[string][]string)}
	for attr := range attrIdx {
		batch.Attributes[attr] = nil
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: read rows of %s", path)
	}
	for rowNum, rec := range records {
		label, err := strconv.Atoi(strings.TrimSpace(rec[labelIdx]))
		if err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "%s row %d: bad label %q", path, rowNum+2, rec[labelIdx])
		}
		pred, err := strconv.Atoi(strings.TrimSpace(rec[predIdx]))
		if err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "%s row %d: bad prediction %q", path, rowNum+2, rec[predIdx])
		}
		batch.Labels = append(batch.Labels, label)
		batch.Predictions = append(batch.Predictions, pred)

		if scoreIdx >= 0 {
			score, err := strconv.ParseFloat(strings.TrimSpace(rec[scoreIdx]), 64)
			if err != nil {
				return nil, eris.Wrapf(model.ErrInvalidInput, "%s row %d: bad score %q", path, rowNum+2, rec[scoreIdx])
			}
			batch.Scores = append(batch.Scores, score)
		}
		for attr, idx := range attrIdx {
			batch.Attributes[attr] = append(batch.Attributes[attr], strings.TrimSpace(rec[idx]))
		}
	}

	if err := batch.Validate(); err != nil {
		return nil, err
	}
	return batch, nil
}

// LoadJSON reads a sample batch from a JSON file holding a serialized
// SampleBatch.
func LoadJSON(path string) (*model.SampleBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: read %s", path)
	}

	var batch model.SampleBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, eris.Wrapf(err, "evaluate: parse %s", path)
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	return &batch, nil
}

// LoadBatch dispatches on file extension: .csv or .json.
func LoadBatch(path string) (*model.SampleBatch, error) {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return LoadCSV(path)
	case strings.HasSuffix(path, ".json"):
		return LoadJSON(path)
	default:
		return nil, eris.Errorf("evaluate: unsupported batch format %s (want .csv or .json)", path)
	}
}
