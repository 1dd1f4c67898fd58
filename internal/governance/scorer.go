// Package governance scores an AI governance questionnaire against a
// fixed lookup table of recognized practices.
package governance

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// PracticeKey enumerates the recognized governance practices. Responses
// with keys outside this enumeration score the floor value rather than
// being silently ignored.
type PracticeKey string

const (
	PracticeModelCards       PracticeKey = "model_cards"
	PracticeBiasTesting      PracticeKey = "bias_testing"
	PracticeHumanOversight   PracticeKey = "human_oversight"
	PracticeIncidentResponse PracticeKey = "incident_response"
	PracticeDataProvenance   PracticeKey = "data_provenance"
	PracticeAccessControl    PracticeKey = "access_control"
)

// AllPractices lists every recognized practice; missing responses for
// any of these default to the floor score.
var AllPractices = []PracticeKey{
	PracticeModelCards,
	PracticeBiasTesting,
	PracticeHumanOversight,
	PracticeIncidentResponse,
	PracticeDataProvenance,
	PracticeAccessControl,
}

// AdoptionLevel is the answer to one practice question.
type AdoptionLevel string

const (
	AdoptionNone    AdoptionLevel = "none"
	AdoptionPartial AdoptionLevel = "partial"
	AdoptionFull    AdoptionLevel = "full"
)

// levelScores is the fixed lookup table. Unrecognized levels score the
// floor, same as missing answers.
var levelScores = map[AdoptionLevel]float64{
	AdoptionNone:    0.2,
	AdoptionPartial: 0.5,
	AdoptionFull:    1.0,
}

const floorScore = 0.2

// Response is one tagged questionnaire answer.
type Response struct {
	Practice PracticeKey   `yaml:"practice" json:"practice"`
	Level    AdoptionLevel `yaml:"level" json:"level"`
}

// Questionnaire is a set of tagged responses.
type Questionnaire struct {
	Responses []Response `yaml:"responses" json:"responses"`
}

// Result holds the questionnaire score and its per-practice breakdown.
type Result struct {
	Score      float64                 `json:"score"`
	Practices  map[PracticeKey]float64 `json:"practices"`
	Unanswered []PracticeKey           `json:"unanswered,omitempty"`
	Unknown    []string                `json:"unknown_keys,omitempty"`
}

// Score averages the lookup-table values across all recognized practices.
// Every recognized practice contributes exactly once; missing or unknown
// answers contribute the floor score.
func Score(q *Questionnaire) Result {
	res := Result{Practices: make(map[PracticeKey]float64, len(AllPractices))}

	answered := make(map[PracticeKey]AdoptionLevel)
	for _, r := range q.Responses {
		if !recognized(r.Practice) {
			res.Unknown = append(res.Unknown, string(r.Practice))
			continue
		}
		answered[r.Practice] = r.Level
	}

	var total float64
	for _, p := range AllPractices {
		score := floorScore
		if level, ok := answered[p]; ok {
			if s, known := levelScores[level]; known {
				score = s
			}
		} else {
			res.Unanswered = append(res.Unanswered, p)
		}
		res.Practices[p] = score
		total += score
	}
	res.Score = total / float64(len(AllPractices))

	if len(res.Unknown) > 0 {
		zap.L().Warn("governance: unrecognized practice keys scored at floor",
			zap.Strings("keys", res.Unknown),
		)
	}
	return res
}

func recognized(p PracticeKey) bool {
	for _, known := range AllPractices {
		if p == known {
			return true
		}
	}
	return false
}

// LoadQuestionnaire reads a questionnaire from a YAML file.
func LoadQuestionnaire(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "governance: read %s", path)
	}
	var q Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, eris.Wrapf(err, "governance: parse %s", path)
	}
	return &q, nil
}
