package model

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput marks a batch that cannot be evaluated: mismatched
// sequence lengths or probabilities outside [0,1]. The whole batch is
// rejected; no partial results are produced.
var ErrInvalidInput = eris.New("invalid input batch")

// SampleBatch holds one labeled prediction batch: parallel sequences of
// ground-truth labels, predicted labels, optional predicted probabilities,
// and per-sample subgroup attribute values keyed by attribute name.
type SampleBatch struct {
	Labels      []int               `json:"labels"`
	Predictions []int               `json:"predictions"`
	Scores      []float64           `json:"scores,omitempty"`
	Attributes  map[string][]string `json:"attributes"`
}

// Len returns the number of samples in the batch.
func (b *SampleBatch) Len() int { return len(b.Labels) }

// HasScores reports whether predicted probabilities were provided.
func (b *SampleBatch) HasScores() bool { return len(b.Scores) > 0 }

// Validate checks the batch invariants: all sequences the same length,
// labels and predictions binary, probabilities (if present) in [0,1].
func (b *SampleBatch) Validate() error {
	n := len(b.Labels)
	if n == 0 {
		return eris.Wrap(ErrInvalidInput, "batch is empty")
	}
	if len(b.Predictions) != n {
		return eris.Wrapf(ErrInvalidInput, "labels has %d samples, predictions has %d", n, len(b.Predictions))
	}
	if b.HasScores() && len(b.Scores) != n {
		return eris.Wrapf(ErrInvalidInput, "labels has %d samples, scores has %d", n, len(b.Scores))
	}
	for attr, values := range b.Attributes {
		if len(values) != n {
			return eris.Wrapf(ErrInvalidInput, "attribute %q has %d values, expected %d", attr, len(values), n)
		}
	}
	for i := 0; i < n; i++ {
		if b.Labels[i] != 0 && b.Labels[i] != 1 {
			return eris.Wrapf(ErrInvalidInput, "label at index %d is %d, expected 0 or 1", i, b.Labels[i])
		}
		if b.Predictions[i] != 0 && b.Predictions[i] != 1 {
			return eris.Wrapf(ErrInvalidInput, "prediction at index %d is %d, expected 0 or 1", i, b.Predictions[i])
		}
	}
	if b.HasScores() {
		for i, s := range b.Scores {
			if s < 0 || s > 1 {
				return eris.Wrapf(ErrInvalidInput, "score at index %d is %g, expected [0,1]", i, s)
			}
		}
	}
	return nil
}

// AttributeNames returns the batch's subgroup attribute names in sorted order.
func (b *SampleBatch) AttributeNames() []string {
	names := make([]string, 0, len(b.Attributes))
	for name := range b.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AttributeValue is one (attribute, value) pair of a subgroup key.
type AttributeValue struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// SubgroupKey identifies a subgroup as an ordered conjunction of
// (attribute, value) pairs. A single pair is a plain subgroup; two or
// more pairs form an intersectional subgroup. Membership is derived
// from the batch on every evaluation, never stored.
type SubgroupKey []AttributeValue

// NewSubgroupKey builds a key from alternating attribute, value pairs.
func NewSubgroupKey(pairs ...string) SubgroupKey {
	key := make(SubgroupKey, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key = append(key, AttributeValue{Attribute: pairs[i], Value: pairs[i+1]})
	}
	return key
}

// String renders the key as "attr=value" pairs joined by "|", e.g.
// "age=<30|gender=F". Used as the canonical map key and storage form.
func (k SubgroupKey) String() string {
	parts := make([]string, len(k))
	for i, av := range k {
		parts[i] = av.Attribute + "=" + av.Value
	}
	return strings.Join(parts, "|")
}

// Intersectional reports whether the key spans more than one attribute.
func (k SubgroupKey) Intersectional() bool { return len(k) > 1 }
