package insight

import (
	"fmt"
	"strings"

	"insightflow/domain/core"
)

// Aggregator reduces a group of values into one number
type Aggregator string

const (
	Sum   Aggregator = "sum"
	Mean  Aggregator = "mean"
	Count Aggregator = "count"
	Min   Aggregator = "min"
	Max   Aggregator = "max"
)

// DefaultAggregators is the order in which the measure strategy tries aggregators
var DefaultAggregators = []Aggregator{Min, Max, Sum, Count, Mean}

// ParseAggregator accepts the canonical names plus "avg"
func ParseAggregator(s string) (Aggregator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return Sum, nil
	case "mean", "avg":
		return Mean, nil
	case "count":
		return Count, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownAggregator, s)
}

// NeedsNumbers reports whether the aggregator reduces numeric values
func (a Aggregator) NeedsNumbers() bool {
	return a != Count
}

// Measure is a field aggregated by an operator
type Measure struct {
	FieldID    string     `json:"key"`
	Aggregator Aggregator `json:"op"`
}

func (m Measure) String() string {
	return fmt.Sprintf("%s(%s)", m.Aggregator, m.FieldID)
}

// MeasureIDs returns the field ids of the measures in order
func MeasureIDs(measures []Measure) []string {
	ids := make([]string, len(measures))
	for i, m := range measures {
		ids[i] = m.FieldID
	}
	return ids
}

// HasMeasure reports whether any measure aggregates fieldID
func HasMeasure(measures []Measure, fieldID string) bool {
	for _, m := range measures {
		if m.FieldID == fieldID {
			return true
		}
	}
	return false
}
