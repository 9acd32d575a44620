package insight

import (
	"insightflow/domain/core"
)

// Type tags the strategy that produced an InsightSpace
type Type string

const (
	SelectionDimDistribution Type = "selection_dim_distribution"
	SelectionMeaDistribution Type = "selection_mea_distribution"
	ChildrenMajorFactor      Type = "children_major_factor"
	ChildrenOutlier          Type = "children_outlier"
)

// Description carries strategy-specific detail behind a score
type Description struct {
	// ChildKey is the value of the extend dimension chosen as major factor or outlier
	ChildKey any `json:"childKey,omitempty"`
	// MaxDiff and MinDiff are the extremes across base measures (measure strategy)
	MaxDiff float64 `json:"maxDiff,omitempty"`
	MinDiff float64 `json:"minDiff,omitempty"`
	// Interesting lists the directional value flags that qualified a candidate measure
	Interesting []MeasureFlag `json:"interesting,omitempty"`
}

// MeasureFlag is a measure with its +1/-1 value explanation
type MeasureFlag struct {
	Measure
	Flag int `json:"flag"`
}

// InsightSpace is one ranked explanation of a selection
type InsightSpace struct {
	ID               core.InsightID `json:"id"`
	Dimensions       []string       `json:"dimensions"`
	Measures         []Measure      `json:"measures"`
	ExtendDimensions []string       `json:"extendDs"`
	ExtendMeasures   []Measure      `json:"extendMs"`
	Type             Type           `json:"type"`
	Score            float64        `json:"score"`
	Predicates       []Predicate    `json:"predicates"`
	Description      Description    `json:"description"`
}

// ChartDimensions returns the dimensions a caller should plot for this insight.
// Children insights nest the extend dimension under the current ones; selection
// insights plot the extend dimension on its own.
func (s InsightSpace) ChartDimensions() []string {
	switch s.Type {
	case ChildrenMajorFactor, ChildrenOutlier:
		return append(append([]string{}, s.ExtendDimensions...), s.Dimensions...)
	}
	if len(s.ExtendDimensions) > 0 {
		return s.ExtendDimensions
	}
	return s.Dimensions
}

// ChartMeasures returns the measures a caller should plot for this insight
func (s InsightSpace) ChartMeasures() []Measure {
	if len(s.ExtendMeasures) > 0 {
		return s.ExtendMeasures
	}
	return s.Measures
}
