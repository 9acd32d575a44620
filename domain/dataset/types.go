package dataset

import "fmt"

// SemanticType is the visual-encoding type of a field
type SemanticType string

const (
	Quantitative SemanticType = "quantitative"
	Ordinal      SemanticType = "ordinal"
	Nominal      SemanticType = "nominal"
	Temporal     SemanticType = "temporal"
)

// AnalyticType separates grouping fields from aggregated ones
type AnalyticType string

const (
	Dimension AnalyticType = "dimension"
	Measure   AnalyticType = "measure"
)

// ParseSemanticType validates a semantic type name
func ParseSemanticType(s string) (SemanticType, error) {
	switch t := SemanticType(s); t {
	case Quantitative, Ordinal, Nominal, Temporal:
		return t, nil
	}
	return "", fmt.Errorf("unknown semantic type %q", s)
}

// ParseAnalyticType validates an analytic type name
func ParseAnalyticType(s string) (AnalyticType, error) {
	switch t := AnalyticType(s); t {
	case Dimension, Measure:
		return t, nil
	}
	return "", fmt.Errorf("unknown analytic type %q", s)
}

// IsCategorical reports whether values of this type are treated as categories
func (t SemanticType) IsCategorical() bool {
	return t != Quantitative
}

// FieldFeatures holds cardinality-derived features computed from the rows
type FieldFeatures struct {
	Count    int `json:"count"`
	Nulls    int `json:"nulls"`
	Distinct int `json:"distinct"`
}

// Field describes one column of the dataset
type Field struct {
	ID           string        `json:"fid"`
	Name         string        `json:"name,omitempty"`
	SemanticType SemanticType  `json:"semanticType"`
	AnalyticType AnalyticType  `json:"analyticType"`
	Features     FieldFeatures `json:"features"`
}

// DisplayName returns the name, falling back to the id
func (f Field) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}
