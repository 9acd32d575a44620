package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"insightflow/domain/dataset"
)

// monthLayouts covers period labels cast does not parse on its own
var monthLayouts = []string{"2006-01", "2006/01", "Jan 2006", "January 2006"}

// InferFields guesses a catalog from the cells: all-numeric columns become
// quantitative measures, all-date columns temporal dimensions, anything else a
// nominal dimension. Empty cells are ignored; an all-empty column is nominal.
func InferFields(headers []string, rows []map[string]any) []dataset.Field {
	fields := make([]dataset.Field, len(headers))
	for i, h := range headers {
		numeric, temporal, seen := true, true, false
		for _, r := range rows {
			s := strings.TrimSpace(cast.ToString(r[h]))
			if s == "" {
				continue
			}
			seen = true
			if numeric {
				if _, err := cast.ToFloat64E(s); err != nil {
					numeric = false
				}
			}
			if temporal && !isDate(s) {
				temporal = false
			}
			if !numeric && !temporal {
				break
			}
		}
		f := dataset.Field{ID: h, Name: h, SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension}
		switch {
		case !seen:
		case numeric:
			f.SemanticType, f.AnalyticType = dataset.Quantitative, dataset.Measure
		case temporal:
			f.SemanticType = dataset.Temporal
		}
		fields[i] = f
	}
	return fields
}

func isDate(s string) bool {
	if _, err := cast.ToTimeE(s); err == nil {
		return true
	}
	for _, layout := range monthLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// MergeFields applies overrides by field id onto the inferred catalog.
// Overrides naming an unknown column are rejected.
func MergeFields(inferred, overrides []dataset.Field) ([]dataset.Field, error) {
	pos := make(map[string]int, len(inferred))
	out := append([]dataset.Field(nil), inferred...)
	for i, f := range out {
		pos[f.ID] = i
	}
	for _, o := range overrides {
		i, ok := pos[o.ID]
		if !ok {
			return nil, fmt.Errorf("catalog override names unknown column %q", o.ID)
		}
		if o.Name != "" {
			out[i].Name = o.Name
		}
		if o.SemanticType != "" {
			out[i].SemanticType = o.SemanticType
		}
		if o.AnalyticType != "" {
			out[i].AnalyticType = o.AnalyticType
		}
	}
	return out, nil
}
