package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"insightflow/domain/insight"
)

// parseWhere reads field=v1|v2 and field=lo..hi predicates
func parseWhere(exprs []string) ([]insight.Predicate, error) {
	var out []insight.Predicate
	for _, expr := range exprs {
		field, value, ok := strings.Cut(expr, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("predicate %q must look like field=value", expr)
		}
		if lo, hi, isRange := strings.Cut(value, ".."); isRange {
			l, err := cast.ToFloat64E(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("predicate %q: bad lower bound: %w", expr, err)
			}
			h, err := cast.ToFloat64E(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("predicate %q: bad upper bound: %w", expr, err)
			}
			out = append(out, insight.NewContinuous(field, l, h))
			continue
		}
		var values []any
		for _, v := range strings.Split(value, "|") {
			values = append(values, strings.TrimSpace(v))
		}
		out = append(out, insight.NewDiscrete(field, values...))
	}
	return out, nil
}

func parseMeasureFlags(specs []string) ([]insight.Measure, error) {
	var out []insight.Measure
	for _, s := range specs {
		key, op, _ := strings.Cut(s, ":")
		if op == "" {
			op = string(insight.Sum)
		}
		agg, err := insight.ParseAggregator(op)
		if err != nil {
			return nil, err
		}
		out = append(out, insight.Measure{FieldID: strings.TrimSpace(key), Aggregator: agg})
	}
	return out, nil
}

func splitFields(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
