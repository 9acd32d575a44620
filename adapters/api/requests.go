package api

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"insightflow/adapters/excel"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/engine"
	"insightflow/internal/errors"
)

// parseDataset reads {"fields": [...], "rows": [...]}. Fields are optional and
// inferred from the rows when absent.
func parseDataset(body []byte, maxRows int) (*dataset.Dataset, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("body is not valid JSON")
	}
	rowsResult := gjson.GetBytes(body, "rows")
	if !rowsResult.IsArray() {
		return nil, errors.InvalidInput("rows must be an array")
	}
	items := rowsResult.Array()
	if len(items) > maxRows {
		return nil, errors.InvalidInput(fmt.Sprintf("%d rows exceed the upload limit of %d", len(items), maxRows))
	}

	var headers []string
	seen := make(map[string]bool)
	rows := make([]map[string]any, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d is not an object", i))
		}
		row := make(map[string]any)
		item.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
			row[k] = value.Value()
			return true
		})
		rows = append(rows, row)
	}

	fields := excel.InferFields(headers, rows)
	if f := gjson.GetBytes(body, "fields"); f.Exists() {
		var err error
		if fields, err = parseFields(f); err != nil {
			return nil, err
		}
	}
	ds, err := dataset.New(rows, fields)
	if err != nil {
		return nil, errors.Wrap(err, "invalid dataset")
	}
	return ds, nil
}

func parseFields(res gjson.Result) ([]dataset.Field, error) {
	if !res.IsArray() {
		return nil, errors.InvalidInput("fields must be an array")
	}
	var fields []dataset.Field
	for _, f := range res.Array() {
		id := firstString(f, "fid", "key", "id")
		semantic, err := dataset.ParseSemanticType(f.Get("semanticType").String())
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		analytic, err := dataset.ParseAnalyticType(f.Get("analyticType").String())
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		fields = append(fields, dataset.Field{
			ID:           id,
			Name:         f.Get("name").String(),
			SemanticType: semantic,
			AnalyticType: analytic,
		})
	}
	return fields, nil
}

// parseExplain reads the explain body. Predicates accept either an explicit
// type or infer it: a two-number "range" is continuous, anything else discrete.
func parseExplain(body []byte) (engine.ExplainRequest, error) {
	var req engine.ExplainRequest
	if len(body) == 0 {
		return req, errors.InvalidInput("body is required")
	}
	if !gjson.ValidBytes(body) {
		return req, errors.InvalidInput("body is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	predicates, err := parsePredicates(root.Get("predicates"))
	if err != nil {
		return req, err
	}
	measures, err := parseMeasures(root.Get("measures"))
	if err != nil {
		return req, err
	}
	req.Predicates = predicates
	req.Measures = measures
	req.Dimensions = stringArray(root.Get("dimensions"))
	if t := root.Get("threshold"); t.Exists() {
		v := t.Float()
		req.Threshold = &v
	}
	req.Neighbors = int(root.Get("neighbors").Int())
	req.SyncScale = root.Get("syncScale").Bool()
	return req, nil
}

func parsePredicates(res gjson.Result) ([]insight.Predicate, error) {
	if !res.Exists() {
		return nil, nil
	}
	if !res.IsArray() {
		return nil, errors.InvalidInput("predicates must be an array")
	}
	var out []insight.Predicate
	for i, p := range res.Array() {
		key := firstString(p, "key", "fid", "field")
		if key == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("predicate %d has no field key", i))
		}
		kind := insight.PredicateKind(p.Get("type").String())
		rng := p.Get("range").Array()
		if kind == "" {
			kind = insight.Discrete
			if len(rng) == 2 && rng[0].Type == gjson.Number && rng[1].Type == gjson.Number {
				kind = insight.Continuous
			}
		}
		switch kind {
		case insight.Continuous:
			if len(rng) != 2 {
				return nil, errors.InvalidInput(fmt.Sprintf("predicate %d needs a [lo, hi] range", i))
			}
			out = append(out, insight.NewContinuous(key, rng[0].Float(), rng[1].Float()))
		case insight.Discrete:
			values := p.Get("values").Array()
			if !p.Get("values").Exists() {
				values = rng
			}
			vs := make([]any, len(values))
			for j, v := range values {
				vs[j] = v.Value()
			}
			out = append(out, insight.NewDiscrete(key, vs...))
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("predicate %d has unknown type %q", i, kind))
		}
	}
	return out, nil
}

// parseMeasures accepts objects {"key","op"} or "field:op" strings; the
// aggregator defaults to sum
func parseMeasures(res gjson.Result) ([]insight.Measure, error) {
	var out []insight.Measure
	for _, m := range res.Array() {
		var key, op string
		if m.Type == gjson.String {
			key, op, _ = strings.Cut(m.String(), ":")
		} else {
			key = firstString(m, "key", "fid", "field")
			op = firstString(m, "op", "aggregator")
		}
		measure, err := newMeasure(key, op)
		if err != nil {
			return nil, err
		}
		out = append(out, measure)
	}
	return out, nil
}

func newMeasure(key, op string) (insight.Measure, error) {
	if key == "" {
		return insight.Measure{}, errors.InvalidInput("measure has no field key")
	}
	if op == "" {
		op = string(insight.Sum)
	}
	agg, err := insight.ParseAggregator(op)
	if err != nil {
		return insight.Measure{}, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return insight.Measure{FieldID: key, Aggregator: agg}, nil
}

func parseViews(body []byte) ([]insight.View, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("body is not valid JSON")
	}
	res := gjson.GetBytes(body, "views")
	if !res.IsArray() {
		return nil, errors.InvalidInput("views must be an array")
	}
	var views []insight.View
	for _, v := range res.Array() {
		views = append(views, insight.View{
			Fields: stringArray(v.Get("fields")),
			Locked: v.Get("locked").Bool(),
		})
	}
	return views, nil
}

func stringArray(res gjson.Result) []string {
	var out []string
	for _, v := range res.Array() {
		out = append(out, v.String())
	}
	return out
}

func firstString(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := res.Get(p); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// splitList splits a comma separated query value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
