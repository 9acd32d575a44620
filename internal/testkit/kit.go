package testkit

import (
	"fmt"

	"insightflow/domain/dataset"
)

// RegionSales builds n rows cycling region over A, B and C with sales growing
// with the row index, so every region has a distinct total
func RegionSales(n int) (*dataset.Dataset, error) {
	names := []string{"A", "B", "C"}
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"region": names[i%len(names)],
			"sales":  float64(i + 1),
		}
	}
	return dataset.New(rows, []dataset.Field{
		{ID: "region", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "sales", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
	})
}

// Groups builds n rows, one per group g01..gNN, with value equal to the group
// number. Handy for percentile boundary checks.
func Groups(n int) (*dataset.Dataset, error) {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"group": fmt.Sprintf("g%02d", i+1),
			"value": float64(i + 1),
		}
	}
	return dataset.New(rows, []dataset.Field{
		{ID: "group", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "value", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
	})
}
