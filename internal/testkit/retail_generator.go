package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"insightflow/domain/dataset"
)

// RetailGeneratorConfig configures the retail data generator
type RetailGeneratorConfig struct {
	Rows      int       `json:"rows"`
	Customers int       `json:"customers"`
	StartDate time.Time `json:"start_date"`
	Months    int       `json:"months"`
	Seed      int64     `json:"seed"`
}

// DefaultRetailConfig returns sensible defaults for retail data generation
func DefaultRetailConfig() RetailGeneratorConfig {
	return RetailGeneratorConfig{
		Rows:      600,
		Customers: 400,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Months:    6,
		Seed:      42,
	}
}

var (
	regions    = []string{"north", "south", "east", "west"}
	categories = []string{"grocery", "electronics", "apparel", "home", "toys"}
	channels   = []string{"store", "online"}

	// planted: electronics sells high-ticket, apparel is discount driven
	basePrice = map[string]float64{
		"grocery":     12,
		"electronics": 240,
		"apparel":     45,
		"home":        80,
		"toys":        30,
	}
	// planted: the north region leans on the online channel
	onlineShare = map[string]float64{
		"north": 0.8,
		"south": 0.3,
		"east":  0.5,
		"west":  0.4,
	}
)

// RetailFields is the catalog of the generated dataset
func RetailFields() []dataset.Field {
	return []dataset.Field{
		{ID: "region", Name: "Region", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "category", Name: "Category", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "channel", Name: "Channel", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "month", Name: "Month", SemanticType: dataset.Temporal, AnalyticType: dataset.Dimension},
		{ID: "customer_id", Name: "Customer", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "sales", Name: "Sales", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
		{ID: "quantity", Name: "Quantity", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
		{ID: "discount", Name: "Discount", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
	}
}

// RetailGenerator produces a deterministic order table with planted dependencies
type RetailGenerator struct {
	config RetailGeneratorConfig
	rng    *rand.Rand
}

// NewRetailGenerator creates a new retail data generator
func NewRetailGenerator(config RetailGeneratorConfig) *RetailGenerator {
	return &RetailGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows returns raw rows keyed by field id
func (g *RetailGenerator) GenerateRows() []map[string]any {
	months := max(g.config.Months, 1)
	customers := max(g.config.Customers, 1)
	rows := make([]map[string]any, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		region := regions[g.rng.Intn(len(regions))]
		category := categories[g.rng.Intn(len(categories))]
		channel := channels[0]
		if g.rng.Float64() < onlineShare[region] {
			channel = channels[1]
		}
		month := g.config.StartDate.AddDate(0, g.rng.Intn(months), 0)

		discount := math.Round(g.rng.Float64()*10) / 100
		if category == "apparel" {
			discount += 0.2
		}
		quantity := 1 + g.rng.Intn(4)
		if discount > 0.15 {
			quantity += 2
		}
		price := basePrice[category] * (0.8 + 0.4*g.rng.Float64())
		sales := math.Round(price*float64(quantity)*(1-discount)*100) / 100

		rows = append(rows, map[string]any{
			"region":      region,
			"category":    category,
			"channel":     channel,
			"month":       month.Format("2006-01"),
			"customer_id": fmt.Sprintf("customer_%04d", 1+g.rng.Intn(customers)),
			"sales":       sales,
			"quantity":    float64(quantity),
			"discount":    discount,
		})
	}
	return rows
}

// Dataset builds the generated rows into a profiled dataset
func (g *RetailGenerator) Dataset() (*dataset.Dataset, error) {
	return dataset.New(g.GenerateRows(), RetailFields())
}

// Retail is the default fixture used across package tests
func Retail() (*dataset.Dataset, error) {
	return NewRetailGenerator(DefaultRetailConfig()).Dataset()
}
