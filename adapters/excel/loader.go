package excel

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"insightflow/domain/dataset"
)

// Load reads a dataset file and builds a profiled snapshot. catalogPath is
// optional and points at a JSON array of field overrides.
func Load(path, catalogPath string) (*dataset.Dataset, error) {
	data, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	fields := InferFields(data.Headers, data.Rows)
	if catalogPath != "" {
		overrides, err := ReadCatalog(catalogPath)
		if err != nil {
			return nil, err
		}
		if fields, err = MergeFields(fields, overrides); err != nil {
			return nil, err
		}
	}
	ds, err := dataset.New(data.Rows, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset from %s: %w", path, err)
	}
	log.Printf("[DataReader] dataset %s ready (%d fields, %d rows)", ds.ID, ds.Catalog.Len(), ds.Len())
	return ds, nil
}

// ReadCatalog reads a JSON array of fields
func ReadCatalog(path string) ([]dataset.Field, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var fields []dataset.Field
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return fields, nil
}
