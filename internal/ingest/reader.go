package ingest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a catalog export file and returns its raw records in file order.
func Load(path string) ([]rawProperty, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var catalog rawCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	records := make([]rawProperty, 0, len(catalog.Properties))
	for i, env := range catalog.Properties {
		if env.Property.ID == "" {
			return nil, fmt.Errorf("catalog %s: record %d has no id", path, i)
		}
		records = append(records, env.Property)
	}
	return records, nil
}
