package storefront

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// DecodeStoreDetails parses YAML or JSON store details into a raw map, ready
// for ValidateStoreDetails.
func DecodeStoreDetails(data []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse store details: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("store details are empty")
	}
	return raw, nil
}

// LoadStoreDetailsFile reads and parses a store details file
func LoadStoreDetailsFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store details %s: %w", path, err)
	}
	return DecodeStoreDetails(data)
}

// LoadGroupLookup reads the lookup-table grouping source, a YAML list of
// {id, title} entries.
func LoadGroupLookup(path string) ([]entities.GroupValue, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read group lookup %s: %w", path, err)
	}
	var values []entities.GroupValue
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse group lookup %s: %w", path, err)
	}
	return values, nil
}
