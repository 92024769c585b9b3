// Package storefront validates store details and mounts listing sessions.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
	"github.com/zatekoja/livesearch-plp/pkg/utils"
)

var allowedKeys = map[string]bool{
	"environmentId":   true,
	"environmentType": true,
	"websiteCode":     true,
	"storeCode":       true,
	"storeViewCode":   true,
	"config":          true,
	"context":         true,
	"apiUrl":          true,
	"apiKey":          true,
	"commerceUrl":     true,
}

// config flags hosts commonly send as booleans or numbers
var stringConfigKeys = []string{"displayOutOfStock", "allowAllProducts", "currencyRate"}

// ValidateStoreDetails keeps the allowed top-level keys of raw, sanitizes
// their string values and decodes the result. Dropped keys are logged.
// raw is not modified.
func ValidateStoreDetails(ctx context.Context, raw map[string]interface{}) (*entities.StoreDetails, error) {
	if raw == nil {
		return nil, apperrors.NewValidationError("store details were not provided")
	}

	clean := make(map[string]interface{}, len(raw))
	var dropped []string
	for key, value := range raw {
		if !allowedKeys[key] {
			dropped = append(dropped, key)
			continue
		}
		if s, ok := value.(string); ok {
			value = utils.SanitizeString(s)
		}
		clean[key] = value
	}

	if len(dropped) > 0 {
		sort.Strings(dropped)
		log.Ctx(ctx).Error().Strs("keys", dropped).Msg("invalid store details keys dropped")
	}

	if cfg, ok := clean["config"].(map[string]interface{}); ok {
		clean["config"] = stringifyConfig(cfg)
	}

	data, err := json.Marshal(clean)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("store details are not serializable: %v", err))
	}
	var store entities.StoreDetails
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid store details: %v", err))
	}
	return &store, nil
}

func stringifyConfig(cfg map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	for _, key := range stringConfigKeys {
		switch v := out[key].(type) {
		case bool:
			out[key] = strconv.FormatBool(v)
		case int:
			out[key] = strconv.Itoa(v)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out
}
