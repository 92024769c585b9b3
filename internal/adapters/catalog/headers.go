package catalog

import "github.com/zatekoja/livesearch-plp/internal/domain/entities"

// CatalogHeaders returns the catalog service headers for a store. Empty
// values are skipped by the transport.
func CatalogHeaders(store *entities.StoreDetails) map[string]string {
	return map[string]string{
		"Magento-Environment-Id":  store.EnvironmentID,
		"Magento-Website-Code":    store.WebsiteCode,
		"Magento-Store-Code":      store.StoreCode,
		"Magento-Store-View-Code": store.StoreViewCode,
		"Magento-Customer-Group":  store.Context.CustomerGroup,
		"X-Api-Key":               store.APIKey,
	}
}

// CommerceHeaders returns the headers for the commerce GraphQL endpoint
func CommerceHeaders(store *entities.StoreDetails) map[string]string {
	return map[string]string{"Store": store.StoreViewCode}
}
