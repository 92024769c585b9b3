package repositories

import (
	"context"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// SearchAnalyticsRepository persists listing analytics
type SearchAnalyticsRepository interface {
	LogEvent(ctx context.Context, event *entities.SearchEvent) error
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.ZeroResultQuery, error)
}
