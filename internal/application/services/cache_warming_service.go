package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

// CacheWarmingService keeps the category tree and attribute metadata hot.
// Both are read through caching decorators, so fetching them repopulates
// the cache.
type CacheWarmingService struct {
	categories *CategoryService
	metadata   providers.AttributeMetadataProvider
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(categories *CategoryService, metadata providers.AttributeMetadataProvider) *CacheWarmingService {
	return &CacheWarmingService{categories: categories, metadata: metadata}
}

// WarmCache refreshes categories and attribute metadata. Failures are logged.
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()

	if s.categories != nil {
		if err := s.categories.Load(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to warm category tree")
		}
	}
	if s.metadata != nil {
		if _, err := s.metadata.FetchAttributeMetadata(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to warm attribute metadata")
		}
	}

	log.Debug().Dur("took", time.Since(start)).Msg("cache warming completed")
	return nil
}

// StartPeriodicWarming warms once, then again every interval until ctx ends
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stopping cache warming service")
				return
			case <-ticker.C:
				warmCtx, cancel := context.WithTimeout(context.Background(), interval/2)
				_ = s.WarmCache(warmCtx)
				cancel()
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("started periodic cache warming")
}
