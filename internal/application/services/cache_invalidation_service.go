package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

// Cache key patterns owned by the listing
const (
	CachePatternListings   = "http:cache:*listing*"
	CachePatternCategories = "http:cache:*categories*"
	CachePatternCatalog    = "catalog:*"
)

// CacheInvalidationService drops cached listings when the catalog changes
type CacheInvalidationService struct {
	cache      providers.CacheProvider
	eventBus   providers.EventBus
	categories *CategoryService
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service.
// categories may be nil; when set it is reloaded after category changes.
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus, categories *CategoryService) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:      cache,
		eventBus:   eventBus,
		categories: categories,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for catalog events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelCatalogUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to catalog updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Str("channel", providers.EventChannelCatalogUpdates).Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.CatalogEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.CatalogEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := log.With().Str("event_id", event.ID).Str("type", string(event.Type)).Logger()

	patterns := []string{CachePatternListings}
	if event.Type == entities.CatalogEventCategoriesChange {
		patterns = append(patterns, CachePatternCategories, CachePatternCatalog)
	}

	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			logger.Warn().Err(err).Str("pattern", pattern).Msg("failed to invalidate cache pattern")
		}
	}

	if event.Type == entities.CatalogEventCategoriesChange && s.categories != nil {
		if err := s.categories.Load(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to reload category tree")
		}
	}

	logger.Info().Strs("patterns", patterns).Msg("invalidated listing caches")
}

// InvalidateAll drops every cache entry the listing owns
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	for _, pattern := range []string{CachePatternListings, CachePatternCategories, CachePatternCatalog} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}
	return nil
}
