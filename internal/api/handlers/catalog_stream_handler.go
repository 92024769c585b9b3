package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

// DefaultHeartbeatInterval keeps idle streams open through proxies
const DefaultHeartbeatInterval = 30 * time.Second

// CatalogStreamHandler streams catalog change events to listings over
// Server-Sent Events so mounted storefronts can refresh after a reindex.
type CatalogStreamHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   map[string]map[chan *entities.CatalogEvent]bool
	mu        sync.RWMutex
}

// NewCatalogStreamHandler creates a stream handler over eventBus
func NewCatalogStreamHandler(eventBus providers.EventBus) *CatalogStreamHandler {
	return &CatalogStreamHandler{
		eventBus:  eventBus,
		heartbeat: DefaultHeartbeatInterval,
		clients:   make(map[string]map[chan *entities.CatalogEvent]bool),
	}
}

// WithHeartbeat overrides the heartbeat interval
func (h *CatalogStreamHandler) WithHeartbeat(d time.Duration) *CatalogStreamHandler {
	if d > 0 {
		h.heartbeat = d
	}
	return h
}

// StreamCatalogUpdates streams every catalog event
// GET /api/stream/catalog
func (h *CatalogStreamHandler) StreamCatalogUpdates(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelCatalogUpdates, "", map[string]interface{}{
		"channel": providers.EventChannelCatalogUpdates,
	})
}

// StreamStoreUpdates streams events for one store view. With ?category= only
// events touching that category or one of its descendants are sent.
// GET /api/stream/stores/{storeView}
func (h *CatalogStreamHandler) StreamStoreUpdates(w http.ResponseWriter, r *http.Request) {
	storeView := r.PathValue("storeView")
	if storeView == "" {
		respondWithError(w, http.StatusBadRequest, "store view code is required")
		return
	}
	category := strings.Trim(r.URL.Query().Get("category"), "/")

	h.stream(w, r, providers.GetStoreChannel(storeView), category, map[string]interface{}{
		"store_view_code": storeView,
		"category":        category,
	})
}

func (h *CatalogStreamHandler) stream(w http.ResponseWriter, r *http.Request, channel, category string, hello map[string]interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	logger := log.Ctx(ctx)

	eventChan, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to catalog events")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	clientChan := make(chan *entities.CatalogEvent, 10)
	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	hello["timestamp"] = time.Now()
	h.sendEvent(w, "connected", hello)
	flusher.Flush()

	go h.forwardEvents(ctx, eventChan, clientChan, category)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("channel", channel).Msg("catalog stream client disconnected")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

// forwardEvents copies matching events to the client, dropping them when
// the client falls behind.
func (h *CatalogStreamHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.CatalogEvent, clientChan chan<- *entities.CatalogEvent, category string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if !touchesCategory(event, category) {
				continue
			}
			select {
			case clientChan <- event:
			default:
			}
		}
	}
}

// touchesCategory reports whether event changed category or anything under
// it. Events without paths apply to the whole store.
func touchesCategory(event *entities.CatalogEvent, category string) bool {
	if category == "" || len(event.CategoryPaths) == 0 {
		return true
	}
	for _, path := range event.CategoryPaths {
		if path == category || strings.HasPrefix(path, category+"/") {
			return true
		}
	}
	return false
}

func (h *CatalogStreamHandler) registerClient(channel string, clientChan chan *entities.CatalogEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.CatalogEvent]bool)
	}
	h.clients[channel][clientChan] = true
	log.Debug().Str("channel", channel).Int("clients", len(h.clients[channel])).Msg("catalog stream client registered")
}

func (h *CatalogStreamHandler) unregisterClient(channel string, clientChan chan *entities.CatalogEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[channel]; exists {
		delete(clients, clientChan)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

func (h *CatalogStreamHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to marshal stream event")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// ClientCount returns the number of connected stream clients
func (h *CatalogStreamHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

// Stats reports connected clients
// GET /api/stream/stats
func (h *CatalogStreamHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{"connected_clients": h.ClientCount()})
}
