package storefront

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
)

// Registry keeps mounted sessions by id. A session expires ttl after it was
// last used, and the least recently used one is dropped at capacity.
type Registry struct {
	sessions *expirable.LRU[string, *services.ListingSession]
}

// NewRegistry creates a session registry
func NewRegistry(ttl time.Duration, capacity int) *Registry {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Registry{
		sessions: expirable.NewLRU[string, *services.ListingSession](capacity, nil, ttl),
	}
}

// Put stores session under its id
func (r *Registry) Put(session *services.ListingSession) {
	r.sessions.Add(session.ID(), session)
}

// Get returns the session with id and extends its lifetime
func (r *Registry) Get(id string) (*services.ListingSession, bool) {
	session, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	r.sessions.Add(id, session)
	return session, true
}

// Len returns the number of stored sessions
func (r *Registry) Len() int {
	return r.sessions.Len()
}
