package entities

import (
	"time"
)

// SearchEvent records one listing request for analytics
type SearchEvent struct {
	ID             string    `json:"id" db:"id"`
	Phrase         string    `json:"phrase" db:"phrase"`
	CategoryPath   string    `json:"category_path" db:"category_path"`
	FilterCount    int       `json:"filter_count" db:"filter_count"`
	Sort           string    `json:"sort" db:"sort"`
	Grouped        bool      `json:"grouped" db:"grouped"`
	ResultCount    int       `json:"result_count" db:"result_count"`
	FailedRequests int       `json:"failed_requests" db:"failed_requests"`
	LatencyMs      int       `json:"latency_ms" db:"latency_ms"`
	StoreViewCode  string    `json:"store_view_code" db:"store_view_code"`
	SessionID      string    `json:"session_id,omitempty" db:"session_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ZeroResultQuery aggregates phrases that returned nothing
type ZeroResultQuery struct {
	Phrase   string    `json:"phrase" db:"phrase"`
	Searches int       `json:"searches" db:"searches"`
	LastSeen time.Time `json:"last_seen" db:"last_seen"`
}
