// Package evaluation scores listing search relevance against a golden set
// of labelled queries.
package evaluation

import (
	"time"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// Kind is the listing context a golden query is run in
type Kind string

const (
	KindPhrase   Kind = "phrase"   // free-text search page
	KindCategory Kind = "category" // category page, optionally with a phrase
)

// IsValid checks if the kind is one of the defined constants.
func (k Kind) IsValid() bool {
	switch k {
	case KindPhrase, KindCategory:
		return true
	}
	return false
}

// GoldenQuery is a labelled listing request with the SKUs a good result
// set contains.
type GoldenQuery struct {
	ID           string                 `json:"id" yaml:"id"`
	Kind         Kind                   `json:"kind" yaml:"kind"`
	Phrase       string                 `json:"phrase" yaml:"phrase"`
	Category     string                 `json:"category,omitempty" yaml:"category"`
	Filters      []entities.FacetFilter `json:"filters,omitempty" yaml:"filters"`
	ExpectedSKUs []string               `json:"expected_skus" yaml:"expected_skus"`
	Difficulty   string                 `json:"difficulty" yaml:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID       string        `json:"query_id"`
	Kind          Kind          `json:"kind"`
	RecallAtK     float64       `json:"recall_at_k"`
	MRRAtK        float64       `json:"mrr_at_k"`
	NDCGAtK       float64       `json:"ndcg_at_k"`
	ResultCount   int           `json:"result_count"`
	RetrievedSKUs []string      `json:"retrieved_skus"`
	Latency       time.Duration `json:"latency"`
	Error         string        `json:"error,omitempty"`
}

// EvalSummary holds aggregate metrics across all golden queries. Averages
// only cover queries that ran.
type EvalSummary struct {
	K               int                   `json:"k"`
	TotalQueries    int                   `json:"total_queries"`
	FailedQueries   int                   `json:"failed_queries"`
	AvgRecallAtK    float64               `json:"avg_recall_at_k"`
	AvgMRRAtK       float64               `json:"avg_mrr_at_k"`
	AvgNDCGAtK      float64               `json:"avg_ndcg_at_k"`
	AvgLatency      time.Duration         `json:"avg_latency"`
	QueriesWithHits int                   `json:"queries_with_hits"`
	ByKind          map[Kind]*KindSummary `json:"by_kind"`
	Results         []EvalResult          `json:"results"`
}

// KindSummary holds metrics grouped by listing kind.
type KindSummary struct {
	Count        int     `json:"count"`
	AvgRecallAtK float64 `json:"avg_recall_at_k"`
	AvgMRRAtK    float64 `json:"avg_mrr_at_k"`
}
