package evaluation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

// DefaultK is the cut-off the metrics are computed at
const DefaultK = 10

// Runner runs golden queries against a product searcher.
type Runner struct {
	searcher providers.ProductSearcher
	k        int
	context  *entities.QueryContext
}

// NewRunner creates a runner scoring the top k results. k <= 0 uses DefaultK.
func NewRunner(searcher providers.ProductSearcher, k int) *Runner {
	if k <= 0 {
		k = DefaultK
	}
	return &Runner{searcher: searcher, k: k}
}

// WithContext sends the shopper context with every request
func (r *Runner) WithContext(qc *entities.QueryContext) *Runner {
	r.context = qc
	return r
}

// Request builds the backend request for a golden query, filtering a
// category query the way a category page does.
func (r *Runner) Request(gq GoldenQuery) entities.ProductSearchRequest {
	filters := entities.CloneFilters(gq.Filters)
	if gq.Category != "" {
		filters = append(filters, services.CategoryFilters([]string{gq.Category}, "")...)
	}

	sort := entities.SearchSortDefault
	if gq.Kind == KindCategory && gq.Phrase == "" {
		sort = entities.CategorySortDefault
	}

	return entities.ProductSearchRequest{
		Phrase:      gq.Phrase,
		Filter:      filters,
		Sort:        entities.ParseSort(sort),
		Context:     r.context,
		PageSize:    r.k,
		CurrentPage: 1,
	}
}

// Run evaluates every query. A failing query is recorded and excluded from
// the averages.
func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		K:            r.k,
		TotalQueries: len(queries),
		ByKind:       make(map[Kind]*KindSummary),
	}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		res, err := r.searcher.SearchProducts(ctx, r.Request(gq))
		result := EvalResult{QueryID: gq.ID, Kind: gq.Kind, Latency: time.Since(start)}

		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("query_id", gq.ID).Msg("golden query failed")
			result.Error = err.Error()
			summary.FailedQueries++
			summary.Results = append(summary.Results, result)
			continue
		}

		skus := make([]string, 0, len(res.Items))
		for _, item := range res.Items {
			skus = append(skus, item.SKU())
		}
		result.RetrievedSKUs = skus
		result.ResultCount = res.TotalCount
		result.RecallAtK = RecallAtK(gq.ExpectedSKUs, skus, r.k)
		result.MRRAtK = MRRAtK(gq.ExpectedSKUs, skus, r.k)
		result.NDCGAtK = NDCGAtK(gq.ExpectedSKUs, skus, r.k)

		r.updateSummary(summary, result)
		summary.Results = append(summary.Results, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgRecallAtK += res.RecallAtK
	s.AvgMRRAtK += res.MRRAtK
	s.AvgNDCGAtK += res.NDCGAtK
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	ks, ok := s.ByKind[res.Kind]
	if !ok {
		ks = &KindSummary{}
		s.ByKind[res.Kind] = ks
	}
	ks.Count++
	ks.AvgRecallAtK += res.RecallAtK
	ks.AvgMRRAtK += res.MRRAtK
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	ran := s.TotalQueries - s.FailedQueries
	if ran > 0 {
		n := float64(ran)
		s.AvgRecallAtK /= n
		s.AvgMRRAtK /= n
		s.AvgNDCGAtK /= n
		s.AvgLatency /= time.Duration(ran)
	}

	for _, ks := range s.ByKind {
		if ks.Count > 0 {
			n := float64(ks.Count)
			ks.AvgRecallAtK /= n
			ks.AvgMRRAtK /= n
		}
	}
}
