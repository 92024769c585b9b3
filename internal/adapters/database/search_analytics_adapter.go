package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/repositories"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

const searchEventsTable = "search_events"

// searchEventsDDL creates the analytics table. goqu has no DDL builder.
const searchEventsDDL = `
CREATE TABLE IF NOT EXISTS search_events (
	id              UUID PRIMARY KEY,
	phrase          TEXT NOT NULL DEFAULT '',
	category_path   TEXT NOT NULL DEFAULT '',
	filter_count    INTEGER NOT NULL DEFAULT 0,
	sort            TEXT NOT NULL DEFAULT '',
	grouped         BOOLEAN NOT NULL DEFAULT FALSE,
	result_count    INTEGER NOT NULL DEFAULT 0,
	failed_requests INTEGER NOT NULL DEFAULT 0,
	latency_ms      INTEGER NOT NULL DEFAULT 0,
	store_view_code TEXT NOT NULL DEFAULT '',
	session_id      TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_search_events_zero_results
	ON search_events (phrase, created_at) WHERE result_count = 0;
`

// SearchAnalyticsAdapter stores listing analytics in PostgreSQL
type SearchAnalyticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	rows   *sqlx.DB
}

// NewSearchAnalyticsAdapter creates a new search analytics adapter
func NewSearchAnalyticsAdapter(client *postgres.Client) *SearchAnalyticsAdapter {
	return &SearchAnalyticsAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		rows:   sqlx.NewDb(client.DB(), "postgres"),
	}
}

var _ repositories.SearchAnalyticsRepository = (*SearchAnalyticsAdapter)(nil)

// EnsureSchema creates the search_events table when it is missing
func (a *SearchAnalyticsAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, searchEventsDDL); err != nil {
		return apperrors.NewInternalError("failed to create search_events table", err)
	}
	return nil
}

// LogEvent inserts one search event, assigning an id and timestamp if unset
func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":              event.ID,
		"phrase":          event.Phrase,
		"category_path":   event.CategoryPath,
		"filter_count":    event.FilterCount,
		"sort":            event.Sort,
		"grouped":         event.Grouped,
		"result_count":    event.ResultCount,
		"failed_requests": event.FailedRequests,
		"latency_ms":      event.LatencyMs,
		"store_view_code": event.StoreViewCode,
		"created_at":      event.CreatedAt,
	}
	if event.SessionID != "" {
		record["session_id"] = event.SessionID
	}

	query, args, err := a.db.Insert(searchEventsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}
	return nil
}

// GetZeroResultQueries returns phrases that found nothing, most frequent first
func (a *SearchAnalyticsAdapter) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.ZeroResultQuery, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := a.db.From(searchEventsTable).
		Select(
			goqu.C("phrase"),
			goqu.COUNT("*").As("searches"),
			goqu.MAX("created_at").As("last_seen"),
		).
		Where(
			goqu.C("result_count").Eq(0),
			goqu.C("phrase").Neq(""),
		).
		GroupBy("phrase").
		Order(goqu.I("searches").Desc(), goqu.I("last_seen").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	results := []*entities.ZeroResultQuery{}
	if err := a.rows.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to get zero result queries", err)
	}
	return results, nil
}
