// Package server exposes a graphql-go schema over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/graphql/loaders"
)

const maxRequestBytes = 1 << 20

// Request is a GraphQL-over-HTTP request body
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler executes GraphQL requests against a schema
type Handler struct {
	schema     graphql.Schema
	newLoaders func() *loaders.Loaders
}

// NewHandler creates a handler. newLoaders is called once per request and
// may be nil.
func NewHandler(schema graphql.Schema, newLoaders func() *loaders.Loaders) *Handler {
	return &Handler{schema: schema, newLoaders: newLoaders}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
		req.OperationName = r.URL.Query().Get("operationName")
		if raw := r.URL.Query().Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				writeErrors(w, http.StatusBadRequest, "variables must be a JSON object")
				return
			}
		}
		if isMutation(req.Query, req.OperationName) {
			writeErrors(w, http.StatusMethodNotAllowed, "mutations require POST")
			return
		}
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrors(w, http.StatusBadRequest, "request body must be a GraphQL JSON request")
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeErrors(w, http.StatusMethodNotAllowed, "only GET and POST are supported")
		return
	}

	if req.Query == "" {
		writeErrors(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := r.Context()
	if h.newLoaders != nil {
		ctx = loaders.WithLoaders(ctx, h.newLoaders())
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	if result.HasErrors() {
		log.Ctx(ctx).Debug().Int("errors", len(result.Errors)).Str("operation", req.OperationName).Msg("graphql request returned errors")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to encode graphql response")
	}
}

// isMutation reports whether the operation that would run is a mutation.
// Unparseable documents are left to the executor to report.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		return op.Operation == ast.OperationTypeMutation
	}
	return false
}

func writeErrors(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}
