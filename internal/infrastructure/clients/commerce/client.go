// Package commerce is an HTTP client for the commerce GraphQL endpoints.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zatekoja/livesearch-plp/pkg/retry"
)

// HeaderRequestID carries a fresh id on every request
const HeaderRequestID = "X-Request-Id"

var errDecode = errors.New("commerce: malformed payload")

// GraphQLRequest is the POST body of a GraphQL call
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// GraphQLError is one entry of a response's errors list
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// GraphQLResponse is the envelope of a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLErrors is returned when the response carries errors
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("commerce endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client
type Config struct {
	Endpoint string
	Headers  map[string]string
	Timeout  time.Duration
	Retry    retry.Config
}

// Client posts GraphQL documents to one endpoint with fixed headers
type Client struct {
	endpoint   string
	headers    map[string]string
	retryCfg   retry.Config
	httpClient *http.Client
}

// NewClient creates a client. A zero Timeout defaults to 10s.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		headers:    headers,
		retryCfg:   cfg.Retry,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.httpClient = hc
	return &cp
}

// Endpoint returns the URL requests are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Query runs an idempotent read, retrying transport failures and 5xx
// responses. GraphQL errors are not retried.
func (c *Client) Query(ctx context.Context, req GraphQLRequest, out interface{}) error {
	if c.retryCfg.MaxAttempts <= 1 {
		return c.do(ctx, req, out)
	}
	logger := log.Ctx(ctx).With().Str("operation", req.OperationName).Logger()
	return retry.DoWithLog(ctx, c.retryCfg, "commerce", func() error {
		err := c.do(ctx, req, out)
		if err != nil && !Retryable(err) {
			return retry.Permanent(err)
		}
		return err
	}, retry.ZerologFunc(logger, "commerce"))
}

// Retryable reports whether err is a transport failure or a 5xx/429 status
func Retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	var gqlErrs GraphQLErrors
	if errors.As(err, &gqlErrs) || errors.Is(err, errDecode) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// Mutate runs a mutation exactly once
func (c *Client) Mutate(ctx context.Context, req GraphQLRequest, out interface{}) error {
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req GraphQLRequest, out interface{}) (err error) {
	ctx, span := otel.Tracer("github.com/zatekoja/livesearch-plp/commerce").Start(ctx, "commerce."+req.OperationName)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: request: %v", errDecode, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", errDecode, err)
	}
	for k, v := range c.headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, requestID)
	span.SetAttributes(attribute.String("request.id", requestID), attribute.String("graphql.operation", req.OperationName))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Ctx(ctx).Debug().
		Str("operation", req.OperationName).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("commerce request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var envelope GraphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: response: %v", errDecode, err)
	}
	if len(envelope.Errors) > 0 {
		return GraphQLErrors(envelope.Errors)
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: data: %v", errDecode, err)
	}
	return nil
}
