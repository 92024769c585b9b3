package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/pkg/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestClient_QuerySendsHeadersAndDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "env-1", r.Header.Get("Magento-Environment-Id"))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Empty(t, r.Header.Values("Magento-Customer-Group"))

		var req GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bags", req.Variables["phrase"])

		_, _ = w.Write([]byte(`{"data":{"productSearch":{"total_count":7}}}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		Endpoint: server.URL,
		Headers:  map[string]string{"Magento-Environment-Id": "env-1", "Magento-Customer-Group": ""},
	})

	var out struct {
		ProductSearch struct {
			TotalCount int `json:"total_count"`
		} `json:"productSearch"`
	}
	err := client.Query(context.Background(), GraphQLRequest{
		Query:         "query { productSearch { total_count } }",
		Variables:     map[string]interface{}{"phrase": "bags"},
		OperationName: "productSearch",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, 7, out.ProductSearch.TotalCount)
}

func TestClient_QueryRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Retry: fastRetry()})
	err := client.Query(context.Background(), GraphQLRequest{Query: "{ a }"}, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GraphQLErrorsAreNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Field \"foo\" not found"},{"message":"bad sort"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Retry: fastRetry()})
	err := client.Query(context.Background(), GraphQLRequest{Query: "{ foo }"}, nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var gqlErrs GraphQLErrors
	require.ErrorAs(t, err, &gqlErrs)
	assert.Equal(t, `graphql: Field "foo" not found; bad sort`, gqlErrs.Error())
}

func TestClient_MutateIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Retry: fastRetry()})
	err := client.Mutate(context.Background(), GraphQLRequest{Query: "mutation { createEmptyCart }"}, nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&StatusError{StatusCode: 503}))
	assert.True(t, Retryable(&StatusError{StatusCode: 429}))
	assert.False(t, Retryable(&StatusError{StatusCode: 400}))
	assert.False(t, Retryable(GraphQLErrors{{Message: "x"}}))
	assert.False(t, Retryable(context.Canceled))
}
