package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/cashflow-forecast/internal/pkg/httpretry"
)

// newLedgerServer answers ventaBoletos and gastos queries with canned data.
func newLedgerServer(t *testing.T, revenue, expenses string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req graphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(req.Query, "ventaBoletos"):
			w.Write([]byte(`{"data":{"ventaBoletos":` + revenue + `}}`))
		case strings.Contains(req.Query, "gastos"):
			w.Write([]byte(`{"data":{"gastos":` + expenses + `}}`))
		default:
			t.Errorf("unexpected query %q", req.Query)
		}
	}))
}

func newTestClient(url string) *Client {
	c := NewClient(Config{URL: url, Timeout: 5 * time.Second})
	c.SetHTTPClient(httpretry.NewRetryClient(nil, 1, httpretry.WithBackoff(time.Millisecond, time.Millisecond)))
	return c
}

func TestFetchRevenue(t *testing.T) {
	server := newLedgerServer(t, `[
		{"precio": 150.5, "fechaVenta": "2024-01-01T10:00:00.000Z"},
		{"precio": "99.90", "fechaVenta": 1704153600000},
		{"precio": null, "fechaVenta": "2024-01-03"},
		{"precio": {"amount": 1}, "fechaVenta": "2024-01-04"}
	]`, `[]`)
	defer server.Close()

	recs, err := newTestClient(server.URL).FetchRevenue(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 4)

	require.NotNil(t, recs[0].Value)
	assert.Equal(t, 150.5, *recs[0].Value)
	assert.Equal(t, "2024-01-01T10:00:00.000Z", recs[0].Timestamp)

	require.NotNil(t, recs[1].Value)
	assert.Equal(t, 99.9, *recs[1].Value)
	assert.Equal(t, "1704153600000", recs[1].Timestamp)

	assert.Nil(t, recs[2].Value)
	assert.Nil(t, recs[3].Value)
}

func TestFetchExpenses(t *testing.T) {
	server := newLedgerServer(t, `[]`, `[{"monto": 20, "fecha": "2024-02-01"}]`)
	defer server.Close()

	recs, err := newTestClient(server.URL).FetchExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 20.0, *recs[0].Value)
	assert.Equal(t, "2024-02-01", recs[0].Timestamp)
}

func TestFetch_NullListIsEmpty(t *testing.T) {
	server := newLedgerServer(t, `null`, `[]`)
	defer server.Close()

	recs, err := newTestClient(server.URL).FetchRevenue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFetch_GraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"Cannot query field \"gastos\""}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchExpenses(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGraphQL))
	assert.Contains(t, err.Error(), "Cannot query field")
}

func TestFetch_MissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchRevenue(context.Background())
	assert.True(t, errors.Is(err, ErrUnexpectedResponse))
}

func TestFetch_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchRevenue(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamStatus))
	assert.Contains(t, err.Error(), "401")
}

func TestFetchAll(t *testing.T) {
	server := newLedgerServer(t,
		`[{"precio": 10, "fechaVenta": "2024-01-01"}]`,
		`[{"monto": 4, "fecha": "2024-01-01"}, {"monto": 6, "fecha": "2024-01-02"}]`)
	defer server.Close()

	recs, err := FetchAll(context.Background(), newTestClient(server.URL))
	require.NoError(t, err)
	assert.Len(t, recs.Revenue, 1)
	assert.Len(t, recs.Expense, 2)
}

func TestFetchAll_OneStreamFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		json.NewDecoder(r.Body).Decode(&req)
		if strings.Contains(req.Query, "gastos") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"data":{"ventaBoletos":[]}}`))
	}))
	defer server.Close()

	_, err := FetchAll(context.Background(), newTestClient(server.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch expenses from graphql")
}
