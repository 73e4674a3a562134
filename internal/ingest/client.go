package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/cashflow-forecast/internal/forecast"
	"github.com/ignite/cashflow-forecast/internal/pkg/httpretry"
)

const (
	revenueQuery = `query {
  ventaBoletos {
    precio
    fechaVenta
  }
}`
	expenseQuery = `query {
  gastos {
    monto
    fecha
  }
}`
)

// Config holds GraphQL client settings
type Config struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

// Client reads ticket sales and expenses from the ledger GraphQL API
type Client struct {
	url        string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new GraphQL ledger client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		httpClient: httpretry.NewRetryClient(&http.Client{Timeout: timeout}, cfg.MaxRetries),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// Name implements Source.
func (c *Client) Name() string { return "graphql" }

// FetchRevenue returns every ticket sale as a raw record.
func (c *Client) FetchRevenue(ctx context.Context) ([]forecast.RawRecord, error) {
	var sales []TicketSale
	if err := c.query(ctx, revenueQuery, "ventaBoletos", &sales); err != nil {
		return nil, err
	}
	out := make([]forecast.RawRecord, len(sales))
	for i, s := range sales {
		out[i] = s.Record()
	}
	return out, nil
}

// FetchExpenses returns every expense as a raw record.
func (c *Client) FetchExpenses(ctx context.Context) ([]forecast.RawRecord, error) {
	var expenses []Expense
	if err := c.query(ctx, expenseQuery, "gastos", &expenses); err != nil {
		return nil, err
	}
	out := make([]forecast.RawRecord, len(expenses))
	for i, e := range expenses {
		out[i] = e.Record()
	}
	return out, nil
}

// query posts a GraphQL query and decodes data[field] into out.
func (c *Client) query(ctx context.Context, query, field string, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, resp.StatusCode, truncate(string(respBody), 512))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}

	raw, ok := envelope.Data[field]
	if !ok {
		return fmt.Errorf("%w: data.%s missing", ErrUnexpectedResponse, field)
	}
	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: data.%s: %v", ErrUnexpectedResponse, field, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
