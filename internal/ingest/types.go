package ingest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ignite/cashflow-forecast/internal/forecast"
)

// graphQLRequest is the POST body of a GraphQL query.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLResponse is the standard GraphQL envelope.
type graphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphQLError             `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// looseNumber reads a JSON number, a numeric string or null. Anything else
// leaves it unset so the record is dropped downstream instead of failing the
// whole response.
type looseNumber struct {
	value *float64
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		n.value = &v
	}
	return nil
}

// looseTimestamp reads a timestamp string, or epoch milliseconds sent as a
// JSON number.
type looseTimestamp string

func (t *looseTimestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*t = looseTimestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if ms, err := n.Int64(); err == nil {
			*t = looseTimestamp(strconv.FormatInt(ms, 10))
		}
	}
	return nil
}

// TicketSale is a revenue record: ventaBoletos { precio fechaVenta }.
type TicketSale struct {
	Price    looseNumber    `json:"precio"`
	SaleDate looseTimestamp `json:"fechaVenta"`
}

// Expense is an expense record: gastos { monto fecha }.
type Expense struct {
	Amount looseNumber    `json:"monto"`
	Date   looseTimestamp `json:"fecha"`
}

// Record converts the sale to the engine's raw shape.
func (s TicketSale) Record() forecast.RawRecord {
	return forecast.RawRecord{Value: s.Price.value, Timestamp: string(s.SaleDate)}
}

// Record converts the expense to the engine's raw shape.
func (e Expense) Record() forecast.RawRecord {
	return forecast.RawRecord{Value: e.Amount.value, Timestamp: string(e.Date)}
}
