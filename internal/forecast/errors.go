package forecast

import "errors"

// Sentinel errors for boundary parsing. The engine itself never returns errors;
// degenerate inputs are reported through Outcome.
var (
	ErrUnknownPeriod  = errors.New("unknown aggregation period")
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidHorizon = errors.New("horizon must be a positive integer")
)

// Outcome classifies a ForecastResult.
type Outcome string

const (
	// OutcomeOK means the requested model was fitted as asked.
	OutcomeOK Outcome = "ok"
	// OutcomeEmpty means there was no aggregated data to fit.
	OutcomeEmpty Outcome = "empty"
	// OutcomeDegraded means the requested model could not be fitted and a
	// documented fallback produced the forecast. Reason says which.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeUnknownModel means the model tag was not recognized and the
	// forecast is all zeros.
	OutcomeUnknownModel Outcome = "unknown_model"
)
