// Package forecast turns raw revenue and expense records into calendar-bucketed
// series and projects them forward.
//
// Everything in this package is a pure function of its inputs: no I/O, no shared
// state, no logging. Callers (see internal/financial) own snapshots and hand
// copies of them in.
//
// Models index buckets by position 0..n-1, not by elapsed calendar time. Empty
// buckets are never synthesized, so a gap between two buckets is invisible to the
// fit. Forecast dates on the other hand step by real calendar periods.
//
// Fit metrics are in-sample: they compare the fitted curve against the same
// values it was trained on and are therefore optimistic.
package forecast
