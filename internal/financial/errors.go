package financial

import "errors"

var (
	// ErrNoData means no snapshot exists and none could be fetched.
	ErrNoData = errors.New("no ledger data available")
	// ErrExportDisabled means the service was built without an exporter.
	ErrExportDisabled = errors.New("forecast export is not configured")
	// ErrRefreshDisabled means the service was built without a refresher.
	ErrRefreshDisabled = errors.New("snapshot refresh is not configured")
)
