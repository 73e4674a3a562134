package snapshot

import "errors"

var (
	// ErrNoSnapshot means nothing has been stored yet.
	ErrNoSnapshot = errors.New("no snapshot available")
	// ErrNotFound means the requested version was never stored or has expired.
	ErrNotFound = errors.New("snapshot version not found")
	// ErrRefreshInProgress is returned when another refresh holds the lock.
	ErrRefreshInProgress = errors.New("snapshot refresh already in progress")
)
