package storage

import "errors"

var (
	// ErrExportNotFound is returned when no export exists for the requested ID.
	ErrExportNotFound = errors.New("export not found")
	// ErrUnknownBackend is returned for a storage type other than local or aws.
	ErrUnknownBackend = errors.New("unknown storage backend")
)
