package ingest

import "errors"

// Sentinel errors for the ingest layer.
var (
	ErrUpstreamStatus     = errors.New("upstream returned non-2xx status")
	ErrGraphQL            = errors.New("graphql query returned errors")
	ErrUnexpectedResponse = errors.New("unexpected upstream response shape")
)
