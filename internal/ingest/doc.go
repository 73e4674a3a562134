// Package ingest fetches revenue and expense records from upstream systems and
// hands them over as forecast.RawRecord values. It does no parsing beyond what
// is needed to read the wire format; timestamp parsing and malformed-record
// handling belong to forecast.Normalize.
package ingest
