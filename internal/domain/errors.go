package domain

import "errors"

// Predictable failures surfaced as typed errors so callers can render
// specific guidance instead of a generic failure.
var (
	// ErrNotFound means the station (or requested record) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyClosed means a mutation was attempted against a closed record.
	ErrAlreadyClosed = errors.New("reconciliation already closed")

	// ErrWindowExceeded means the date is older than the backdated-closure window.
	ErrWindowExceeded = errors.New("backdated closure window exceeded")

	// ErrDayNotYetComplete means the station-local day has not ended and no
	// override was supplied.
	ErrDayNotYetComplete = errors.New("business day not yet complete")

	// ErrUpstreamUnavailable means the aggregation reader or repository
	// failed; the operation is safe to retry.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNoSalesData means the aggregation reader has no sales for the
	// station-day. Summaries treat this as an all-zero system side.
	ErrNoSalesData = errors.New("no sales data for date")
)
