package service

import "errors"

// Sentinel errors of the register core. Lifecycle and validation errors signal
// a caller/workflow mistake and are surfaced verbatim to the operator — never
// retried automatically. ErrSourceUnavailable is the one retryable failure: it
// aborts the whole report and nothing partial is ever persisted.
var (
	ErrSessionAlreadyOpen   = errors.New("a register session is already open")
	ErrSessionAlreadyClosed = errors.New("register session is already closed")
	ErrNoActiveSession      = errors.New("no active register session")
	ErrInvalidAmount        = errors.New("amount must not be negative")
	ErrRangeComputation     = errors.New("report range computation failed")
	ErrSourceUnavailable    = errors.New("sales data source unavailable")
)
