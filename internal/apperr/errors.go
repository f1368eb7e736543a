// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNotDocument    = errors.New("not a document")
	ErrLedgerDisabled = errors.New("ledger is disabled")
)
