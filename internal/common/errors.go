// Package common defines shared constants and sentinel errors used across
// the Affirmations client layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Remote gateway errors. Every gateway failure maps onto one of these;
	// the sync engine treats them all as "try again later".
	ErrUnavailable  = errors.New("remote unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession is returned when a remote operation requires an
	// authenticated session and none is active.
	ErrNoSession = errors.New("no active session")

	// ErrFlushInProgress signals that a queue flush was skipped because
	// another one is already running.
	ErrFlushInProgress = errors.New("flush already in progress")
)
