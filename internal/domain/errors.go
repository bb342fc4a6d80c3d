package domain

import "errors"

// Per-fund conditions. The estimation orchestrator absorbs all of them; they never reach callers.
var (
	// ErrProviderUnavailable covers timeouts and failures of any upstream adapter
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInsufficientCoverage means the quoted disclosed weight is below the threshold
	ErrInsufficientCoverage = errors.New("insufficient holdings coverage")
	// ErrNoProxyMatch means neither self-resolution nor the keyword table matched
	ErrNoProxyMatch = errors.New("no proxy match")
	// ErrStaleData means every tier was exhausted
	ErrStaleData = errors.New("stale data")
)

// ErrInvalidFundID rejects codes that are not six digits before they reach an upstream URL
var ErrInvalidFundID = errors.New("invalid fund code")
