package domain

import "errors"

// Error taxonomy for the resolution pipeline. Only ErrInvalidInput and
// ErrRateLimited ever reach the caller as request failures; the rest are
// absorbed by falling back to a degraded data source.
var (
	// ErrInvalidInput marks a missing or malformed required identifier.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited marks a request denied by the rate limiter.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUpstreamUnavailable marks a network, timeout, or parse failure
	// from the external metrics provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrStoreUnavailable marks an unreachable district store or metrics cache.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDataMismatch marks a provider response that contained records but
	// none for the requested district. Treated like ErrUpstreamUnavailable
	// so another district's numbers are never served silently.
	ErrDataMismatch = errors.New("no record matched requested district")
)
