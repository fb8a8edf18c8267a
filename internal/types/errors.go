package types

import "errors"

// Error taxonomy for the planning pipeline. Gateways wrap these with
// fmt.Errorf("...: %w", err) so callers can branch with errors.Is.
var (
	// ErrMissingCredential means a provider API key is not configured.
	ErrMissingCredential = errors.New("missing provider credential")
	// ErrNotFound means the provider answered but had no match (e.g. geocoding).
	ErrNotFound = errors.New("not found")
	// ErrUpstream covers network failures and non-2xx provider responses.
	ErrUpstream = errors.New("upstream failure")
	// ErrUpstreamTimeout is a deadline hit on an outbound call.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrMalformedResponse means the provider or model payload did not parse.
	ErrMalformedResponse = errors.New("malformed response")
)
