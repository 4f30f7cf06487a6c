// Package community declares the client-facing error taxonomy shared by the
// store, engines and HTTP layer. All of these map to a typed response the
// dashboard can branch on; anything else is a generic server error.
package community

import "errors"

var (
	// ErrNotFound indicates an unknown installation hash.
	ErrNotFound = errors.New("community: installation not found")

	// ErrInsufficientData indicates a known installation whose requested
	// time window has no comparable population. Not an error condition on
	// the wire: the client falls back to the non-personalized view.
	ErrInsufficientData = errors.New("community: insufficient data for comparison")

	// ErrUnknownRegion indicates a postal code outside the mapping table.
	ErrUnknownRegion = errors.New("community: unknown region")

	// ErrInvalidWindow indicates a malformed or unsupported time window selector.
	ErrInvalidWindow = errors.New("community: invalid time window")

	// ErrRateLimited indicates the per-IP submission quota is exhausted.
	ErrRateLimited = errors.New("community: rate limit exceeded")

	// ErrTooManyUpdates indicates the per-installation monthly update cap is reached.
	ErrTooManyUpdates = errors.New("community: too many updates for installation")

	// ErrValidation indicates a submission that fails plausibility or
	// structural checks.
	ErrValidation = errors.New("community: invalid submission")
)
