package domain

import "errors"

var (
	// ErrDataLoad signals that the footprint dataset could not be read or parsed at all.
	ErrDataLoad = errors.New("footprint data load failed")
	// ErrBuildingNotFound signals that no building satisfied the resolution policy.
	// A normal outcome, not a failure.
	ErrBuildingNotFound = errors.New("building not found")
	// ErrInvalidCoordinates signals latitude/longitude outside valid ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrImageryUnavailable signals that no street-level photo exists for a location.
	ErrImageryUnavailable = errors.New("imagery unavailable")
	// ErrInsightProviderError signals a vision model provider failure.
	ErrInsightProviderError = errors.New("insight provider error")
)
