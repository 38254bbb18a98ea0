package insights

import "github.com/sathizz7/Street-View-Analysis/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDataLoad             = domain.ErrDataLoad
	ErrBuildingNotFound     = domain.ErrBuildingNotFound
	ErrInvalidCoordinates   = domain.ErrInvalidCoordinates
	ErrImageryUnavailable   = domain.ErrImageryUnavailable
	ErrInsightProviderError = domain.ErrInsightProviderError
)
