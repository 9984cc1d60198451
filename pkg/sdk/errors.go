package listingsearch

import "github.com/bazaarhq/listing-search/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrNotFound       = domain.ErrNotFound
	ErrTimeout        = domain.ErrTimeout
	ErrUpstream       = domain.ErrUpstream
)

// ValidationError names the rejected query field. Use errors.As() to check.
type ValidationError = domain.ValidationError
