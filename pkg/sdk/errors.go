package fieldcodec

import "github.com/kailas-cloud/fieldcodec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrFieldNotFound        = domain.ErrFieldNotFound
	ErrDocumentNotFound     = domain.ErrDocumentNotFound
	ErrUnsupportedSort      = domain.ErrUnsupportedSort
	ErrUnsupportedAccess    = domain.ErrUnsupportedAccess
	ErrCardinalityViolation = domain.ErrCardinalityViolation
	ErrInvalidSchema        = domain.ErrInvalidSchema
	ErrUnknownFieldType     = domain.ErrUnknownFieldType
	ErrMalformedEncoding    = domain.ErrMalformedEncoding
)
