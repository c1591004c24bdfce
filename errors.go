package meridian

import "github.com/meridian-cloud/meridian/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation = domain.ErrValidation
	ErrDecode     = domain.ErrDecode
	ErrProtocol   = domain.ErrProtocol
	ErrTransport  = domain.ErrTransport
	ErrNotFound   = domain.ErrNotFound
)
