package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAssetLoad          = errors.New("asset load failed")
	ErrCatalogLookup      = errors.New("catalog lookup failed")
	ErrInvariantViolation = errors.New("placement invariant violation")
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
