package catalog

import "errors"

var (
	// ErrInvalidCatalog is returned when reference data breaks a catalog invariant.
	ErrInvalidCatalog = errors.New("catalog: invalid reference data")

	// ErrUnknownSource is returned when the configured catalog source is not supported.
	ErrUnknownSource = errors.New("catalog: unknown source")
)
