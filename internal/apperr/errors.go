// Package apperr holds sentinel errors shared across layers. Wrap them with
// fmt.Errorf("...: %w", err) and test with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
