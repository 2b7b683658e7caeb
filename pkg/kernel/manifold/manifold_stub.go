//go:build !manifold

// Package manifold builds marker solids with the Manifold library. Without
// the "manifold" build tag this stub is compiled and New reports that the
// kernel is unavailable.
package manifold

import (
	"errors"

	"github.com/chazu/pipes/pkg/kernel"
)

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New reports ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
