package geom

import (
	"fmt"

	"github.com/chazu/pipes/pkg/kernel"
)

// potBase is the height of the flat bottom in unscaled marker units.
const potBase = -0.8

// Marker builds the novelty marker: a squat teapot with a spout, handle
// and lid, roughly size across and centred on the origin
// with its lid toward +y. The body is cut flat at potBase.
func Marker(k kernel.Kernel, size float64) (*kernel.Mesh, error) {
	if size <= 0 {
		return nil, fmt.Errorf("geom: marker size %v", size)
	}
	s := size / 4

	body := k.Scale(k.Sphere(1), 1.4, 1, 1.4)

	spout := k.Cylinder(1.6, 0.18)
	spout = k.Rotate(spout, 0, 90, 0)
	spout = k.Rotate(spout, 0, 0, 35)
	spout = k.Translate(spout, 1.55, 0.35, 0)

	ring := k.Difference(k.Cylinder(0.22, 0.65), k.Cylinder(0.4, 0.42))
	handle := k.Translate(ring, -1.45, 0.1, 0)

	lid := k.Scale(k.Sphere(0.55), 1, 0.5, 1)
	lid = k.Translate(lid, 0, 0.95, 0)
	knob := k.Translate(k.Sphere(0.16), 0, 1.3, 0)

	pot := k.Union(body, spout)
	pot = k.Union(pot, handle)
	pot = k.Union(pot, lid)
	pot = k.Union(pot, knob)

	// Keep everything above the base plane.
	keep := k.Translate(k.Box(8, 8, 8), -4, potBase, -4)
	pot = k.Intersection(pot, keep)
	pot = k.Scale(pot, s, s, s)

	m, err := k.ToMesh(pot)
	if err != nil {
		return nil, fmt.Errorf("geom: mesh marker: %w", err)
	}
	m.PartName = "marker"
	return m, nil
}
