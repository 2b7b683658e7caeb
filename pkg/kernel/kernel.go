// Package kernel defines the mesh data structure the geometry builders emit
// and the solid-modelling interface used for primitives that are easier to
// describe as solids than as sweeps. Backends (sdfx) implement Kernel; the
// rest of the module sees only Solid and Mesh.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract solid-modelling interface.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Cylinder runs
	// along z and Sphere is centred on the origin.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
	Scale(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
