//go:build manifold

// Package manifold builds marker solids with the Manifold library
// (https://github.com/elalish/manifold) through its C bindings. Its meshes
// are exact polygonal solids rather than marching cubes approximations.
//
// Requires manifoldc. Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/kernel"
)

var (
	_ kernel.Kernel = (*ManifoldKernel)(nil)
	_ kernel.Solid  = (*manifoldSolid)(nil)
)

// Segments is the number of facets around spheres and cylinders.
const Segments = 32

// manifoldSolid owns a C manifold.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	b := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(b)
	min = [3]float64{float64(C.manifold_box_min_x(b)), float64(C.manifold_box_min_y(b)), float64(C.manifold_box_min_z(b))}
	max = [3]float64{float64(C.manifold_box_max_x(b)), float64(C.manifold_box_max_y(b)), float64(C.manifold_box_max_z(b))}
	return min, max
}

// newSolid takes ownership of ptr; the finalizer frees it.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New returns a Manifold kernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

func ptr(s kernel.Solid) *C.ManifoldManifold {
	return s.(*manifoldSolid).ptr
}

func alloc() *C.ManifoldManifold {
	return C.manifold_alloc_manifold()
}

// Box creates a box with its minimum corner at the origin.
func (k *ManifoldKernel) Box(x, y, z float64) kernel.Solid {
	return newSolid(C.manifold_cube(alloc(), C.double(x), C.double(y), C.double(z), 0))
}

// Cylinder creates a z-aligned cylinder centred on the origin.
func (k *ManifoldKernel) Cylinder(height, radius float64) kernel.Solid {
	r := C.double(radius)
	return newSolid(C.manifold_cylinder(alloc(), C.double(height), r, r, Segments, 1))
}

func (k *ManifoldKernel) Sphere(radius float64) kernel.Solid {
	return newSolid(C.manifold_sphere(alloc(), C.double(radius), Segments))
}

func (k *ManifoldKernel) Union(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_union(alloc(), ptr(a), ptr(b)))
}

// Difference returns a - b.
func (k *ManifoldKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_difference(alloc(), ptr(a), ptr(b)))
}

func (k *ManifoldKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_intersection(alloc(), ptr(a), ptr(b)))
}

func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return newSolid(C.manifold_translate(alloc(), ptr(s), C.double(x), C.double(y), C.double(z)))
}

// Rotate rotates a solid by Euler angles (degrees), x first.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return newSolid(C.manifold_rotate(alloc(), ptr(s), C.double(x), C.double(y), C.double(z)))
}

func (k *ManifoldKernel) Scale(s kernel.Solid, x, y, z float64) kernel.Solid {
	return newSolid(C.manifold_scale(alloc(), ptr(s), C.double(x), C.double(y), C.double(z)))
}

// ToMesh flattens the solid's MeshGL into independent triangles carrying
// their face normals, the same layout the sdfx backend emits.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), ptr(s))
	defer C.manifold_delete_meshgl(gl)

	numVert := int(C.manifold_meshgl_num_vert(gl))
	numTri := int(C.manifold_meshgl_num_tri(gl))
	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("manifold: empty solid")
	}
	numProp := int(C.manifold_meshgl_num_prop(gl))

	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)
	tris := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&tris[0])), gl)

	pos := func(i uint32) v3.Vec {
		b := int(i) * numProp
		return v3.Vec{X: float64(props[b]), Y: float64(props[b+1]), Z: float64(props[b+2])}
	}
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, numTri*9),
		Normals:  make([]float32, 0, numTri*9),
		Indices:  make([]uint32, 0, numTri*3),
	}
	for t := 0; t < numTri; t++ {
		a, b, c := pos(tris[3*t]), pos(tris[3*t+1]), pos(tris[3*t+2])
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for j, p := range [3]v3.Vec{a, b, c} {
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, uint32(3*t+j))
		}
	}
	m.Groups = []kernel.Group{{Kind: kernel.Triangles, Start: 0, Count: numTri * 3}}
	return m, nil
}
