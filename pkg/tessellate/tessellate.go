// Package tessellate resolves planned placements against the geometry
// library and produces world-space triangle meshes. One mesh is produced per
// pipe.
package tessellate

import (
	"fmt"
	"sort"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/pipes/pkg/geom"
	"github.com/chazu/pipes/pkg/kernel"
	"github.com/chazu/pipes/pkg/scheduler"
)

// Options sets how finely sweeps are evaluated. Zero values fall back to the
// library's ring resolution around the profile and four steps along it.
type Options struct {
	UDiv int
	VDiv int
}

func (o Options) divs(lib *geom.Library) (int, int) {
	u, v := o.UDiv, o.VDiv
	if u <= 0 {
		u = lib.Slices
	}
	if v <= 0 {
		v = 4
	}
	return u, v
}

// transformStack accumulates transforms from the scene down to a primitive.
type transformStack struct {
	ms []sdf.M44
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(m sdf.M44) {
	ts.ms = append(ts.ms, m)
}

func (ts *transformStack) pop() {
	if len(ts.ms) > 0 {
		ts.ms = ts.ms[:len(ts.ms)-1]
	}
}

// accumulated returns the product of every transform on the stack, outermost
// first.
func (ts *transformStack) accumulated() sdf.M44 {
	m := sdf.Identity3d()
	for _, t := range ts.ms {
		m = m.Mul(t)
	}
	return m
}

// Tessellate resolves each placement and maps it through scene, returning
// one mesh per placement. The library's meshes are never mutated.
func Tessellate(placements []geom.Placement, lib *geom.Library, scene sdf.M44, o Options) ([]*kernel.Mesh, error) {
	if lib == nil {
		return nil, nil
	}
	ts := newTransformStack()
	ts.push(scene)
	defer ts.pop()

	meshes := make([]*kernel.Mesh, 0, len(placements))
	for i, p := range placements {
		m, err := place(lib, p, ts, o)
		if err != nil {
			return nil, fmt.Errorf("tessellate: placement %d: %w", i, err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func place(lib *geom.Library, p geom.Placement, ts *transformStack, o Options) (*kernel.Mesh, error) {
	u, v := o.divs(lib)
	m, err := lib.Mesh(p, u, v)
	if err != nil {
		return nil, err
	}
	ts.push(p.Transform)
	out := m.Transformed(ts.accumulated())
	ts.pop()
	out.PartName = p.Object.String()
	return out, nil
}

// Frame collects the pieces a frame draws, tick by tick, into one mesh per
// pipe.
type Frame struct {
	lib   *geom.Library
	scene sdf.M44
	opts  Options
	parts map[int]*kernel.Mesh
}

// NewFrame returns an empty frame drawn under scene.
func NewFrame(lib *geom.Library, scene sdf.M44, o Options) *Frame {
	return &Frame{lib: lib, scene: scene, opts: o, parts: map[int]*kernel.Mesh{}}
}

// Reset empties the frame and sets the scene transform for the next one.
func (f *Frame) Reset(scene sdf.M44) {
	f.scene = scene
	clear(f.parts)
}

// Add tessellates pieces and appends each to its pipe's mesh. It returns the
// meshes of this batch alone, grouped by pipe.
func (f *Frame) Add(pieces []scheduler.Piece) ([]*kernel.Mesh, error) {
	ts := newTransformStack()
	ts.push(f.scene)
	defer ts.pop()

	batch := map[int]*kernel.Mesh{}
	for _, pc := range pieces {
		m, err := place(f.lib, pc.Placement, ts, f.opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: pipe %d: %w", pc.Pipe, err)
		}
		for _, parts := range []map[int]*kernel.Mesh{batch, f.parts} {
			acc, ok := parts[pc.Pipe]
			if !ok {
				acc = &kernel.Mesh{PartName: PartName(pc.Pipe)}
				parts[pc.Pipe] = acc
			}
			acc.Append(m)
		}
	}
	return sorted(batch), nil
}

// Meshes returns the accumulated mesh of every pipe drawn so far, ordered by
// pipe number.
func (f *Frame) Meshes() []*kernel.Mesh {
	return sorted(f.parts)
}

// PartName names the mesh of the pipe numbered id within its frame.
func PartName(id int) string {
	return fmt.Sprintf("pipe-%d", id)
}

func sorted(parts map[int]*kernel.Mesh) []*kernel.Mesh {
	ids := make([]int, 0, len(parts))
	for id := range parts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*kernel.Mesh, len(ids))
	for i, id := range ids {
		out[i] = parts[id]
	}
	return out
}
