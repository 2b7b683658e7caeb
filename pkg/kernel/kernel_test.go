package kernel

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []float32
		indices   []uint32
		wantVerts int
		wantTris  int
	}{
		{"empty", nil, nil, 0, 0},
		{"one triangle", []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, 3, 1},
		{"quad", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, []uint32{0, 1, 2, 2, 3, 0}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices, Indices: tt.indices}
			if got := m.VertexCount(); got != tt.wantVerts {
				t.Errorf("VertexCount() = %d, want %d", got, tt.wantVerts)
			}
			if got := m.TriangleCount(); got != tt.wantTris {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.wantTris)
			}
			if m.IsEmpty() != (tt.wantVerts == 0) {
				t.Errorf("IsEmpty() = %v", m.IsEmpty())
			}
		})
	}
}

func ring(z float64, n int) (pts, normals []v3.Vec) {
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, v3.Vec{X: math.Sin(a), Y: math.Cos(a), Z: z})
		normals = append(normals, v3.Vec{X: math.Sin(a), Y: math.Cos(a)})
	}
	return pts, normals
}

func TestQuadStrip(t *testing.T) {
	m := &Mesh{}
	a, na := ring(0, 8)
	b, nb := ring(2, 8)
	m.QuadStrip(a, b, na, nb)

	if m.VertexCount() != 18 {
		t.Errorf("VertexCount() = %d, want 18", m.VertexCount())
	}
	if m.TriangleCount() != 16 {
		t.Errorf("TriangleCount() = %d, want 16", m.TriangleCount())
	}
	if len(m.Groups) != 1 || m.Groups[0] != (Group{Kind: QuadStrip, Start: 0, Count: 18}) {
		t.Errorf("Groups = %+v", m.Groups)
	}
	for _, i := range m.Indices {
		if int(i) >= m.VertexCount() {
			t.Fatalf("index %d out of range", i)
		}
	}
}

func TestTriangleFan(t *testing.T) {
	m := &Mesh{}
	a, na := ring(0, 4)
	m.QuadStrip(a, a, na, na)
	m.TriangleFan(v3.Vec{Z: 1}, v3.Vec{Z: 1}, a, na)

	if got := m.Groups[1]; got != (Group{Kind: TriangleFan, Start: 10, Count: 6}) {
		t.Errorf("fan group = %+v", got)
	}
	if m.TriangleCount() != 8+4 {
		t.Errorf("TriangleCount() = %d, want 12", m.TriangleCount())
	}
	hub := m.Indices[len(m.Indices)-3]
	if hub != 10 {
		t.Errorf("fan hub index = %d, want 10", hub)
	}
}

func TestAppendRebasesIndices(t *testing.T) {
	a, na := ring(0, 4)
	first := &Mesh{}
	first.QuadStrip(a, a, na, na)
	second := &Mesh{}
	second.TriangleFan(v3.Vec{}, v3.Vec{Z: 1}, a, na)

	m := &Mesh{}
	m.Append(first)
	m.Append(second)
	if m.VertexCount() != first.VertexCount()+second.VertexCount() {
		t.Fatalf("VertexCount() = %d", m.VertexCount())
	}
	if m.Groups[1].Start != first.VertexCount() {
		t.Errorf("second group starts at %d", m.Groups[1].Start)
	}
	if m.Indices[len(first.Indices)] != uint32(first.VertexCount()) {
		t.Errorf("first appended index = %d", m.Indices[len(first.Indices)])
	}
}

func TestTransformed(t *testing.T) {
	m := &Mesh{}
	m.TriangleFan(v3.Vec{X: 1}, v3.Vec{X: 1}, []v3.Vec{{Y: 1}, {Z: 1}}, []v3.Vec{{Y: 1}, {Z: 1}})

	tr := sdf.Translate3d(v3.Vec{X: 10}).Mul(sdf.RotateZ(math.Pi / 2))
	out := m.Transformed(tr)

	p, n := out.Vertex(0)
	if p.Sub(v3.Vec{X: 10, Y: 1}).Length() > 1e-5 {
		t.Errorf("hub moved to %v", p)
	}
	if n.Sub(v3.Vec{Y: 1}).Length() > 1e-5 {
		t.Errorf("hub normal = %v, want +y", n)
	}
	if p0, _ := m.Vertex(0); p0 != (v3.Vec{X: 1}) {
		t.Error("Transformed modified the source mesh")
	}
}

func TestTransformedKeepsUnitNormals(t *testing.T) {
	a, na := ring(0, 6)
	m := &Mesh{}
	m.TriangleFan(v3.Vec{Z: 1}, v3.Vec{Z: 1}, a, na)

	out := m.Transformed(sdf.Scale3d(v3.Vec{X: 3, Y: 3, Z: 3}))
	for i := 0; i < out.VertexCount(); i++ {
		p, n := out.Vertex(i)
		if math.Abs(n.Length()-1) > 1e-5 {
			t.Errorf("vertex %d: normal length %f", i, n.Length())
		}
		if q, _ := m.Vertex(i); p.Sub(q.MulScalar(3)).Length() > 1e-5 {
			t.Errorf("vertex %d at %v, want %v", i, p, q.MulScalar(3))
		}
	}
}

func TestBounds(t *testing.T) {
	m := &Mesh{}
	if lo, hi := m.Bounds(); lo != ([3]float32{}) || hi != ([3]float32{}) {
		t.Errorf("empty bounds = %v %v", lo, hi)
	}
	a, na := ring(-1, 4)
	b, nb := ring(3, 4)
	m.QuadStrip(a, b, na, nb)
	lo, hi := m.Bounds()
	if lo[2] != -1 || hi[2] != 3 {
		t.Errorf("z bounds = %v..%v", lo[2], hi[2])
	}
	if math.Abs(float64(hi[0])-1) > 1e-6 || math.Abs(float64(lo[1])+1) > 1e-6 {
		t.Errorf("bounds = %v %v", lo, hi)
	}
}

func TestRenormalize(t *testing.T) {
	m := &Mesh{Normals: []float32{3, 0, 4, 0, 0, 0}}
	m.Renormalize()
	if m.Normals[0] != 0.6 || m.Normals[2] != 0.8 {
		t.Errorf("normal = %v", m.Normals[:3])
	}
	if m.Normals[3] != 0 || m.Normals[4] != 0 || m.Normals[5] != 0 {
		t.Error("zero normal changed")
	}
}

func TestTriangles(t *testing.T) {
	a, na := ring(0, 6)
	m := &Mesh{}
	m.TriangleFan(v3.Vec{Z: 1}, v3.Vec{Z: 1}, a, na)
	tris := m.Triangles()
	if len(tris) != m.TriangleCount() {
		t.Fatalf("len = %d, want %d", len(tris), m.TriangleCount())
	}
	if tris[0][0] != (v3.Vec{Z: 1}) {
		t.Errorf("first vertex = %v, want hub", tris[0][0])
	}
}

// --- Compile-time interface check with a stub kernel ---

type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{maxBB: [3]float64{x, y, z}}
}

func (k *stubKernel) Cylinder(height, radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *stubKernel) Sphere(radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -radius},
		maxBB: [3]float64{radius, radius, radius},
	}
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }
func (k *stubKernel) Scale(s Solid, _, _, _ float64) Solid     { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelSphere(t *testing.T) {
	var k Kernel = &stubKernel{}
	min, max := k.Sphere(2).BoundingBox()
	if min != [3]float64{-2, -2, -2} || max != [3]float64{2, 2, 2} {
		t.Errorf("Sphere bounds = %v %v", min, max)
	}
}
