package kernel

import (
	"github.com/chewxy/math32"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Primitive names how a group of vertices was emitted.
type Primitive string

const (
	// QuadStrip vertices come in pairs; each consecutive pair of pairs
	// forms a quad.
	QuadStrip Primitive = "quadStrip"
	// TriangleFan's first vertex is the hub shared by every triangle.
	TriangleFan Primitive = "triangleFan"
	// Triangles are independent vertex triples.
	Triangles Primitive = "triangles"
)

// Group is a run of vertices emitted as one primitive.
type Group struct {
	Kind  Primitive `json:"kind"`
	Start int       `json:"start"` // first vertex
	Count int       `json:"count"` // vertices in the run
}

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
// Groups keep the strip and fan structure the builders emitted so a
// backend can submit them as such instead of as triangles.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Groups   []Group   `json:"groups,omitempty"`
	PartName string    `json:"partName"` // which pipe or object this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns the position and normal of vertex i.
func (m *Mesh) Vertex(i int) (p, n v3.Vec) {
	j := 3 * i
	p = v3.Vec{X: float64(m.Vertices[j]), Y: float64(m.Vertices[j+1]), Z: float64(m.Vertices[j+2])}
	n = v3.Vec{X: float64(m.Normals[j]), Y: float64(m.Normals[j+1]), Z: float64(m.Normals[j+2])}
	return p, n
}

func (m *Mesh) addVertex(p, n v3.Vec) {
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
}

// QuadStrip appends a strip between two rings of equal length. Vertex k of
// a is joined to vertex k of b.
func (m *Mesh) QuadStrip(a, b, na, nb []v3.Vec) {
	base := m.VertexCount()
	for k := range a {
		m.addVertex(a[k], na[k])
		m.addVertex(b[k], nb[k])
	}
	for k := 0; k+1 < len(a); k++ {
		i := uint32(base + 2*k)
		m.Indices = append(m.Indices, i, i+1, i+2, i+1, i+3, i+2)
	}
	m.Groups = append(m.Groups, Group{Kind: QuadStrip, Start: base, Count: 2 * len(a)})
}

// TriangleFan appends a fan from hub around ring.
func (m *Mesh) TriangleFan(hub, hubNormal v3.Vec, ring, normals []v3.Vec) {
	base := m.VertexCount()
	m.addVertex(hub, hubNormal)
	for k := range ring {
		m.addVertex(ring[k], normals[k])
	}
	for k := 1; k < len(ring); k++ {
		m.Indices = append(m.Indices, uint32(base), uint32(base+k), uint32(base+k+1))
	}
	m.Groups = append(m.Groups, Group{Kind: TriangleFan, Start: base, Count: len(ring) + 1})
}

// Append adds every vertex, triangle and group of o to m.
func (m *Mesh) Append(o *Mesh) {
	base := m.VertexCount()
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, i+uint32(base))
	}
	for _, g := range o.Groups {
		g.Start += base
		m.Groups = append(m.Groups, g)
	}
}

// Transformed returns a copy of m with positions mapped through t and
// normals through its linear part, renormalized. t may scale uniformly.
func (m *Mesh) Transformed(t sdf.M44) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  append([]uint32(nil), m.Indices...),
		Groups:   append([]Group(nil), m.Groups...),
		PartName: m.PartName,
	}
	origin := t.MulPosition(v3.Vec{})
	for i := 0; i < m.VertexCount(); i++ {
		p, n := m.Vertex(i)
		p = t.MulPosition(p)
		n = t.MulPosition(n).Sub(origin)
		j := 3 * i
		out.Vertices[j], out.Vertices[j+1], out.Vertices[j+2] = float32(p.X), float32(p.Y), float32(p.Z)
		out.Normals[j], out.Normals[j+1], out.Normals[j+2] = float32(n.X), float32(n.Y), float32(n.Z)
	}
	out.Renormalize()
	return out
}

// Bounds returns the axis-aligned bounding box of the vertices. An empty
// mesh has zero bounds.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if m.IsEmpty() {
		return lo, hi
	}
	for k := 0; k < 3; k++ {
		lo[k], hi[k] = math32.Inf(1), math32.Inf(-1)
	}
	for i := 0; i < len(m.Vertices); i += 3 {
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], m.Vertices[i+k])
			hi[k] = math32.Max(hi[k], m.Vertices[i+k])
		}
	}
	return lo, hi
}

// Renormalize rescales every non-zero normal to unit length.
func (m *Mesh) Renormalize() {
	for i := 0; i < len(m.Normals); i += 3 {
		x, y, z := m.Normals[i], m.Normals[i+1], m.Normals[i+2]
		l := math32.Sqrt(x*x + y*y + z*z)
		if l == 0 {
			continue
		}
		m.Normals[i], m.Normals[i+1], m.Normals[i+2] = x/l, y/l, z/l
	}
}

// Triangles returns the mesh as sdfx triangles, for STL export.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		var t sdf.Triangle3
		for k := 0; k < 3; k++ {
			t[k], _ = m.Vertex(int(m.Indices[i+k]))
		}
		out = append(out, &t)
	}
	return out
}
