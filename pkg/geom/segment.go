// Package geom builds the tessellated primitives pipes are drawn with:
// straight cylinders, quarter-turn elbows, ball joints and spheres. The
// builders are pure functions of their dimensions and know nothing of the
// grid. Every primitive is built along +z with its seam (the first vertex of
// each ring) on +y, so a pipe's notch can be carried from piece to piece.
package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/kernel"
)

// MaxSlices bounds the ring resolution of every builder.
const MaxSlices = 99

// Kind selects a primitive.
type Kind int

const (
	Straight Kind = iota
	Elbow
	BallJoint
	Cap
)

func (k Kind) String() string {
	switch k {
	case Straight:
		return "straight"
	case Elbow:
		return "elbow"
	case BallJoint:
		return "ball"
	case Cap:
		return "cap"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Segment describes one primitive independently of where it is placed.
type Segment struct {
	Kind   Kind
	Radius float64
	Slices int

	// Straight: the run length, and the unit length that sets how many
	// stacks the run is divided into.
	Length float64
	Unit   float64

	// Elbow and BallJoint: which of the four seam rotations to build.
	Notch int

	// Cap: start or end of a pipe. Both are spheres of the same size.
	Start bool
}

// Build tessellates s.
func Build(s Segment) (*kernel.Mesh, error) {
	if s.Radius <= 0 {
		return nil, fmt.Errorf("geom: %s with radius %v", s.Kind, s.Radius)
	}
	if s.Slices < 3 {
		return nil, fmt.Errorf("geom: %s with %d slices", s.Kind, s.Slices)
	}
	switch s.Kind {
	case Straight:
		if s.Length <= 0 || s.Unit <= 0 {
			return nil, fmt.Errorf("geom: straight of length %v per unit %v", s.Length, s.Unit)
		}
		return Cylinder(s.Length, s.Radius, s.Slices, s.Unit), nil
	case Elbow, BallJoint:
		if s.Notch < 0 || s.Notch > 3 {
			return nil, fmt.Errorf("geom: %s notch %d out of range", s.Kind, s.Notch)
		}
		if s.Kind == Elbow {
			return ElbowMesh(s.Radius, s.Slices, s.Notch), nil
		}
		return BallJointMesh(s.Radius, s.Slices, s.Notch), nil
	case Cap:
		return Sphere(BigBallRadius(s.Radius, s.Slices), s.Slices), nil
	}
	return nil, fmt.Errorf("geom: unknown segment kind %d", int(s.Kind))
}

// BigBallRadius is the radius of the sphere used for caps and ball joints.
// It is a little larger than the joint's true sphere so the polygonal pipe
// edges stay inside it.
func BigBallRadius(radius float64, slices int) float64 {
	return math.Sqrt2 * radius / math.Cos(math.Pi/float64(clampSlices(slices)))
}

func clampSlices(n int) int {
	return min(n, MaxSlices)
}

// Cylinder builds an open tube of the given length along +z from z=0. It is
// cut into ceil(length/unit*slices) stacks so that runs of different length
// have the same stack density.
func Cylinder(length, radius float64, slices int, unit float64) *kernel.Mesh {
	slices = clampSlices(slices)
	stacks := min(int(math.Ceil(length/unit*float64(slices))), MaxSlices)
	stacks = max(stacks, 1)

	sin := make([]float64, slices+1)
	cos := make([]float64, slices+1)
	for i := 0; i < slices; i++ {
		a := 2 * math.Pi * float64(i) / float64(slices)
		sin[i], cos[i] = math.Sin(a), math.Cos(a)
	}
	sin[slices], cos[slices] = sin[0], cos[0]

	normals := make([]v3.Vec, slices+1)
	for i := range normals {
		normals[i] = v3.Vec{X: sin[i], Y: cos[i]}
	}
	ring := func(z float64) []v3.Vec {
		r := make([]v3.Vec, slices+1)
		for i := range r {
			r[i] = v3.Vec{X: radius * sin[i], Y: radius * cos[i], Z: z}
		}
		return r
	}

	m := &kernel.Mesh{}
	low := ring(0)
	for j := 1; j <= stacks; j++ {
		high := ring(float64(j) * length / float64(stacks))
		m.QuadStrip(low, high, normals, normals)
		low = high
	}
	return m
}

// sweep rotates rings about the x axis through a quarter turn around the
// anchor (0, radius, 0). ringAt returns the untransformed ring of stack i
// and the centre its normals radiate from; fixed reports whether that centre
// stays put instead of turning with the ring.
func sweep(radius float64, stacks int, ringAt func(i int) ([]v3.Vec, v3.Vec), fixed bool) *kernel.Mesh {
	anchor := v3.Vec{Y: radius}
	normalsFrom := func(pts []v3.Vec, c v3.Vec) []v3.Vec {
		n := make([]v3.Vec, len(pts))
		for k, p := range pts {
			n[k] = p.Sub(c).Normalize()
		}
		return n
	}

	m := &kernel.Mesh{}
	prev, c := ringAt(0)
	prevN := normalsFrom(prev, c)
	for i := 1; i <= stacks; i++ {
		a := -0.5 * math.Pi * float64(i) / float64(stacks)
		turn := sdf.Translate3d(anchor).Mul(sdf.RotateX(a)).Mul(sdf.Translate3d(anchor.MulScalar(-1)))

		pts, center := ringAt(i)
		next := make([]v3.Vec, len(pts))
		for k, p := range pts {
			next[k] = turn.MulPosition(p)
		}
		if !fixed {
			center = turn.MulPosition(center)
		}
		nextN := normalsFrom(next, center)

		m.QuadStrip(prev, next, prevN, nextN)
		prev, prevN = next, nextN
	}
	return m
}

// ElbowMesh builds a quarter-turn elbow. It enters along +z from the ring
// centred on (0, radius, -radius) and leaves along +z through the ring
// centred on the origin, turning about the hinge line x through
// (0, radius, 0). notch in [0,4) rotates the seam by notch quarter turns
// about the entry axis.
func ElbowMesh(radius float64, slices, notch int) *kernel.Mesh {
	slices = clampSlices(slices)
	start := float64(notch) * math.Pi / 2

	ring := make([]v3.Vec, slices+1)
	for k := range ring {
		a := start + 2*math.Pi*float64(k)/float64(slices)
		ring[k] = v3.Vec{X: radius * math.Sin(a), Y: radius, Z: radius*math.Cos(a) - radius}
	}
	center := v3.Vec{Y: radius, Z: -radius}

	return sweep(radius, slices/2, func(int) ([]v3.Vec, v3.Vec) { return ring, center }, false)
}

// BallJointMesh builds a ball-shaped joint with the same entry and exit as
// ElbowMesh. Each ring's radius follows a sine profile so the surface is
// the sphere of radius sqrt(2)*radius about (0, 0, -radius).
func BallJointMesh(radius float64, slices, notch int) *kernel.Mesh {
	slices = clampSlices(slices)
	stacks := slices
	start := float64(notch) * math.Pi / 2
	center := v3.Vec{Z: -radius}

	return sweep(radius, stacks, func(i int) ([]v3.Vec, v3.Vec) {
		r := math.Sin(math.Pi/4+float64(i)*(math.Pi/2)/float64(stacks)) * math.Sqrt2 * radius
		ring := make([]v3.Vec, slices+1)
		for k := range ring {
			a := start + 2*math.Pi*float64(k)/float64(slices)
			ring[k] = v3.Vec{X: r * math.Sin(a), Y: radius, Z: r*math.Cos(a) - r}
		}
		return ring, center
	}, true)
}

// Sphere builds a sphere centred on the origin with its poles on z: a
// triangle fan at each pole and quad strips between.
func Sphere(radius float64, slices int) *kernel.Mesh {
	slices = clampSlices(slices)
	stacks := slices

	unitRing := func(j int) []v3.Vec {
		phi := math.Pi * float64(j) / float64(stacks)
		r := make([]v3.Vec, slices+1)
		for i := range r {
			theta := 2 * math.Pi * float64(i%slices) / float64(slices)
			r[i] = v3.Vec{X: math.Sin(phi) * math.Sin(theta), Y: math.Sin(phi) * math.Cos(theta), Z: math.Cos(phi)}
		}
		return r
	}
	scaled := func(n []v3.Vec) []v3.Vec {
		p := make([]v3.Vec, len(n))
		for i := range n {
			p[i] = n[i].MulScalar(radius)
		}
		return p
	}

	m := &kernel.Mesh{}
	top := unitRing(1)
	m.TriangleFan(v3.Vec{Z: radius}, v3.Vec{Z: 1}, scaled(top), top)

	low := top
	for j := 2; j < stacks; j++ {
		high := unitRing(j)
		m.QuadStrip(scaled(low), scaled(high), low, high)
		low = high
	}

	bottom := make([]v3.Vec, len(low))
	for i := range low {
		bottom[i] = low[len(low)-1-i]
	}
	m.TriangleFan(v3.Vec{Z: -radius}, v3.Vec{Z: -1}, scaled(bottom), bottom)
	return m
}
