// Package xc holds the closed 2D profiles ("cross-sections") that flexible
// pipes sweep along their path. A profile is a ring of cubic Bézier control
// points, three per section, running counter-clockwise from +x in the z=0
// plane.
package xc

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/dir"
	"github.com/chazu/pipes/pkg/rng"
)

// ArcControl scales a radius into the control point offset that makes a
// cubic Bézier approximate a quarter circle.
const ArcControl = 0.56

// Sections is the number of cubic sections in every built-in profile.
const Sections = 4

// Profile is a closed cross-section.
type Profile struct {
	Pts []v2.Vec

	// Bounding box in the profile plane.
	Left, Right, Bottom, Top float64
}

// NewCircle returns a circular profile of radius r.
func NewCircle(r float64) *Profile {
	return NewEllipse(r, r)
}

// NewEllipse returns an elliptical profile with half-width r1 along x and
// half-height r2 along y.
func NewEllipse(r1, r2 float64) *Profile {
	ac1 := ArcControl * r2
	ac2 := ArcControl * r1
	p := &Profile{Pts: []v2.Vec{
		{X: r1, Y: 0}, {X: r1, Y: ac1},
		{X: ac2, Y: r2}, {X: 0, Y: r2}, {X: -ac2, Y: r2},
		{X: -r1, Y: ac1}, {X: -r1, Y: 0}, {X: -r1, Y: -ac1},
		{X: -ac2, Y: -r2}, {X: 0, Y: -r2}, {X: ac2, Y: -r2},
		{X: r1, Y: -ac1},
	}}
	p.calcBounds()
	return p
}

// NewRandom4Arc returns a lumpy profile made of four arcs. Each side of the
// profile's box lies a random distance in [r/2, r] from the origin, and the
// joins and arc controls are placed randomly along the sides.
func NewRandom4Arc(r float64, rnd rng.Source) *Profile {
	const (
		right = iota
		top
		left
		bottom
	)
	var side [4]float64
	for i := range side {
		side[i] = rnd.Float(r/2, r)
	}

	pts := make([]v2.Vec, 12)
	pts[0].X = side[right]
	pts[3].Y = side[top]
	pts[6].X = -side[left]
	pts[9].Y = -side[bottom]

	// Joins go in the middle half of each side.
	dy := (side[top] + side[bottom]) / 4
	dx := (side[right] + side[left]) / 4
	pts[0].Y = rnd.Float(-side[bottom]+dy, side[top]-dy)
	pts[6].Y = rnd.Float(-side[bottom]+dy, side[top]-dy)
	pts[3].X = rnd.Float(-side[left]+dx, side[right]-dx)
	pts[9].X = rnd.Float(-side[left]+dx, side[right]-dx)

	pts[1].X, pts[11].X = pts[0].X, pts[0].X
	pts[2].Y, pts[4].Y = pts[3].Y, pts[3].Y
	pts[5].X, pts[7].X = pts[6].X, pts[6].X
	pts[8].Y, pts[10].Y = pts[9].Y, pts[9].Y

	dy = (side[top] - pts[0].Y) / 4
	pts[1].Y = rnd.Float(pts[0].Y+dy, side[top])
	dy = (pts[0].Y + side[bottom]) / 4
	pts[11].Y = rnd.Float(-side[bottom], pts[0].Y-dy)

	dy = (side[top] - pts[6].Y) / 4
	pts[5].Y = rnd.Float(pts[6].Y+dy, side[top])
	dy = (pts[6].Y + side[bottom]) / 4
	pts[7].Y = rnd.Float(-side[bottom], pts[6].Y-dy)

	dx = (side[right] - pts[3].X) / 4
	pts[2].X = rnd.Float(pts[3].X+dx, side[right])
	dx = (pts[3].X + side[left]) / 4
	pts[4].X = rnd.Float(-side[left], pts[3].X-dx)

	dx = (side[right] - pts[9].X) / 4
	pts[10].X = rnd.Float(pts[9].X+dx, side[right])
	dx = (pts[9].X + side[left]) / 4
	pts[8].X = rnd.Float(-side[left], pts[9].X-dx)

	p := &Profile{Pts: pts}
	p.calcBounds()
	return p
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Pts = append([]v2.Vec(nil), p.Pts...)
	return &c
}

// NumSections returns the number of cubic sections around the profile.
func (p *Profile) NumSections() int {
	return len(p.Pts) / 3
}

func (p *Profile) calcBounds() {
	p.Left, p.Bottom = math.Inf(1), math.Inf(1)
	p.Right, p.Top = math.Inf(-1), math.Inf(-1)
	for _, pt := range p.Pts {
		p.Left = math.Min(p.Left, pt.X)
		p.Right = math.Max(p.Right, pt.X)
		p.Bottom = math.Min(p.Bottom, pt.Y)
		p.Top = math.Max(p.Top, pt.Y)
	}
}

// Bounds returns the bounding box as (left, right, bottom, top).
func (p *Profile) Bounds() (left, right, bottom, top float64) {
	return p.Left, p.Right, p.Bottom, p.Top
}

// MinTurnRadius is the smallest bend radius toward d that does not fold the
// profile over itself on the inside of the turn. d is relative to the
// profile plane; directions along z yield 0.
func (p *Profile) MinTurnRadius(d dir.Direction) float64 {
	switch d {
	case dir.PlusX:
		return p.Right
	case dir.MinusX:
		return -p.Left
	case dir.PlusY:
		return p.Top
	case dir.MinusY:
		return -p.Bottom
	}
	return 0
}

// MaxExtent returns the furthest the bounding box reaches from the origin
// along x or y.
func (p *Profile) MaxExtent() float64 {
	return max(p.Right, p.Top, -p.Left, -p.Bottom)
}

// Scale multiplies every point and the bounds by s.
func (p *Profile) Scale(s float64) {
	for i := range p.Pts {
		p.Pts[i] = p.Pts[i].MulScalar(s)
	}
	p.Left *= s
	p.Right *= s
	p.Bottom *= s
	p.Top *= s
}

// Points3 lifts the profile into the plane at z. The first point is
// repeated at the end so each ring closes.
func (p *Profile) Points3(z float64) []v3.Vec {
	out := make([]v3.Vec, len(p.Pts)+1)
	for i, pt := range p.Pts {
		out[i] = v3.Vec{X: pt.X, Y: pt.Y, Z: z}
	}
	out[len(p.Pts)] = out[0]
	return out
}

// ArcControl90 returns, per point, the control offset for a quarter turn
// toward d about a hinge at distance radius from the profile origin. Points
// nearer the hinge turn on a tighter arc and get a smaller offset. The
// first value is repeated at the end, matching Points3.
func (p *Profile) ArcControl90(d dir.Direction, radius float64) ([]float64, error) {
	var axis int
	var sign float64
	switch d {
	case dir.PlusX:
		axis, sign = 0, -1
	case dir.MinusX:
		axis, sign = 0, 1
	case dir.PlusY:
		axis, sign = 1, -1
	case dir.MinusY:
		axis, sign = 1, 1
	default:
		return nil, fmt.Errorf("xc: bend direction %s is not in the profile plane", d)
	}

	ac := make([]float64, len(p.Pts)+1)
	for i, pt := range p.Pts {
		c := pt.X
		if axis == 1 {
			c = pt.Y
		}
		ac[i] = ArcControl * (radius + sign*c)
	}
	ac[len(p.Pts)] = ac[0]
	return ac, nil
}

// ArcControlByDistance returns, per point, the control offset for an arc
// whose radius is the point's distance from the profile origin.
func (p *Profile) ArcControlByDistance() []float64 {
	ac := make([]float64, len(p.Pts)+1)
	for i, pt := range p.Pts {
		ac[i] = ArcControl * pt.Length()
	}
	ac[len(p.Pts)] = ac[0]
	return ac
}
