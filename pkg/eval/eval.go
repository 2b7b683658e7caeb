// Package eval builds Bézier control nets that sweep a cross-section along
// a pipe segment, and evaluates them into meshes.
//
// A net is a stack of rows. Each row is one copy of the profile's control
// points (closed, first point repeated) placed in 3D. Around the profile
// every three points plus the next join form a cubic; along the pipe the
// rows are the control points of a single Bézier of degree len(Rows)-1.
package eval

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/dir"
	"github.com/chazu/pipes/pkg/xc"
)

// SingularityScale shrinks the profile at a closed pipe end to almost a
// point without collapsing it.
const SingularityScale = 0.0005

// Net is a control net of profile rows.
type Net struct {
	Rows [][]v3.Vec
}

// Sections returns the number of cubic sections around the net.
func (n *Net) Sections() int {
	if len(n.Rows) == 0 {
		return 0
	}
	return (len(n.Rows[0]) - 1) / 3
}

// Linear sweeps from start at z=0 to end at z=length. The two profiles
// must have the same number of points; when they differ in shape the sweep
// blends between them.
func Linear(start, end *xc.Profile, length float64) (*Net, error) {
	if length <= 0 {
		return nil, fmt.Errorf("eval: linear sweep of length %v", length)
	}
	if len(start.Pts) != len(end.Pts) {
		return nil, fmt.Errorf("eval: linear sweep between %d and %d point profiles", len(start.Pts), len(end.Pts))
	}
	return &Net{Rows: [][]v3.Vec{start.Points3(0), end.Points3(length)}}, nil
}

// Bend sweeps p through a quarter turn toward d, which must lie in the
// profile plane. The hinge sits radius away from the profile origin along
// d, so the profile starts at z=0 facing +z and ends centred on
// radius*d + radius*z facing d.
func Bend(p *xc.Profile, d dir.Direction, radius float64) (*Net, error) {
	ac, err := p.ArcControl90(d, radius)
	if err != nil {
		return nil, err
	}
	if min := p.MinTurnRadius(d); radius < min {
		return nil, fmt.Errorf("eval: bend radius %v toward %s is tighter than the profile's %v", radius, d, min)
	}

	toward := unit(d)
	hinge := toward.MulScalar(radius)
	axis := v3.Vec{Z: 1}.Cross(toward)
	turn := sdf.Translate3d(hinge).Mul(sdf.Rotate3d(axis, math.Pi/2)).Mul(sdf.Translate3d(hinge.MulScalar(-1)))

	first := p.Points3(0)
	last := make([]v3.Vec, len(first))
	for i, pt := range first {
		last[i] = turn.MulPosition(pt)
	}

	// Pull each end's controls into the turn by its arc control value: the
	// start along +z, the end back along -d.
	second := make([]v3.Vec, len(first))
	third := make([]v3.Vec, len(first))
	for i := range first {
		second[i] = first[i].Add(v3.Vec{Z: ac[i]})
		third[i] = last[i].Sub(toward.MulScalar(ac[i]))
	}
	return &Net{Rows: [][]v3.Vec{first, second, third, last}}, nil
}

// Singularity closes (opening false) or opens (opening true) a pipe end.
// The profile sits at z=0 and the sweep converges to a near-point length
// away along z: behind the profile when opening, ahead of it when closing.
// Rows are ordered in the direction of travel.
func Singularity(p *xc.Profile, length float64, opening bool) *Net {
	tiny := p.Clone()
	tiny.Scale(SingularityScale)

	zSing := length
	if opening {
		zSing = -length
	}
	sing := tiny.Points3(zSing)
	face := p.Points3(0)
	ac := p.ArcControlByDistance()

	nearFace := make([]v3.Vec, len(face))
	nearSing := make([]v3.Vec, len(face))
	for i, pt := range face {
		dz := ac[i]
		if opening {
			dz = -dz
		}
		nearFace[i] = pt.Add(v3.Vec{Z: dz})
		nearSing[i] = v3.Vec{X: xc.ArcControl * pt.X, Y: xc.ArcControl * pt.Y, Z: zSing}
	}

	if opening {
		return &Net{Rows: [][]v3.Vec{sing, nearSing, nearFace, face}}
	}
	return &Net{Rows: [][]v3.Vec{face, nearFace, nearSing, sing}}
}

func unit(d dir.Direction) v3.Vec {
	v := d.Vec()
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Transformed returns a copy of the net with every control point mapped
// through m.
func (n *Net) Transformed(m sdf.M44) *Net {
	out := &Net{Rows: make([][]v3.Vec, len(n.Rows))}
	for j, row := range n.Rows {
		out.Rows[j] = make([]v3.Vec, len(row))
		for i, pt := range row {
			out.Rows[j][i] = m.MulPosition(pt)
		}
	}
	return out
}
