package eval

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/kernel"
)

// bernstein fills b with the degree len(b)-1 basis at t and db with its
// derivative.
func bernstein(t float64, b, db []float64) {
	n := len(b) - 1
	// Degree n-1 basis first, for the derivative.
	lower := make([]float64, n+1)
	lower[0] = 1
	for k := 1; k < n; k++ {
		lower[k] = 0
		for i := k; i > 0; i-- {
			lower[i] = (1-t)*lower[i] + t*lower[i-1]
		}
		lower[0] *= 1 - t
	}
	for i := 0; i <= n; i++ {
		var lo, hi float64
		if i > 0 {
			lo = lower[i-1]
		}
		if i < n {
			hi = lower[i]
		}
		b[i] = (1-t)*hi + t*lo
		db[i] = float64(n) * (lo - hi)
	}
}

// Point evaluates section s of the net at (u, v), returning the surface
// point and its partial derivatives.
func (n *Net) Point(s int, u, v float64) (p, du, dv v3.Vec) {
	var bu, dbu [4]float64
	bernstein(u, bu[:], dbu[:])
	bv := make([]float64, len(n.Rows))
	dbv := make([]float64, len(n.Rows))
	bernstein(v, bv, dbv)

	for j, row := range n.Rows {
		for i := 0; i < 4; i++ {
			c := row[3*s+i]
			p = p.Add(c.MulScalar(bu[i] * bv[j]))
			du = du.Add(c.MulScalar(dbu[i] * bv[j]))
			dv = dv.Add(c.MulScalar(bu[i] * dbv[j]))
		}
	}
	return p, du, dv
}

// Normal returns the unit surface normal at (u, v). Where the surface
// pinches to a point it samples just inside the patch.
func (n *Net) Normal(s int, u, v float64) v3.Vec {
	const nudge = 1e-3
	_, du, dv := n.Point(s, u, v)
	nrm := du.Cross(dv)
	if nrm.Length() < 1e-9 {
		w := v + nudge
		if v > 0.5 {
			w = v - nudge
		}
		_, du, dv = n.Point(s, u, w)
		nrm = du.Cross(dv)
	}
	if nrm.Length() == 0 {
		return nrm
	}
	return nrm.Normalize()
}

// Mesh evaluates the net on a uDiv by vDiv grid per section and returns it
// as one quad strip per section and v step. Normals face outward for
// profiles that run counter-clockwise.
func (n *Net) Mesh(uDiv, vDiv int) *kernel.Mesh {
	uDiv, vDiv = max(uDiv, 1), max(vDiv, 1)
	m := &kernel.Mesh{}

	rings := make([][]v3.Vec, vDiv+1)
	normals := make([][]v3.Vec, vDiv+1)
	for s := 0; s < n.Sections(); s++ {
		for j := 0; j <= vDiv; j++ {
			v := float64(j) / float64(vDiv)
			rings[j] = make([]v3.Vec, uDiv+1)
			normals[j] = make([]v3.Vec, uDiv+1)
			for k := 0; k <= uDiv; k++ {
				u := float64(k) / float64(uDiv)
				rings[j][k], _, _ = n.Point(s, u, v)
				normals[j][k] = n.Normal(s, u, v)
			}
		}
		for j := 0; j < vDiv; j++ {
			m.QuadStrip(rings[j], rings[j+1], normals[j], normals[j+1])
		}
	}
	return m
}
