package eval

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/dir"
	"github.com/chazu/pipes/pkg/xc"
)

func TestBernsteinPartitionOfUnity(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		for _, u := range []float64{0, 0.25, 0.5, 0.9, 1} {
			b := make([]float64, n+1)
			db := make([]float64, n+1)
			bernstein(u, b, db)
			sum, dsum := 0.0, 0.0
			for i := range b {
				sum += b[i]
				dsum += db[i]
			}
			if math.Abs(sum-1) > 1e-12 || math.Abs(dsum) > 1e-12 {
				t.Errorf("degree %d at %v: sum %v, derivative sum %v", n, u, sum, dsum)
			}
		}
	}
}

func TestBernsteinCubic(t *testing.T) {
	var b, db [4]float64
	bernstein(0.5, b[:], db[:])
	want := [4]float64{0.125, 0.375, 0.375, 0.125}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-12 {
			t.Errorf("b[%d] = %v, want %v", i, b[i], want[i])
		}
	}
	bernstein(0, b[:], db[:])
	if db[0] != -3 || db[1] != 3 {
		t.Errorf("derivative at 0 = %v", db)
	}
}

func TestLinear(t *testing.T) {
	p := xc.NewCircle(1)
	n, err := Linear(p, p, 5)
	if err != nil {
		t.Fatal(err)
	}
	if n.Sections() != 4 {
		t.Fatalf("Sections = %d", n.Sections())
	}
	for s := 0; s < 4; s++ {
		for _, u := range []float64{0, 0.3, 0.5, 1} {
			pt, _, _ := n.Point(s, u, 0.5)
			if math.Abs(pt.Z-2.5) > 1e-9 {
				t.Errorf("section %d u %v: z = %v", s, u, pt.Z)
			}
			r := math.Hypot(pt.X, pt.Y)
			if math.Abs(r-1) > 0.02 {
				t.Errorf("section %d u %v: radius %v", s, u, r)
			}
			nrm := n.Normal(s, u, 0.5)
			if nrm.Dot(v3.Vec{X: pt.X, Y: pt.Y}) <= 0 {
				t.Errorf("section %d u %v: normal %v points inward", s, u, nrm)
			}
		}
	}

	if _, err := Linear(p, p, 0); err == nil {
		t.Error("zero length accepted")
	}
	if _, err := Linear(p, &xc.Profile{Pts: p.Pts[:9]}, 1); err == nil {
		t.Error("mismatched profiles accepted")
	}
}

func TestBendEndsFacingTurn(t *testing.T) {
	tests := []struct {
		d       dir.Direction
		end     v3.Vec // where the profile's +x point lands
		tangent v3.Vec
	}{
		{dir.PlusX, v3.Vec{X: 3, Z: 2}, v3.Vec{X: 1}},
		{dir.MinusX, v3.Vec{X: -3, Z: 4}, v3.Vec{X: -1}},
		{dir.PlusY, v3.Vec{X: 1, Y: 3, Z: 3}, v3.Vec{Y: 1}},
		{dir.MinusY, v3.Vec{X: 1, Y: -3, Z: 3}, v3.Vec{Y: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			n, err := Bend(xc.NewCircle(1), tt.d, 3)
			if err != nil {
				t.Fatal(err)
			}
			if len(n.Rows) != 4 {
				t.Fatalf("%d rows", len(n.Rows))
			}
			start, _, _ := n.Point(0, 0, 0)
			if start.Sub(v3.Vec{X: 1}).Length() > 1e-9 {
				t.Errorf("start = %v", start)
			}
			end, _, dv := n.Point(0, 0, 1)
			if end.Sub(tt.end).Length() > 1e-9 {
				t.Errorf("end = %v, want %v", end, tt.end)
			}
			if dv.Normalize().Sub(tt.tangent).Length() > 1e-9 {
				t.Errorf("end tangent = %v, want %v", dv.Normalize(), tt.tangent)
			}
		})
	}

	if _, err := Bend(xc.NewCircle(1), dir.PlusZ, 3); err == nil {
		t.Error("bend along z accepted")
	}
	// An ellipse wide along x folds over itself in a tight x turn but not
	// in the same turn along y.
	wide := xc.NewEllipse(2, 0.5)
	if _, err := Bend(wide, dir.MinusX, 1); err == nil {
		t.Error("bend tighter than the profile accepted")
	}
	if _, err := Bend(wide, dir.PlusY, 1); err != nil {
		t.Errorf("bend clear of the profile rejected: %v", err)
	}
}

func TestSingularity(t *testing.T) {
	p := xc.NewCircle(1)

	open := Singularity(p, 1, true)
	tip, _, _ := open.Point(0, 0.3, 0)
	if tip.Sub(v3.Vec{Z: -1}).Length() > 1e-3 {
		t.Errorf("opening tip = %v", tip)
	}
	face, _, _ := open.Point(0, 0, 1)
	if face.Sub(v3.Vec{X: 1}).Length() > 1e-9 {
		t.Errorf("opening face = %v", face)
	}

	closing := Singularity(p, 1, false)
	tip, _, _ = closing.Point(2, 0.6, 1)
	if tip.Sub(v3.Vec{Z: 1}).Length() > 1e-3 {
		t.Errorf("closing tip = %v", tip)
	}
	if nrm := closing.Normal(0, 0.5, 1); nrm.Length() == 0 {
		t.Error("no normal at the pinched end")
	}
}

func TestMesh(t *testing.T) {
	p := xc.NewCircle(1)
	n, _ := Linear(p, p, 2)
	m := n.Mesh(3, 2)

	// 4 sections * 2 strips, each strip 2 rings of 4 vertices.
	if len(m.Groups) != 8 {
		t.Fatalf("%d groups", len(m.Groups))
	}
	if m.VertexCount() != 8*8 {
		t.Errorf("VertexCount = %d", m.VertexCount())
	}
	if m.TriangleCount() != 8*6 {
		t.Errorf("TriangleCount = %d", m.TriangleCount())
	}
	lo, hi := m.Bounds()
	if lo[2] != 0 || hi[2] != 2 {
		t.Errorf("z range %v..%v", lo[2], hi[2])
	}
}

func TestTransformed(t *testing.T) {
	p := xc.NewCircle(1)
	n, _ := Linear(p, p, 2)
	moved := n.Transformed(sdf.Translate3d(v3.Vec{Z: 10}))
	pt, _, _ := moved.Point(0, 0, 0)
	if pt.Sub(v3.Vec{X: 1, Z: 10}).Length() > 1e-9 {
		t.Errorf("moved start = %v", pt)
	}
	if orig, _, _ := n.Point(0, 0, 0); orig.Z != 0 {
		t.Error("Transformed changed the source net")
	}
}
