package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/dir"
)

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Unit returns d as a unit vector.
func Unit(d dir.Direction) v3.Vec {
	v := d.Vec()
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func axisVec(a dir.Axis) v3.Vec {
	switch a {
	case dir.X:
		return v3.Vec{X: 1}
	case dir.Y:
		return v3.Vec{Y: 1}
	}
	return v3.Vec{Z: 1}
}

// alignPlusZ rotates +z onto d.
func alignPlusZ(d dir.Direction) sdf.M44 {
	axis, deg := dir.AlignPlusZ(d)
	return sdf.Rotate3d(axisVec(axis), rad(deg))
}

// Orient returns the rotation that takes a primitive built along +z with
// its seam on +y to run along d with its seam on notch. A notch parallel to
// d is a broken seam invariant; it is reported and the default seam used.
func Orient(d, notch dir.Direction) sdf.M44 {
	deg, ok := dir.AlignNotchRot(d, notch)
	if !ok {
		dir.ReportMiss("no notch rotation for %s with seam %s", d, notch)
	}
	return alignPlusZ(d).Mul(sdf.RotateZ(rad(deg)))
}

// JointFrame returns the local frame of a joint turning from -> to, with
// +z along to and +y back along from, so an ElbowMesh or BallJointMesh
// built in it enters from the node's from side and leaves on its to side.
// The frame's origin is radius along to from the node centre.
func JointFrame(from, to dir.Direction, radius float64) sdf.M44 {
	return alignPlusZ(to).
		Mul(sdf.RotateZ(rad(dir.RotZ(from, to)))).
		Mul(sdf.Translate3d(v3.Vec{Z: radius}))
}
