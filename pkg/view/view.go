// Package view derives the node lattice dimensions from the window shape and
// maps lattice cells to world coordinates.
package view

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/grid"
)

const (
	// NumDiv is the default number of divisions along the longest axis.
	NumDiv = 16
	// DivSize is the default world length of one division.
	DivSize = 7.0
	// ZTrans is the default camera distance along -z.
	ZTrans = -75.0

	sceneRotationStep = 9.73156
)

// View holds the window shape and the world extents derived from it.
type View struct {
	NumDiv  int
	DivSize float64
	ZTrans  float64

	width, height int
	aspect        float64
	world         v3.Vec
	yRot          float64
}

// New returns a view with the given divisions and division size. The window
// size is unset until SetWindowSize is called.
func New(numDiv int, divSize, zTrans float64) *View {
	if numDiv < 3 {
		numDiv = 3
	}
	return &View{NumDiv: numDiv, DivSize: divSize, ZTrans: zTrans, aspect: 1}
}

// SetWindowSize records a new window size and recomputes the world extents.
// It reports false when the size did not change.
func (v *View) SetWindowSize(width, height int) bool {
	if width == v.width && height == v.height {
		return false
	}
	v.width, v.height = width, height

	v.aspect = 1
	if height != 0 {
		v.aspect = float64(width) / float64(height)
	}

	span := float64(v.NumDiv) * v.DivSize
	if width >= height {
		v.world = v3.Vec{X: span, Y: span / v.aspect, Z: span}
	} else {
		v.world = v3.Vec{X: span * v.aspect, Y: span, Z: span}
	}
	return true
}

// Aspect returns width/height, or 1 before a size is set.
func (v *View) Aspect() float64 {
	return v.aspect
}

// World returns the world-space extents of the view volume.
func (v *View) World() v3.Vec {
	return v.world
}

// GridSize returns the node lattice dimensions for the current window.
// The longest screen axis gets NumDiv-1 nodes and the depth matches it.
// Every axis is at least 2.
func (v *View) GridSize() (nx, ny, nz int) {
	if v.width >= v.height {
		nx = v.NumDiv - 1
		ny = int(float64(nx) / v.aspect)
		nz = nx
	} else {
		ny = v.NumDiv - 1
		nx = int(v.aspect * float64(ny))
		nz = ny
	}
	return max(nx, 2), max(ny, 2), max(nz, 2)
}

// CellCenter returns the world position of a node's centre in a lattice of
// the given size. The lattice is centred on the origin.
func (v *View) CellCenter(c, size grid.Coord) v3.Vec {
	return v3.Vec{
		X: (float64(c.X) - float64(size.X-1)/2) * v.DivSize,
		Y: (float64(c.Y) - float64(size.Y-1)/2) * v.DivSize,
		Z: (float64(c.Z) - float64(size.Z-1)/2) * v.DivSize,
	}
}

// SceneRotation returns the current rotation about y, in degrees.
func (v *View) SceneRotation() float64 {
	return v.yRot
}

// IncrementSceneRotation turns the scene a little further about y. It is
// called once per completed frame.
func (v *View) IncrementSceneRotation() {
	v.yRot += sceneRotationStep
	if v.yRot >= 360 {
		v.yRot -= 360
	}
}

// SceneTransform places lattice space in front of the camera: pushed back
// by ZTrans and rotated about y by the scene rotation.
func (v *View) SceneTransform() sdf.M44 {
	rot := sdf.RotateY(v.yRot * math.Pi / 180)
	return sdf.Translate3d(v3.Vec{Z: v.ZTrans}).Mul(rot)
}
