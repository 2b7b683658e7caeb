package geom

import (
	"fmt"
	"sync"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/pipes/pkg/eval"
	"github.com/chazu/pipes/pkg/kernel"
)

// Object names a prebuilt primitive of a Library.
type Object int

const (
	ShortPipe Object = iota
	LongPipe
	ElbowJoint
	BallJointObject
	BigBall
	MarkerObject
	Sweep
)

func (o Object) String() string {
	switch o {
	case ShortPipe:
		return "shortPipe"
	case LongPipe:
		return "longPipe"
	case ElbowJoint:
		return "elbow"
	case BallJointObject:
		return "ball"
	case BigBall:
		return "bigBall"
	case MarkerObject:
		return "marker"
	case Sweep:
		return "sweep"
	}
	return fmt.Sprintf("Object(%d)", int(o))
}

// Placement is one primitive positioned in lattice world space. Variant
// selects among the four seam rotations of elbows and ball joints. Sweep
// placements carry their own control net instead of naming a prebuilt
// object.
type Placement struct {
	Object    Object
	Variant   int
	Transform sdf.M44
	Net       *eval.Net
}

// Options sizes a Library.
type Options struct {
	Radius  float64
	DivSize float64
	// Tessellation in [0,3] sets the ring resolution: (t+2)*4 slices.
	Tessellation int
	// SweptBalls draws ball joints as four seam-matched sweeps instead of
	// one oversized sphere.
	SweptBalls bool
	// Kernel builds the marker solid. Without one, markers fall back to a
	// big ball.
	Kernel kernel.Kernel
	// MarkerSize is the marker's overall size in radii.
	MarkerSize float64
}

// Slices returns the ring resolution for a tessellation level.
func Slices(tessellation int) int {
	tessellation = min(max(tessellation, 0), 3)
	return (tessellation + 2) * 4
}

// Library holds every prebuilt primitive a frame needs.
type Library struct {
	Radius     float64
	DivSize    float64
	Slices     int
	SweptBalls bool

	ShortPipe *kernel.Mesh
	LongPipe  *kernel.Mesh
	Elbows    [4]*kernel.Mesh
	Balls     [4]*kernel.Mesh
	BigBall   *kernel.Mesh

	k          kernel.Kernel
	markerSize float64
	markerOnce sync.Once
	marker     *kernel.Mesh
	markerErr  error
}

// NewLibrary builds the pipe, elbow, ball and sphere meshes for o.
func NewLibrary(o Options) (*Library, error) {
	if o.Radius <= 0 || o.DivSize <= 2*o.Radius {
		return nil, fmt.Errorf("geom: radius %v does not fit division size %v", o.Radius, o.DivSize)
	}
	l := &Library{
		Radius:     o.Radius,
		DivSize:    o.DivSize,
		Slices:     Slices(o.Tessellation),
		SweptBalls: o.SweptBalls,
		k:          o.Kernel,
		markerSize: o.MarkerSize,
	}
	if l.markerSize <= 0 {
		l.markerSize = 2.5
	}

	var err error
	build := func(s Segment) *kernel.Mesh {
		if err != nil {
			return nil
		}
		s.Radius, s.Slices = l.Radius, l.Slices
		var m *kernel.Mesh
		m, err = Build(s)
		return m
	}
	l.ShortPipe = build(Segment{Kind: Straight, Length: o.DivSize - 2*o.Radius, Unit: o.DivSize})
	l.LongPipe = build(Segment{Kind: Straight, Length: o.DivSize, Unit: o.DivSize})
	for i := range l.Elbows {
		l.Elbows[i] = build(Segment{Kind: Elbow, Notch: i})
		l.Balls[i] = build(Segment{Kind: BallJoint, Notch: i})
	}
	l.BigBall = build(Segment{Kind: Cap})
	if err != nil {
		return nil, fmt.Errorf("geom: build library: %w", err)
	}
	return l, nil
}

// Marker returns the novelty marker mesh, building it on first use.
func (l *Library) Marker() (*kernel.Mesh, error) {
	l.markerOnce.Do(func() {
		if l.k == nil {
			l.marker = l.BigBall
			return
		}
		l.marker, l.markerErr = Marker(l.k, l.markerSize*l.Radius)
	})
	return l.marker, l.markerErr
}

// Mesh returns the untransformed mesh a placement refers to, with uDiv and
// vDiv controlling sweep evaluation.
func (l *Library) Mesh(p Placement, uDiv, vDiv int) (*kernel.Mesh, error) {
	switch p.Object {
	case ShortPipe:
		return l.ShortPipe, nil
	case LongPipe:
		return l.LongPipe, nil
	case ElbowJoint:
		return l.Elbows[p.Variant&3], nil
	case BallJointObject:
		return l.Balls[p.Variant&3], nil
	case BigBall:
		return l.BigBall, nil
	case MarkerObject:
		return l.Marker()
	case Sweep:
		if p.Net == nil {
			return nil, fmt.Errorf("geom: sweep placement without a net")
		}
		return p.Net.Mesh(uDiv, vDiv), nil
	}
	return nil, fmt.Errorf("geom: unknown object %s", p.Object)
}
