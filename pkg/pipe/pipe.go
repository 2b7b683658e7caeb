// Package pipe grows a single pipe through the occupancy grid, one node per
// step, and plans the primitives that draw each step.
//
// A pipe keeps a cursor: the node it is in, the direction it entered by and
// its notch, the world direction of its seam. Every step asks the grid for
// a direction, plans a straight run or a joint, carries the notch through
// the seam tables and moves on. Drawing stops at the entry face of the
// current node, so each step draws through the node it starts in.
package pipe

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/pipes/pkg/dir"
	"github.com/chazu/pipes/pkg/geom"
	"github.com/chazu/pipes/pkg/grid"
	"github.com/chazu/pipes/pkg/rng"
	"github.com/chazu/pipes/pkg/view"
	"github.com/chazu/pipes/pkg/xc"
)

// Kind selects how a pipe routes and how it is drawn.
type Kind int

const (
	// Normal pipes walk the weighted random policy and are drawn with
	// prebuilt cylinders, elbows and balls.
	Normal Kind = iota
	// FlexRegular pipes walk like Normal ones but sweep a cross-section.
	FlexRegular
	// FlexTurning pipes look for a turn on every step.
	FlexTurning
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case FlexRegular:
		return "flex"
	case FlexTurning:
		return "turning"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Status is a pipe's lifecycle state.
type Status int

const (
	Active Status = iota
	// Stuck pipes found no direction to grow in.
	Stuck
	// OutOfNodes pipes found no free cell to start in.
	OutOfNodes
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Stuck:
		return "stuck"
	case OutOfNodes:
		return "outOfNodes"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// StartPolicy selects where a pipe starts.
type StartPolicy int

const (
	StartRandom StartPolicy = iota
	// StartFurthest starts near the lattice corner furthest from
	// Options.Reference.
	StartFurthest
)

// ProfileKind selects the cross-section of flex pipes.
type ProfileKind int

const (
	ProfileCircle ProfileKind = iota
	ProfileEllipse
	ProfileRandom
)

// Env is the state every pipe of a frame shares.
type Env struct {
	Grid   *grid.Grid
	View   *view.View
	Lib    *geom.Library
	Rand   rng.Source
	Joints *JointPolicy
}

// Options configures one pipe.
type Options struct {
	Kind  Kind
	Start StartPolicy
	// Reference is the position StartFurthest moves away from.
	Reference grid.Coord
	// Lead is the pipe this one chases. Without an active lead the pipe
	// walks the weighted random policy.
	Lead *Pipe
	// Weight fixes the straight weight in [1, grid.MaxWeightStraight]. Zero
	// draws a weight per pipe.
	Weight  int
	Profile ProfileKind
}

// Pipe is one growing pipe.
type Pipe struct {
	env  *Env
	opts Options

	pos     grid.Coord
	lastDir dir.Direction
	notch   dir.Direction
	status  Status
	weight  int
	xc      *xc.Profile
}

// New returns an unstarted pipe. Unless o fixes one, the pipe draws its
// straight weight here.
func New(env *Env, o Options) *Pipe {
	p := &Pipe{
		env:     env,
		opts:    o,
		lastDir: dir.None,
		notch:   dir.None,
		weight:  min(o.Weight, grid.MaxWeightStraight),
	}
	if p.weight <= 0 {
		p.weight = weightStraight(env.Rand)
	}
	return p
}

// weightStraight draws a straight weight: one pipe in twenty runs long and
// straight, the rest turn often.
func weightStraight(rnd rng.Source) int {
	if rnd.Intn(20) == 0 {
		return rnd.IntRange(grid.MaxWeightStraight/4, grid.MaxWeightStraight)
	}
	return 1 + rnd.Intn(4)
}

func (p *Pipe) Kind() Kind             { return p.opts.Kind }
func (p *Pipe) Status() Status         { return p.status }
func (p *Pipe) Pos() grid.Coord        { return p.pos }
func (p *Pipe) LastDir() dir.Direction { return p.lastDir }
func (p *Pipe) Notch() dir.Direction   { return p.notch }
func (p *Pipe) Weight() int            { return p.weight }
func (p *Pipe) Profile() *xc.Profile   { return p.xc }
func (p *Pipe) Lead() *Pipe            { return p.opts.Lead }

// Active reports whether the pipe has started and can still grow.
func (p *Pipe) Active() bool {
	return p.status == Active && p.lastDir.Valid()
}

func (p *Pipe) center() v3.Vec {
	return p.env.View.CellCenter(p.pos, p.env.Grid.Size())
}

func (p *Pipe) at(o geom.Object) geom.Placement {
	return geom.Placement{Object: o, Transform: sdf.Translate3d(p.center())}
}

// frame returns the transform to a primitive built along +z with its seam
// on +y, running along d with its seam on notch and shifted z along d from
// the current node's centre.
func (p *Pipe) frame(d, notch dir.Direction, z float64) sdf.M44 {
	return sdf.Translate3d(p.center()).
		Mul(geom.Orient(d, notch)).
		Mul(sdf.Translate3d(v3.Vec{Z: z}))
}

func (p *Pipe) move(d dir.Direction) {
	p.pos = p.pos.Step(d)
	p.lastDir = d
}

// Start places the pipe and plans its first piece. A pipe with nowhere to
// go from its start cell is drawn as a marker and is Stuck at birth. ok is
// false only when no free start cell was left; the pipe is then
// OutOfNodes.
func (p *Pipe) Start() (plan []geom.Placement, ok bool) {
	pos, ok := p.startPos()
	if !ok {
		p.status = OutOfNodes
		return nil, false
	}
	p.pos = pos
	if p.opts.Kind != Normal {
		p.xc = p.newProfile()
	}

	var d dir.Direction
	if p.opts.Kind == FlexTurning {
		d = p.env.Grid.FindClearestDirection(pos, grid.ClearestSearchRadius)
		if d != dir.None {
			p.env.Grid.Take(pos.Step(d))
		}
	} else {
		p.lastDir = dir.Direction(p.env.Rand.Intn(dir.Count))
		d = p.chooseDirection()
	}
	if d == dir.None {
		p.status = Stuck
		return []geom.Placement{p.at(geom.MarkerObject)}, true
	}

	p.status = Active
	p.notch = dir.DefaultNotch(d)
	if p.opts.Kind == Normal {
		plan = []geom.Placement{
			p.at(geom.BigBall),
			{Object: geom.ShortPipe, Transform: p.frame(d, p.notch, p.env.Lib.Radius)},
		}
	} else {
		plan = p.startFlex(d)
	}
	p.move(d)
	return plan, true
}

func (p *Pipe) startPos() (grid.Coord, bool) {
	g := p.env.Grid
	if p.opts.Start == StartFurthest {
		n, ref := g.Size(), p.opts.Reference
		far := func(v, n int) int {
			if v >= n/2 {
				return 0
			}
			return n - 1
		}
		return g.FindClosestFree(grid.Coord{X: far(ref.X, n.X), Y: far(ref.Y, n.Y), Z: far(ref.Z, n.Z)})
	}
	return g.FindRandomFree()
}

// chooseDirection asks the grid for the next direction: toward the lead
// pipe while it is active, otherwise by weighted random draw. The chosen
// cell is taken.
func (p *Pipe) chooseDirection() dir.Direction {
	g := p.env.Grid
	if lead := p.opts.Lead; lead != nil && lead != p && lead.Active() {
		delta := lead.pos.Sub(p.pos)
		if prefs := dir.FromDelta(delta.X, delta.Y, delta.Z); len(prefs) > 0 {
			return g.ChoosePreferredDirection(p.pos, prefs)
		}
	}
	return g.ChooseRandomDirection(p.pos, p.lastDir, p.weight)
}

// Advance grows the pipe one step and returns what to draw for it. A pipe
// that finds no direction is capped and becomes Stuck. Pipes that are not
// active plan nothing.
func (p *Pipe) Advance() []geom.Placement {
	if !p.Active() {
		return nil
	}
	switch p.opts.Kind {
	case FlexRegular:
		return p.advanceFlex(p.chooseDirection())
	case FlexTurning:
		return p.advanceTurning()
	}
	return p.advanceNormal(p.chooseDirection())
}

func (p *Pipe) advanceNormal(d dir.Direction) []geom.Placement {
	if d == dir.None {
		p.status = Stuck
		return []geom.Placement{p.at(geom.BigBall)}
	}

	r := p.env.Lib.Radius
	var plan []geom.Placement
	if d == p.lastDir {
		plan = append(plan, geom.Placement{Object: geom.LongPipe, Transform: p.frame(d, p.notch, -r)})
	} else {
		plan = append(plan, p.joint(d))
		p.turnNotch(d)
		plan = append(plan, geom.Placement{Object: geom.ShortPipe, Transform: p.frame(d, p.notch, r)})
	}
	p.move(d)
	return plan
}

// joint plans the primitive joining lastDir to the new direction d at the
// current node.
func (p *Pipe) joint(d dir.Direction) geom.Placement {
	switch p.env.Joints.Choose(p.env.Rand) {
	case Ball:
		if !p.env.Lib.SweptBalls {
			return p.at(geom.BigBall)
		}
		return p.jointAt(geom.BallJointObject, d)
	case Teapot:
		return p.at(geom.MarkerObject)
	}
	return p.jointAt(geom.ElbowJoint, d)
}

func (p *Pipe) jointAt(o geom.Object, d dir.Direction) geom.Placement {
	variant := dir.ChooseElbow(p.lastDir, d, p.notch)
	if variant < 0 {
		dir.ReportMiss("no elbow for %s->%s with seam %s", p.lastDir, d, p.notch)
		variant = 0
	}
	return geom.Placement{
		Object:    o,
		Variant:   variant,
		Transform: sdf.Translate3d(p.center()).Mul(geom.JointFrame(p.lastDir, d, p.env.Lib.Radius)),
	}
}

// turnNotch carries the seam through a turn from lastDir to d.
func (p *Pipe) turnNotch(d dir.Direction) {
	n := dir.Turn(p.lastDir, d, p.notch)
	if n == dir.None {
		dir.ReportMiss("no seam turn for %s->%s with seam %s", p.lastDir, d, p.notch)
		n = dir.DefaultNotch(d)
	}
	p.notch = n
}

// Kill stops the pipe where it is. Nothing is drawn.
func (p *Pipe) Kill() {
	if p.status == Active {
		p.status = Stuck
	}
}
