package pipe

import (
	"log"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/pipes/pkg/dir"
	"github.com/chazu/pipes/pkg/eval"
	"github.com/chazu/pipes/pkg/geom"
	"github.com/chazu/pipes/pkg/xc"
)

// Flex pipes sweep their profile through each node: a linear sweep across
// a straight node and a quarter bend of radius half a division across a
// turning one. The profile's +y follows the notch.

// newProfile draws the pipe's cross-section, shrunk to fit inside the
// pipe radius.
func (p *Pipe) newProfile() *xc.Profile {
	r := p.env.Lib.Radius
	var prof *xc.Profile
	switch p.opts.Profile {
	case ProfileEllipse:
		prof = xc.NewEllipse(r, p.env.Rand.Float(r/2, r))
	case ProfileRandom:
		prof = xc.NewRandom4Arc(r, p.env.Rand)
	default:
		prof = xc.NewCircle(r)
	}
	if e := prof.MaxExtent(); e > r {
		prof.Scale(r / e)
	}
	return prof
}

func (p *Pipe) half() float64 {
	return p.env.Lib.DivSize / 2
}

func sweep(tr sdf.M44, net *eval.Net, err error) []geom.Placement {
	if err != nil {
		log.Printf("pipe: sweep: %v", err)
		return nil
	}
	return []geom.Placement{{Object: geom.Sweep, Transform: tr, Net: net}}
}

// startFlex opens the pipe at the node centre and sweeps out to the face
// the pipe leaves by.
func (p *Pipe) startFlex(d dir.Direction) []geom.Placement {
	tr := p.frame(d, p.notch, 0)
	plan := sweep(tr, eval.Singularity(p.xc, p.env.Lib.Radius, true), nil)
	net, err := eval.Linear(p.xc, p.xc, p.half())
	return append(plan, sweep(tr, net, err)...)
}

// straightFlex sweeps through the current node along lastDir.
func (p *Pipe) straightFlex() []geom.Placement {
	net, err := eval.Linear(p.xc, p.xc, 2*p.half())
	return sweep(p.frame(p.lastDir, p.notch, -p.half()), net, err)
}

// bendFlex sweeps through the current node from lastDir to d and carries
// the notch through the turn.
func (p *Pipe) bendFlex(d dir.Direction) []geom.Placement {
	net, err := eval.Bend(p.xc, localDir(p.lastDir, p.notch, d), p.half())
	plan := sweep(p.frame(p.lastDir, p.notch, -p.half()), net, err)
	p.turnNotch(d)
	return plan
}

// endFlex closes the pipe just past the face it entered the node by.
func (p *Pipe) endFlex() []geom.Placement {
	tr := p.frame(p.lastDir, p.notch, -p.half())
	return sweep(tr, eval.Singularity(p.xc, p.env.Lib.Radius, false), nil)
}

func (p *Pipe) advanceFlex(d dir.Direction) []geom.Placement {
	if d == dir.None {
		p.status = Stuck
		return p.endFlex()
	}
	var plan []geom.Placement
	if d == p.lastDir {
		plan = p.straightFlex()
	} else {
		plan = p.bendFlex(d)
	}
	p.move(d)
	return plan
}

// advanceTurning looks for a turn one node ahead. On a turn it sweeps
// straight through the current node and bends through the next, moving two
// nodes at once.
func (p *Pipe) advanceTurning() []geom.Placement {
	g := p.env.Grid
	t := g.ChooseNewTurnDirection(p.pos, p.lastDir)
	switch t {
	case dir.None:
		p.status = Stuck
		return p.endFlex()
	case dir.Straight:
		g.Take(p.pos.Step(p.lastDir))
		plan := p.straightFlex()
		p.move(p.lastDir)
		return plan
	}

	plan := p.straightFlex()
	p.move(p.lastDir)
	plan = append(plan, p.bendFlex(t)...)
	p.move(t)
	return plan
}

// localDir returns the direction, in the frame of a primitive running
// along d with its seam on notch, that points along the world direction to.
// The frame's +y is notch and its +x is notch x d.
func localDir(d, notch, to dir.Direction) dir.Direction {
	switch to {
	case notch:
		return dir.PlusY
	case notch.Opposite():
		return dir.MinusY
	}
	x := geom.Unit(notch).Cross(geom.Unit(d))
	if geom.Unit(to).Dot(x) > 0 {
		return dir.PlusX
	}
	return dir.MinusX
}
