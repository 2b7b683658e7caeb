package pipe

import (
	"fmt"

	"github.com/chazu/pipes/pkg/rng"
)

// JointStyle selects how turns are drawn.
type JointStyle int

const (
	Elbows JointStyle = iota
	Balls
	Either

	numJointStyles
)

func (s JointStyle) String() string {
	switch s {
	case Elbows:
		return "elbows"
	case Balls:
		return "balls"
	case Either:
		return "either"
	}
	return fmt.Sprintf("JointStyle(%d)", int(s))
}

// Joint is the primitive chosen for one turn.
type Joint int

const (
	Elbow Joint = iota
	Ball
	Teapot
)

// blueMoon is the draw out of 1000 that puts a teapot in a joint.
const blueMoon = 153

// JointPolicy picks joint primitives for every pipe of a run. It is shared
// by all pipes and advanced by the scheduler on frame resets.
type JointPolicy struct {
	Style JointStyle
	// Cycle moves to the next style on every frame reset.
	Cycle bool
}

// Choose picks the joint for one turn. A nil policy always draws elbows.
func (j *JointPolicy) Choose(rnd rng.Source) Joint {
	if j == nil {
		return Elbow
	}
	switch j.Style {
	case Elbows:
		return Elbow
	case Balls:
		return Ball
	}
	if rnd.Intn(1000) == blueMoon {
		return Teapot
	}
	if rnd.Intn(3) == 0 {
		return Ball
	}
	return Elbow
}

// Reset is called once per frame reset.
func (j *JointPolicy) Reset() {
	if j == nil || !j.Cycle {
		return
	}
	j.Style = (j.Style + 1) % numJointStyles
}
