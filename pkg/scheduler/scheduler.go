// Package scheduler runs the pipes of a frame. A frame owns a fixed set of
// slots; every tick advances each slot's pipe once, replaces stuck pipes
// until the frame's pipe budget is spent, and retires slots after that.
// When the last slot retires the frame is done and the next tick clears the
// grid and starts a new one.
//
// Slots are processed strictly one after another, so the grid needs no
// locking.
package scheduler

import (
	"fmt"

	"github.com/chazu/pipes/pkg/geom"
	"github.com/chazu/pipes/pkg/grid"
	"github.com/chazu/pipes/pkg/pipe"
)

// FrameKind selects which pipes a frame grows.
type FrameKind int

const (
	FrameNormal FrameKind = iota
	FrameFlex
	FrameTurnomania
	// FrameMixed picks normal or flex for each frame.
	FrameMixed
)

func (k FrameKind) String() string {
	switch k {
	case FrameNormal:
		return "normal"
	case FrameFlex:
		return "flex"
	case FrameTurnomania:
		return "turnomania"
	case FrameMixed:
		return "mixed"
	}
	return fmt.Sprintf("FrameKind(%d)", int(k))
}

// Options configures the scheduler.
type Options struct {
	PipesPerFrame           int
	MaxSlots                int
	TurnomaniaPipesPerFrame int

	Frame    FrameKind
	Chase    bool
	StartPos pipe.StartPolicy
	Weight   int
	Profile  pipe.ProfileKind
}

// DefaultOptions returns the classic budget: five pipes a frame over at
// most four slots.
func DefaultOptions() Options {
	return Options{PipesPerFrame: 5, MaxSlots: 4, TurnomaniaPipesPerFrame: 10}
}

// Piece is one placement, tagged with the frame-local number of the pipe
// that planned it.
type Piece struct {
	Pipe int
	geom.Placement
}

// Tick is the outcome of one scheduler step.
type Tick struct {
	// Frame counts frames from 1.
	Frame int
	// Started is set on the tick that reset the grid and began Frame.
	Started bool
	// Done is set when every slot has retired. Nothing is drawn on that
	// tick and the next one starts a new frame.
	Done   bool
	Pieces []Piece
}

type slot struct {
	pipe *pipe.Pipe
	id   int
}

// Scheduler owns the slots of the current frame.
type Scheduler struct {
	env  *pipe.Env
	opts Options

	slots  []slot
	lead   *pipe.Pipe
	kind   pipe.Kind
	budget int
	drawn  int
	nextID int
	frame  int

	resetPending bool
	resized      bool
	finished     bool
}

// New returns a scheduler growing pipes in env. The first Tick sizes the
// grid from env.View and starts frame 1.
func New(env *pipe.Env, o Options) *Scheduler {
	return &Scheduler{env: env, opts: o, resetPending: true, resized: true}
}

// Resize records a new window size. A change resizes the grid and restarts
// the frame on the next tick.
func (s *Scheduler) Resize(width, height int) {
	if s.env.View.SetWindowSize(width, height) {
		s.resized = true
		s.resetPending = true
	}
}

// RequestReset abandons the current frame; the next tick starts a new one.
func (s *Scheduler) RequestReset() {
	s.resetPending = true
}

func (s *Scheduler) Frame() int       { return s.frame }
func (s *Scheduler) Kind() pipe.Kind  { return s.kind }
func (s *Scheduler) Budget() int      { return s.budget }
func (s *Scheduler) Drawn() int       { return s.drawn }
func (s *Scheduler) ActiveSlots() int { return len(s.slots) }
func (s *Scheduler) Lead() *pipe.Pipe { return s.lead }

// Pipes returns the pipes of the live slots, in slot order.
func (s *Scheduler) Pipes() []*pipe.Pipe {
	out := make([]*pipe.Pipe, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.pipe
	}
	return out
}

// Tick runs one step of the current frame, resetting first if a reset is
// pending.
func (s *Scheduler) Tick() (Tick, error) {
	var t Tick
	if s.resetPending {
		pieces, err := s.frameReset()
		if err != nil {
			return t, err
		}
		t.Started = true
		t.Pieces = pieces
	}
	t.Frame = s.frame

	killed := 0
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.pipe.Active() {
			continue
		}
		s.drawn++
		if s.drawn > s.budget {
			sl.pipe.Kill()
			sl.pipe = nil
			killed++
			continue
		}
		t.Pieces = append(t.Pieces, s.start(sl)...)
		if sl.pipe.Status() == pipe.OutOfNodes {
			// No room for more pipes this frame.
			s.budget = s.drawn
		}
	}
	if killed > 0 {
		s.compact()
	}

	if len(s.slots) == 0 {
		s.resetPending = true
		s.finished = true
		t.Done = true
		return t, nil
	}

	for _, sl := range s.slots {
		for _, p := range sl.pipe.Advance() {
			t.Pieces = append(t.Pieces, Piece{Pipe: sl.id, Placement: p})
		}
	}
	return t, nil
}

// compact moves live slots to the front, keeping the survivors in order.
func (s *Scheduler) compact() {
	live := 0
	for i := range s.slots {
		if s.slots[i].pipe == nil {
			continue
		}
		if live < i {
			s.slots[live], s.slots[i] = s.slots[i], s.slots[live]
		}
		live++
	}
	s.slots = s.slots[:live]
}

// frameReset kills every pipe, clears the grid and starts a new frame's
// slots.
func (s *Scheduler) frameReset() ([]Piece, error) {
	for _, sl := range s.slots {
		sl.pipe.Kill()
	}
	s.slots = s.slots[:0]
	s.lead = nil

	g := s.env.Grid
	if s.resized {
		nx, ny, nz := s.env.View.GridSize()
		if err := g.Resize(nx, ny, nz); err != nil {
			return nil, fmt.Errorf("scheduler: resize grid: %w", err)
		}
		s.resized = false
	}
	g.Reset()
	s.env.Joints.Reset()

	s.kind = s.frameKind()
	s.budget = s.opts.PipesPerFrame
	if s.kind == pipe.FlexTurning {
		s.budget = s.opts.TurnomaniaPipesPerFrame
	}
	n := 1
	if s.opts.MaxSlots > 1 {
		s.budget = s.budget * 3 / 2
		n = min(s.budget, s.env.Rand.IntRange(2, s.opts.MaxSlots))
	}
	s.budget = max(s.budget, 1)

	s.drawn = 0
	s.nextID = 0
	s.frame++

	var pieces []Piece
	for i := 0; i < n; i++ {
		s.slots = append(s.slots, slot{})
		pieces = append(pieces, s.start(&s.slots[i])...)
		s.drawn++
	}

	if s.finished {
		s.env.View.IncrementSceneRotation()
	}
	s.finished = false
	s.resetPending = false
	return pieces, nil
}

func (s *Scheduler) frameKind() pipe.Kind {
	switch s.opts.Frame {
	case FrameFlex:
		return pipe.FlexRegular
	case FrameTurnomania:
		return pipe.FlexTurning
	case FrameMixed:
		if s.env.Rand.Intn(2) == 0 {
			return pipe.Normal
		}
		return pipe.FlexRegular
	}
	return pipe.Normal
}

// start puts a new pipe in sl and starts it. With chasing on, the first
// pipe of a frame leads and the rest start far from it and follow it.
func (s *Scheduler) start(sl *slot) []Piece {
	o := pipe.Options{
		Kind:    s.kind,
		Start:   s.opts.StartPos,
		Weight:  s.opts.Weight,
		Profile: s.opts.Profile,
	}
	if sl.pipe != nil {
		o.Reference = sl.pipe.Pos()
	}

	becomesLead := s.opts.Chase && (s.lead == nil || sl.pipe == s.lead)
	if s.opts.Chase && !becomesLead {
		o.Lead = s.lead
		o.Start = pipe.StartFurthest
		o.Reference = s.lead.Pos()
	}

	p := pipe.New(s.env, o)
	if becomesLead {
		s.lead = p
	}
	sl.pipe = p
	sl.id = s.nextID
	s.nextID++

	plan, _ := p.Start()
	pieces := make([]Piece, len(plan))
	for i, pl := range plan {
		pieces[i] = Piece{Pipe: sl.id, Placement: pl}
	}
	return pieces
}

// GridSize returns the dimensions of the lattice the current frame grows
// in.
func (s *Scheduler) GridSize() grid.Coord {
	return s.env.Grid.Size()
}
