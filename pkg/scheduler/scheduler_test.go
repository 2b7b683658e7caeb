package scheduler

import (
	"math"
	"testing"

	"github.com/chazu/pipes/pkg/geom"
	"github.com/chazu/pipes/pkg/grid"
	"github.com/chazu/pipes/pkg/pipe"
	"github.com/chazu/pipes/pkg/rng"
	"github.com/chazu/pipes/pkg/view"
)

func newEnv(t *testing.T, seed uint64) *pipe.Env {
	t.Helper()
	src := rng.New(seed)
	lib, err := geom.NewLibrary(geom.Options{Radius: 1, DivSize: 7, Tessellation: 0})
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return &pipe.Env{
		Grid:   grid.New(src),
		View:   view.New(6, 7, -75),
		Lib:    lib,
		Rand:   src,
		Joints: &pipe.JointPolicy{Style: pipe.Either},
	}
}

func tick(t *testing.T, s *Scheduler) Tick {
	t.Helper()
	tk, err := s.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	return tk
}

func TestFirstTickStartsFrame(t *testing.T) {
	env := newEnv(t, 1)
	s := New(env, DefaultOptions())

	tk := tick(t, s)
	if !tk.Started || tk.Frame != 1 || tk.Done {
		t.Fatalf("first tick = %+v", tk)
	}
	if got := s.GridSize(); got != (grid.Coord{X: 5, Y: 5, Z: 5}) {
		t.Errorf("grid size %s", got)
	}
	if s.Budget() != 7 {
		t.Errorf("Budget = %d, want 7", s.Budget())
	}
	if n := s.ActiveSlots(); n < 2 || n > 4 {
		t.Errorf("%d slots, want 2..4", n)
	}
	if len(tk.Pieces) == 0 {
		t.Error("first tick drew nothing")
	}
	if s.Kind() != pipe.Normal {
		t.Errorf("Kind = %s", s.Kind())
	}
}

func TestFrameRunsToCompletion(t *testing.T) {
	for seed := uint64(1); seed <= 4; seed++ {
		env := newEnv(t, seed)
		s := New(env, DefaultOptions())

		var done Tick
		started := map[int]bool{}
		free := -1
		for i := 0; ; i++ {
			if i > 10000 {
				t.Fatalf("seed %d: frame never finished", seed)
			}
			tk := tick(t, s)
			if tk.Frame != 1 {
				t.Fatalf("seed %d: frame %d before the first finished", seed, tk.Frame)
			}
			for _, p := range tk.Pieces {
				started[p.Pipe] = true
			}
			f := env.Grid.FreeCount()
			if free >= 0 && f > free {
				t.Fatalf("seed %d: cells freed mid-frame", seed)
			}
			free = f
			if tk.Done {
				done = tk
				break
			}
			if s.ActiveSlots() == 0 {
				t.Fatalf("seed %d: no slots on a running tick", seed)
			}
		}

		if len(done.Pieces) != 0 {
			t.Errorf("seed %d: finishing tick drew %d pieces", seed, len(done.Pieces))
		}
		if len(started) > s.Budget() {
			t.Errorf("seed %d: %d pipes drew, budget %d", seed, len(started), s.Budget())
		}

		rot := env.View.SceneRotation()
		next := tick(t, s)
		if !next.Started || next.Frame != 2 {
			t.Errorf("seed %d: tick after finish = %+v", seed, next)
		}
		if got := env.View.SceneRotation() - rot; math.Abs(got-9.73156) > 1e-9 {
			t.Errorf("seed %d: scene turned %v", seed, got)
		}
	}
}

func TestSingleSlot(t *testing.T) {
	env := newEnv(t, 2)
	o := DefaultOptions()
	o.MaxSlots = 1
	s := New(env, o)
	tick(t, s)
	if s.ActiveSlots() != 1 || s.Budget() != 5 {
		t.Errorf("%d slots, budget %d", s.ActiveSlots(), s.Budget())
	}
}

func TestTurnomaniaBudget(t *testing.T) {
	env := newEnv(t, 3)
	o := DefaultOptions()
	o.Frame = FrameTurnomania
	s := New(env, o)
	tick(t, s)
	if s.Kind() != pipe.FlexTurning || s.Budget() != 15 {
		t.Errorf("kind %s, budget %d", s.Kind(), s.Budget())
	}
	for _, p := range s.Pipes() {
		if p.Kind() != pipe.FlexTurning {
			t.Errorf("pipe of kind %s", p.Kind())
		}
	}
}

func TestMixedFramesUseBothKinds(t *testing.T) {
	env := newEnv(t, 4)
	o := DefaultOptions()
	o.Frame = FrameMixed
	s := New(env, o)

	seen := map[pipe.Kind]bool{}
	for i := 0; i < 30; i++ {
		s.RequestReset()
		tick(t, s)
		seen[s.Kind()] = true
	}
	if !seen[pipe.Normal] || !seen[pipe.FlexRegular] || len(seen) != 2 {
		t.Errorf("frame kinds %v", seen)
	}
}

func TestResize(t *testing.T) {
	env := newEnv(t, 5)
	s := New(env, DefaultOptions())
	tick(t, s)
	old := s.Pipes()

	s.Resize(1000, 500)
	tk := tick(t, s)
	if !tk.Started || tk.Frame != 2 {
		t.Fatalf("tick after resize = %+v", tk)
	}
	if got := s.GridSize(); got != (grid.Coord{X: 5, Y: 2, Z: 5}) {
		t.Errorf("grid size %s after resize", got)
	}
	if env.View.SceneRotation() != 0 {
		t.Error("resize turned the scene")
	}
	for _, p := range old {
		if p.Active() {
			t.Error("pipe survived the reset")
		}
	}

	s.Resize(1000, 500)
	if tk := tick(t, s); tk.Started {
		t.Error("same size resize restarted the frame")
	}
}

func TestJointStylesCycle(t *testing.T) {
	env := newEnv(t, 6)
	env.Joints = &pipe.JointPolicy{Style: pipe.Either, Cycle: true}
	s := New(env, DefaultOptions())

	for _, want := range []pipe.JointStyle{pipe.Elbows, pipe.Balls, pipe.Either, pipe.Elbows} {
		s.RequestReset()
		tick(t, s)
		if env.Joints.Style != want {
			t.Errorf("style %s, want %s", env.Joints.Style, want)
		}
	}
}

func TestChaseLead(t *testing.T) {
	env := newEnv(t, 7)
	o := DefaultOptions()
	o.Chase = true
	s := New(env, o)
	tick(t, s)

	pipes := s.Pipes()
	lead := s.Lead()
	if lead == nil || lead != pipes[0] || lead.Lead() != nil {
		t.Fatal("first slot does not lead")
	}
	for _, p := range pipes[1:] {
		if p.Lead() != lead {
			t.Error("chaser follows the wrong pipe")
		}
	}
}

func TestCompact(t *testing.T) {
	env := newEnv(t, 8)
	a, b, c := pipe.New(env, pipe.Options{}), pipe.New(env, pipe.Options{}), pipe.New(env, pipe.Options{})
	s := &Scheduler{slots: []slot{{nil, 0}, {a, 1}, {nil, 2}, {b, 3}, {c, 4}, {nil, 5}}}
	s.compact()

	want := []*pipe.Pipe{a, b, c}
	got := s.Pipes()
	if len(got) != len(want) {
		t.Fatalf("%d slots after compaction, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d holds the wrong pipe", i)
		}
	}
}
