package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/pipes/pkg/config"
	"github.com/chazu/pipes/pkg/engine"
	"github.com/chazu/pipes/pkg/geom"
	"github.com/chazu/pipes/pkg/grid"
	"github.com/chazu/pipes/pkg/kernel"
	"github.com/chazu/pipes/pkg/kernel/manifold"
	"github.com/chazu/pipes/pkg/kernel/sdfx"
	"github.com/chazu/pipes/pkg/pipe"
	"github.com/chazu/pipes/pkg/rng"
	"github.com/chazu/pipes/pkg/scheduler"
	"github.com/chazu/pipes/pkg/stream"
	"github.com/chazu/pipes/pkg/tessellate"
	"github.com/chazu/pipes/pkg/view"
)

// colorPalette is a default palette used to assign distinct colors to pipes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App grows pipes frame after frame and hands the geometry to exporters and
// viewers.
type App struct {
	base   *config.Config
	cfg    *config.Config
	engine *engine.Engine
	runID  uuid.UUID
	seed   uint64

	env   *pipe.Env
	sched *scheduler.Scheduler
	frame *tessellate.Frame
	hub   *stream.Hub
}

// MeshData is the JSON-serializable mesh format written to exports.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
	// Min and Max bound the vertices so viewers can frame the scene.
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

// FrameData is one completed frame.
type FrameData struct {
	RunID  string     `json:"runId"`
	Seed   uint64     `json:"seed"`
	Frame  int        `json:"frame"`
	Kind   string     `json:"kind"`
	Meshes []MeshData `json:"meshes"`
}

// EvalErrorData is a JSON-serializable scene error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// NewApp creates an App for cfg. cfg is the base every scene is applied to.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{
		base:   cfg,
		engine: engine.NewEngine(),
		runID:  uuid.New(),
	}
	if err := a.reset(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// reset rebuilds the geometry library, grid and scheduler for cfg. The next
// tick starts frame 1.
func (a *App) reset(cfg *config.Config) error {
	k, err := newKernel(cfg.Geometry)
	if err != nil {
		return err
	}
	lib, err := geom.NewLibrary(cfg.LibraryOptions(k))
	if err != nil {
		return fmt.Errorf("build geometry: %w", err)
	}

	a.seed = rng.ParseSeed(cfg.Seed)
	src := rng.New(a.seed)
	env := &pipe.Env{
		Grid:   grid.New(src),
		View:   view.New(cfg.View.Divisions, cfg.View.DivSize, cfg.View.ZTrans),
		Lib:    lib,
		Rand:   src,
		Joints: cfg.JointPolicy(),
	}
	sched := scheduler.New(env, cfg.SchedulerOptions())
	sched.Resize(cfg.View.Width, cfg.View.Height)

	a.cfg, a.env, a.sched = cfg, env, sched
	a.frame = tessellate.NewFrame(lib, env.View.SceneTransform(), tessellate.Options{})
	log.Printf("pipes: seed %d, %s frames, %d pipes over %d slots",
		a.seed, cfg.Pipes.Kind, cfg.Budget.PipesPerFrame, cfg.Budget.MaxSlots)
	return nil
}

// newKernel returns the solid kernel that builds the marker.
func newKernel(g config.GeometryConfig) (kernel.Kernel, error) {
	if g.Kernel == "manifold" {
		k, err := manifold.New()
		if err != nil {
			return nil, fmt.Errorf("geometry.kernel: %w", err)
		}
		return k, nil
	}
	return sdfx.New(g.MarkerCells), nil
}

// Config returns the configuration currently running.
func (a *App) Config() *config.Config {
	return a.cfg
}

// SetHub streams every tick's geometry to h.
func (a *App) SetHub(h *stream.Hub) {
	a.hub = h
}

// ApplyScene evaluates a scene script against the base configuration and,
// if it is valid, restarts the run with the result. Errors in the scene
// leave the current run untouched.
func (a *App) ApplyScene(source string) []EvalErrorData {
	cfg, evalErrs, err := a.engine.Evaluate(source, a.base)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		return []EvalErrorData{{Message: err.Error()}}
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, len(evalErrs))
		for i, e := range evalErrs {
			out[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return out
	}
	if err := a.reset(cfg); err != nil {
		log.Printf("Scene reset error: %v", err)
		return []EvalErrorData{{Message: err.Error()}}
	}
	return nil
}

// Step runs one scheduler tick, tessellates what it drew and streams it.
func (a *App) Step() (scheduler.Tick, error) {
	tk, err := a.sched.Tick()
	if err != nil {
		return tk, err
	}
	if tk.Started {
		a.frame.Reset(a.env.View.SceneTransform())
	}
	batch, err := a.frame.Add(tk.Pieces)
	if err != nil {
		return tk, err
	}
	if a.hub != nil {
		b := stream.Batch{Frame: tk.Frame, Started: tk.Started, Done: tk.Done, Meshes: batch}
		if err := a.hub.Broadcast(b); err != nil {
			log.Printf("Broadcast error: %v", err)
		}
	}
	return tk, nil
}

// RunFrame steps until the current frame is done and returns its geometry.
// pause is slept between ticks; ctx cancels the wait.
func (a *App) RunFrame(ctx context.Context, pause time.Duration) (FrameData, error) {
	for {
		tk, err := a.Step()
		if err != nil {
			return FrameData{}, err
		}
		if tk.Done {
			return a.frameData(tk.Frame), nil
		}
		if err := sleep(ctx, pause); err != nil {
			return FrameData{}, err
		}
	}
}

// Run grows frames until frames are done, or forever when frames is zero.
// A scene arriving on scenes restarts the run with it.
func (a *App) Run(ctx context.Context, frames int, pause time.Duration, scenes <-chan string) ([]FrameData, error) {
	var out []FrameData
	for frames == 0 || len(out) < frames {
		select {
		case src := <-scenes:
			for _, e := range a.ApplyScene(src) {
				log.Printf("scene error (line %d): %s", e.Line, e.Message)
			}
		default:
		}

		tk, err := a.Step()
		if err != nil {
			return out, err
		}
		if tk.Done {
			fd := a.frameData(tk.Frame)
			log.Printf("pipes: frame %d done, %d pipes", fd.Frame, len(fd.Meshes))
			if frames > 0 {
				out = append(out, fd)
			}
		}
		if err := sleep(ctx, pause); err != nil {
			return out, err
		}
	}
	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Meshes returns the world-space meshes of the frame drawn so far, one per
// pipe.
func (a *App) Meshes() []*kernel.Mesh {
	return a.frame.Meshes()
}

func (a *App) frameData(n int) FrameData {
	fd := FrameData{
		RunID:  a.runID.String(),
		Seed:   a.seed,
		Frame:  n,
		Kind:   a.sched.Kind().String(),
		Meshes: []MeshData{},
	}
	for i, m := range a.frame.Meshes() {
		lo, hi := m.Bounds()
		fd.Meshes = append(fd.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
			Min:      lo,
			Max:      hi,
		})
	}
	return fd
}

// WriteJSON saves frames as an indented JSON array.
func WriteJSON(path string, frames []FrameData) error {
	data, err := json.MarshalIndent(frames, "", "  ")
	if err != nil {
		return fmt.Errorf("encode frames: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteSTL saves the current frame's pipes as one STL solid.
func (a *App) WriteSTL(path string) error {
	return sdfx.WriteSTL(path, a.frame.Meshes()...)
}
