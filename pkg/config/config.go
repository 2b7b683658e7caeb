// Package config holds the tunable parameters of a pipes run and loads them
// from YAML, TOML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/chazu/pipes/pkg/geom"
	"github.com/chazu/pipes/pkg/grid"
	"github.com/chazu/pipes/pkg/kernel"
	"github.com/chazu/pipes/pkg/pipe"
	"github.com/chazu/pipes/pkg/scheduler"
)

// ErrUnknownFormat is returned by Load for files whose extension names no
// supported format.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Duration wraps time.Duration so configuration files can say "40ms".
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// number of nanoseconds. Empty strings and null decode to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.UnmarshalText([]byte(s))
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalText is used by the YAML and TOML encoders.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText parses a duration string. TOML decodes through it.
func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML accepts a duration string or an integer number of
// nanoseconds.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: line %d: expected a scalar", n.Line)
	}
	if n.Tag == "!!int" {
		var ns int64
		if err := n.Decode(&ns); err != nil {
			return fmt.Errorf("duration: line %d: %w", n.Line, err)
		}
		*d = Duration(time.Duration(ns))
		return nil
	}
	return d.UnmarshalText([]byte(n.Value))
}

// Config captures everything a run needs.
type Config struct {
	// Seed is a number or any text to hash. Empty seeds from the clock.
	Seed     string         `json:"seed" yaml:"seed" toml:"seed"`
	View     ViewConfig     `json:"view" yaml:"view" toml:"view"`
	Budget   BudgetConfig   `json:"budget" yaml:"budget" toml:"budget"`
	Pipes    PipesConfig    `json:"pipes" yaml:"pipes" toml:"pipes"`
	Joints   JointsConfig   `json:"joints" yaml:"joints" toml:"joints"`
	Geometry GeometryConfig `json:"geometry" yaml:"geometry" toml:"geometry"`
	Output   OutputConfig   `json:"output" yaml:"output" toml:"output"`
}

type ViewConfig struct {
	Width     int     `json:"width" yaml:"width" toml:"width"`
	Height    int     `json:"height" yaml:"height" toml:"height"`
	Divisions int     `json:"divisions" yaml:"divisions" toml:"divisions"` // nodes along the longest axis, plus one
	DivSize   float64 `json:"divSize" yaml:"divSize" toml:"divSize"`       // world size of a node
	ZTrans    float64 `json:"zTrans" yaml:"zTrans" toml:"zTrans"`
}

type BudgetConfig struct {
	PipesPerFrame           int `json:"pipesPerFrame" yaml:"pipesPerFrame" toml:"pipesPerFrame"`
	MaxSlots                int `json:"maxSlots" yaml:"maxSlots" toml:"maxSlots"`
	TurnomaniaPipesPerFrame int `json:"turnomaniaPipesPerFrame" yaml:"turnomaniaPipesPerFrame" toml:"turnomaniaPipesPerFrame"`
}

type PipesConfig struct {
	Kind     string `json:"kind" yaml:"kind" toml:"kind"` // normal, flex, turnomania or mixed
	Chase    bool   `json:"chase" yaml:"chase" toml:"chase"`
	StartPos string `json:"startPos" yaml:"startPos" toml:"startPos"` // random or furthest
	// StraightWeight fixes every pipe's straight weight. Zero draws one per
	// pipe.
	StraightWeight int `json:"straightWeight" yaml:"straightWeight" toml:"straightWeight"`
}

type JointsConfig struct {
	Style string `json:"style" yaml:"style" toml:"style"` // elbows, balls, either or cycle
}

type GeometryConfig struct {
	Radius       float64 `json:"radius" yaml:"radius" toml:"radius"`
	Tessellation int     `json:"tessellation" yaml:"tessellation" toml:"tessellation"`
	Profile      string  `json:"profile" yaml:"profile" toml:"profile"` // circle, ellipse or random
	SweptBalls   bool    `json:"sweptBalls" yaml:"sweptBalls" toml:"sweptBalls"`
	MarkerCells  int     `json:"markerCells" yaml:"markerCells" toml:"markerCells"`
	Kernel       string  `json:"kernel" yaml:"kernel" toml:"kernel"` // sdfx or manifold; builds the marker
}

type OutputConfig struct {
	Frames int      `json:"frames" yaml:"frames" toml:"frames"`
	Tick   Duration `json:"tick" yaml:"tick" toml:"tick"` // pause between ticks while serving
	JSON   string   `json:"json" yaml:"json" toml:"json"`
	STL    string   `json:"stl" yaml:"stl" toml:"stl"`
	Listen string   `json:"listen" yaml:"listen" toml:"listen"` // e.g. ":8080"; empty disables streaming
}

// Default returns the classic screensaver settings.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Width:     1280,
			Height:    720,
			Divisions: 16,
			DivSize:   7,
			ZTrans:    -75,
		},
		Budget: BudgetConfig{
			PipesPerFrame:           5,
			MaxSlots:                4,
			TurnomaniaPipesPerFrame: 10,
		},
		Pipes: PipesConfig{
			Kind:     "normal",
			StartPos: "random",
		},
		Joints: JointsConfig{Style: "cycle"},
		Geometry: GeometryConfig{
			Radius:       1,
			Tessellation: 1,
			Profile:      "circle",
			MarkerCells:  48,
			Kernel:       "sdfx",
		},
		Output: OutputConfig{
			Frames: 1,
			Tick:   Duration(40 * time.Millisecond),
		},
	}
}

// Load reads configuration from path, choosing the decoder by extension.
// An empty path returns defaults. Fields the file omits keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	if err := cfg.Decode(filepath.Ext(path), data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Decode overlays data, in the format named by ext, onto c.
func (c *Config) Decode(ext string, data []byte) error {
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".json":
		err = json.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate reports the first setting that cannot be run.
func (c *Config) Validate() error {
	if c.View.Width <= 0 || c.View.Height <= 0 {
		return errors.New("view dimensions must be positive")
	}
	if c.View.Divisions < 3 {
		return errors.New("view.divisions must be at least 3")
	}
	if c.View.DivSize <= 0 {
		return errors.New("view.divSize must be positive")
	}
	if c.Budget.PipesPerFrame <= 0 || c.Budget.TurnomaniaPipesPerFrame <= 0 {
		return errors.New("budget pipes per frame must be positive")
	}
	if c.Budget.MaxSlots <= 0 {
		return errors.New("budget.maxSlots must be positive")
	}
	if _, ok := frameKinds[c.Pipes.Kind]; !ok {
		return fmt.Errorf("pipes.kind %q is not one of normal, flex, turnomania, mixed", c.Pipes.Kind)
	}
	if _, ok := startPolicies[c.Pipes.StartPos]; !ok {
		return fmt.Errorf("pipes.startPos %q is not one of random, furthest", c.Pipes.StartPos)
	}
	if c.Pipes.StraightWeight < 0 || c.Pipes.StraightWeight > grid.MaxWeightStraight {
		return fmt.Errorf("pipes.straightWeight must be in [0, %d]", grid.MaxWeightStraight)
	}
	if _, ok := jointStyles[c.Joints.Style]; !ok {
		return fmt.Errorf("joints.style %q is not one of elbows, balls, either, cycle", c.Joints.Style)
	}
	if c.Geometry.Radius <= 0 || 2*c.Geometry.Radius >= c.View.DivSize {
		return errors.New("geometry.radius must be positive and narrower than half of view.divSize")
	}
	if c.Geometry.Tessellation < 0 || c.Geometry.Tessellation > 3 {
		return errors.New("geometry.tessellation must be in [0, 3]")
	}
	if _, ok := profiles[c.Geometry.Profile]; !ok {
		return fmt.Errorf("geometry.profile %q is not one of circle, ellipse, random", c.Geometry.Profile)
	}
	if c.Geometry.MarkerCells < 8 {
		return errors.New("geometry.markerCells must be at least 8")
	}
	if c.Geometry.Kernel != "sdfx" && c.Geometry.Kernel != "manifold" {
		return fmt.Errorf("geometry.kernel %q is not one of sdfx, manifold", c.Geometry.Kernel)
	}
	if c.Output.Frames < 0 {
		return errors.New("output.frames cannot be negative")
	}
	if c.Output.Tick < 0 {
		return errors.New("output.tick cannot be negative")
	}
	return nil
}

var (
	frameKinds = map[string]scheduler.FrameKind{
		"normal":     scheduler.FrameNormal,
		"flex":       scheduler.FrameFlex,
		"turnomania": scheduler.FrameTurnomania,
		"mixed":      scheduler.FrameMixed,
	}
	startPolicies = map[string]pipe.StartPolicy{
		"random":   pipe.StartRandom,
		"furthest": pipe.StartFurthest,
	}
	profiles = map[string]pipe.ProfileKind{
		"circle":  pipe.ProfileCircle,
		"ellipse": pipe.ProfileEllipse,
		"random":  pipe.ProfileRandom,
	}
	// Cycling advances before frame 1 draws, so a cycle starting at
	// either runs elbows, balls, either.
	jointStyles = map[string]pipe.JointPolicy{
		"elbows": {Style: pipe.Elbows},
		"balls":  {Style: pipe.Balls},
		"either": {Style: pipe.Either},
		"cycle":  {Style: pipe.Either, Cycle: true},
	}
)

// SchedulerOptions maps the budget and pipe sections onto the scheduler.
func (c *Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		PipesPerFrame:           c.Budget.PipesPerFrame,
		MaxSlots:                c.Budget.MaxSlots,
		TurnomaniaPipesPerFrame: c.Budget.TurnomaniaPipesPerFrame,
		Frame:                   frameKinds[c.Pipes.Kind],
		Chase:                   c.Pipes.Chase,
		StartPos:                startPolicies[c.Pipes.StartPos],
		Weight:                  c.Pipes.StraightWeight,
		Profile:                 profiles[c.Geometry.Profile],
	}
}

// JointPolicy returns a fresh policy for the joints section.
func (c *Config) JointPolicy() *pipe.JointPolicy {
	p := jointStyles[c.Joints.Style]
	return &p
}

// LibraryOptions sizes the geometry library. k builds the novelty marker.
func (c *Config) LibraryOptions(k kernel.Kernel) geom.Options {
	return geom.Options{
		Radius:       c.Geometry.Radius,
		DivSize:      c.View.DivSize,
		Tessellation: c.Geometry.Tessellation,
		SweptBalls:   c.Geometry.SweptBalls,
		Kernel:       k,
	}
}
