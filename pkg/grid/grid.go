// Package grid implements the occupancy lattice pipes grow through. Cells are
// stored in one flat buffer, x fastest, and addressed with per-direction
// strides. The grid knows nothing about pipes or geometry.
package grid

import (
	"errors"
	"fmt"

	"github.com/chazu/pipes/pkg/dir"
	"github.com/chazu/pipes/pkg/rng"
)

// ErrBadSize is returned by Resize when a dimension is below two.
var ErrBadSize = errors.New("grid: every dimension must be at least 2")

// Coord addresses one cell.
type Coord struct {
	X, Y, Z int
}

// Step returns the coordinate one cell along d.
func (c Coord) Step(d dir.Direction) Coord {
	dx, dy, dz := d.Offset()
	return Coord{c.X + dx, c.Y + dy, c.Z + dz}
}

// Sub returns c - o component-wise.
func (c Coord) Sub(o Coord) Coord {
	return Coord{c.X - o.X, c.Y - o.Y, c.Z - o.Z}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// CellRef is a linear index into the grid's buffer. NoCell marks a
// neighbour beyond the grid boundary.
type CellRef int

const NoCell CellRef = -1

// Grid is the occupancy lattice.
type Grid struct {
	size   Coord
	taken  []bool
	stride [dir.Count]int
	rnd    rng.Source
}

// New returns an empty grid drawing randomness from rnd. Call Resize before
// use.
func New(rnd rng.Source) *Grid {
	return &Grid{rnd: rnd}
}

// Resize reallocates the lattice if the dimensions changed and clears every
// cell. Resizing to the current dimensions is a no-op.
func (g *Grid) Resize(nx, ny, nz int) error {
	if nx < 2 || ny < 2 || nz < 2 {
		return fmt.Errorf("%w: got %dx%dx%d", ErrBadSize, nx, ny, nz)
	}
	if g.size == (Coord{nx, ny, nz}) {
		return nil
	}
	g.size = Coord{nx, ny, nz}
	g.taken = make([]bool, nx*ny*nz)

	g.stride[dir.PlusX] = 1
	g.stride[dir.MinusX] = -1
	g.stride[dir.PlusY] = nx
	g.stride[dir.MinusY] = -nx
	g.stride[dir.PlusZ] = nx * ny
	g.stride[dir.MinusZ] = -nx * ny
	return nil
}

// Reset frees every cell without reallocating.
func (g *Grid) Reset() {
	clear(g.taken)
}

// Size returns the lattice dimensions.
func (g *Grid) Size() Coord {
	return g.size
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.taken)
}

// InBounds reports whether c lies inside the lattice.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.size.X &&
		c.Y >= 0 && c.Y < g.size.Y &&
		c.Z >= 0 && c.Z < g.size.Z
}

// Index returns the linear buffer index of c.
func (g *Grid) Index(c Coord) CellRef {
	return CellRef(c.X + c.Y*g.size.X + c.Z*g.size.X*g.size.Y)
}

// IsFree reports whether c is inside the grid and unoccupied.
func (g *Grid) IsFree(c Coord) bool {
	return g.InBounds(c) && !g.taken[g.Index(c)]
}

// Take marks c occupied. Taking an occupied or out-of-range cell is a logic
// error in the caller and panics.
func (g *Grid) Take(c Coord) {
	if !g.IsFree(c) {
		panic(fmt.Sprintf("grid: take of unavailable cell %s", c))
	}
	g.taken[g.Index(c)] = true
}

func (g *Grid) refFree(r CellRef) bool {
	return r != NoCell && !g.taken[r]
}

// FreeCount returns the number of unoccupied cells.
func (g *Grid) FreeCount() int {
	n := 0
	for _, t := range g.taken {
		if !t {
			n++
		}
	}
	return n
}

// Neighbors returns, per direction, the adjacent cell or NoCell when pos lies
// on that face of the grid.
func (g *Grid) Neighbors(pos Coord) [dir.Count]CellRef {
	var n [dir.Count]CellRef
	center := g.Index(pos)
	edge := [dir.Count]bool{
		dir.PlusX:  pos.X == g.size.X-1,
		dir.MinusX: pos.X == 0,
		dir.PlusY:  pos.Y == g.size.Y-1,
		dir.MinusY: pos.Y == 0,
		dir.PlusZ:  pos.Z == g.size.Z-1,
		dir.MinusZ: pos.Z == 0,
	}
	for _, d := range dir.All {
		if edge[d] {
			n[d] = NoCell
			continue
		}
		n[d] = center + CellRef(g.stride[d])
	}
	return n
}

// Next returns the cell one step along d from pos, and whether it is free.
// ok is false at the grid boundary or when the cell is occupied.
func (g *Grid) Next(pos Coord, d dir.Direction) (next Coord, ok bool) {
	if !d.Valid() {
		return pos, false
	}
	next = pos.Step(d)
	return next, g.IsFree(next)
}

// EmptyAlongDir counts contiguous free cells from pos along d, looking at
// most radius cells ahead and never past the boundary.
func (g *Grid) EmptyAlongDir(pos Coord, d dir.Direction, radius int) int {
	var room int
	switch d {
	case dir.PlusX:
		room = g.size.X - pos.X - 1
	case dir.MinusX:
		room = pos.X
	case dir.PlusY:
		room = g.size.Y - pos.Y - 1
	case dir.MinusY:
		room = pos.Y
	case dir.PlusZ:
		room = g.size.Z - pos.Z - 1
	case dir.MinusZ:
		room = pos.Z
	default:
		return 0
	}
	radius = min(radius, room)

	ref := g.Index(pos)
	count := 0
	for ; radius > 0; radius-- {
		ref += CellRef(g.stride[d])
		if g.taken[ref] {
			break
		}
		count++
	}
	return count
}
