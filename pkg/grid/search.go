package grid

import "github.com/chazu/pipes/pkg/dir"

// FindRandomFree samples cells uniformly until it hits a free one, then
// takes it. After 2*nx*ny*nz misses it falls back to a linear scan so a
// nearly full grid cannot spin. ok is false only when the grid is full.
func (g *Grid) FindRandomFree() (c Coord, ok bool) {
	limit := 2 * g.Len()
	for tries := 0; tries < limit; tries++ {
		c = Coord{g.rnd.Intn(g.size.X), g.rnd.Intn(g.size.Y), g.rnd.Intn(g.size.Z)}
		if !g.taken[g.Index(c)] {
			g.taken[g.Index(c)] = true
			return c, true
		}
	}

	for c.X = 0; c.X < g.size.X; c.X++ {
		for c.Y = 0; c.Y < g.size.Y; c.Y++ {
			for c.Z = 0; c.Z < g.size.Z; c.Z++ {
				if !g.taken[g.Index(c)] {
					g.taken[g.Index(c)] = true
					return c, true
				}
			}
		}
	}
	return Coord{}, false
}

// box holds inclusive search bounds indexed by direction: the plus entry of
// an axis is its maximum and the minus entry its minimum.
type box [dir.Count]int

func boxAround(c Coord) box {
	return box{
		dir.PlusX: c.X, dir.MinusX: c.X,
		dir.PlusY: c.Y, dir.MinusY: c.Y,
		dir.PlusZ: c.Z, dir.MinusZ: c.Z,
	}
}

// dilate grows b by one cell per side, clamped to the grid.
func (g *Grid) dilate(b *box) {
	b[dir.MinusX] = max(b[dir.MinusX]-1, 0)
	b[dir.MinusY] = max(b[dir.MinusY]-1, 0)
	b[dir.MinusZ] = max(b[dir.MinusZ]-1, 0)
	b[dir.PlusX] = min(b[dir.PlusX]+1, g.size.X-1)
	b[dir.PlusY] = min(b[dir.PlusY]+1, g.size.Y-1)
	b[dir.PlusZ] = min(b[dir.PlusZ]+1, g.size.Z-1)
}

// findRandomFree2D searches the face of b on the given side. The face is
// the plane perpendicular to the face's axis at b[face]; its two in-plane
// axes span the box's extent along them.
func (g *Grid) findRandomFree2D(face dir.Direction, b box) (Coord, bool) {
	var ua, va dir.Direction
	switch face.Axis() {
	case dir.X:
		ua, va = dir.PlusZ, dir.PlusY
	case dir.Y:
		ua, va = dir.PlusX, dir.PlusZ
	default:
		ua, va = dir.PlusX, dir.PlusY
	}
	u0, v0 := b[ua.Opposite()], b[va.Opposite()]
	w, h := b[ua]-u0+1, b[va]-v0+1

	at := func(u, v int) Coord {
		var p [3]int
		p[face.Axis()] = b[face]
		p[ua.Axis()] = u
		p[va.Axis()] = v
		return Coord{p[0], p[1], p[2]}
	}
	claim := func(c Coord) bool {
		i := g.Index(c)
		if g.taken[i] {
			return false
		}
		g.taken[i] = true
		return true
	}

	limit := 2 * w * h
	for tries := 0; tries < limit; tries++ {
		c := at(u0+g.rnd.Intn(w), v0+g.rnd.Intn(h))
		if claim(c) {
			return c, true
		}
	}
	for u := u0; u < u0+w; u++ {
		for v := v0; v < v0+h; v++ {
			if c := at(u, v); claim(c) {
				return c, true
			}
		}
	}
	return Coord{}, false
}

// FindClosestFree takes origin if it is free. Otherwise it grows a box
// around origin one cell per side at a time and searches the box's six
// faces, starting from a random face, for a free cell. After max(nx,ny)/3
// rounds it gives up and samples the whole grid with FindRandomFree.
func (g *Grid) FindClosestFree(origin Coord) (Coord, bool) {
	if g.IsFree(origin) {
		g.taken[g.Index(origin)] = true
		return origin, true
	}
	if !g.InBounds(origin) {
		return g.FindRandomFree()
	}

	b := boxAround(origin)
	rounds := max(g.size.X, g.size.Y) / 3
	for i := 0; i < rounds; i++ {
		g.dilate(&b)
		first := g.rnd.Intn(dir.Count)
		for j := 0; j < dir.Count; j++ {
			face := dir.Direction((first + j) % dir.Count)
			if c, ok := g.findRandomFree2D(face, b); ok {
				return c, true
			}
		}
	}
	return g.FindRandomFree()
}
