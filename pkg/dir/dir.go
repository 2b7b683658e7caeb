// Package dir defines the six cardinal lattice directions and the static
// seam-alignment tables that keep a pipe's cross-section seam ("notch")
// continuous across turns.
package dir

// A Direction is one of the six axis-aligned lattice directions, or one of
// the sentinels None and Straight.
type Direction int8

const (
	PlusX Direction = iota
	MinusX
	PlusY
	MinusY
	PlusZ
	MinusZ

	// None means no valid move exists.
	None
	// Straight is returned only by turn-seeking queries: no turn was found
	// but the cell straight ahead is free.
	Straight
)

// Count is the number of cardinal directions.
const Count = 6

// All lists the cardinal directions in table order.
var All = [Count]Direction{PlusX, MinusX, PlusY, MinusY, PlusZ, MinusZ}

// Axis identifies one of the three lattice axes.
type Axis int8

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return "?"
}

// Valid reports whether d is a cardinal direction.
func (d Direction) Valid() bool {
	return d >= PlusX && d <= MinusZ
}

// Axis returns the axis d runs along. d must be valid.
func (d Direction) Axis() Axis {
	return Axis(d / 2)
}

// Positive reports whether d points along the positive half of its axis.
func (d Direction) Positive() bool {
	return d.Valid() && d%2 == 0
}

// Opposite returns the reverse direction.
// The sentinels are their own opposites.
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return d
	}
	return d ^ 1
}

// Parallel reports whether d and e share an axis.
func (d Direction) Parallel(e Direction) bool {
	return d.Valid() && e.Valid() && d.Axis() == e.Axis()
}

var offsets = [Count][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Offset returns the unit lattice step for d, or the zero step for a
// sentinel.
func (d Direction) Offset() (dx, dy, dz int) {
	if !d.Valid() {
		return 0, 0, 0
	}
	o := offsets[d]
	return o[0], o[1], o[2]
}

// Vec returns d as a unit vector.
func (d Direction) Vec() [3]float64 {
	dx, dy, dz := d.Offset()
	return [3]float64{float64(dx), float64(dy), float64(dz)}
}

func (d Direction) String() string {
	switch d {
	case PlusX:
		return "+x"
	case MinusX:
		return "-x"
	case PlusY:
		return "+y"
	case MinusY:
		return "-y"
	case PlusZ:
		return "+z"
	case MinusZ:
		return "-z"
	case None:
		return "none"
	case Straight:
		return "straight"
	}
	return "invalid"
}

// Parse converts a direction name such as "+x" or "-z" back to a Direction.
func Parse(s string) (Direction, bool) {
	for _, d := range All {
		if d.String() == s {
			return d, true
		}
	}
	return None, false
}

// FromDelta returns the directions that close a lattice delta, in x, y, z
// order. A zero component contributes nothing.
func FromDelta(dx, dy, dz int) []Direction {
	var out []Direction
	pick := func(v int, pos, neg Direction) {
		switch {
		case v > 0:
			out = append(out, pos)
		case v < 0:
			out = append(out, neg)
		}
	}
	pick(dx, PlusX, MinusX)
	pick(dy, PlusY, MinusY)
	pick(dz, PlusZ, MinusZ)
	return out
}
