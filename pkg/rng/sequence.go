package rng

// Sequence is a scripted Source for tests. It replays its values in order,
// wrapping around when exhausted, and counts how many draws were made.
//
// Intn(n) yields v mod n, IntRange(min, max) yields min + v mod (max-min+1)
// and Float(min, max) maps v mod 1000 onto [min, max).
type Sequence struct {
	vals  []int
	pos   int
	Calls int
}

// NewSequence returns a Sequence replaying vals.
func NewSequence(vals ...int) *Sequence {
	return &Sequence{vals: vals}
}

func (s *Sequence) next() int {
	s.Calls++
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	if v < 0 {
		v = -v
	}
	return v
}

func (s *Sequence) Intn(n int) int {
	v := s.next()
	if n <= 0 {
		return 0
	}
	return v % n
}

func (s *Sequence) IntRange(min, max int) int {
	v := s.next()
	if max <= min {
		return min
	}
	return min + v%(max-min+1)
}

func (s *Sequence) Float(min, max float64) float64 {
	v := s.next()
	if max <= min {
		return min
	}
	return min + (max-min)*float64(v%1000)/1000
}
