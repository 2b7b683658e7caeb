package grid

import "github.com/chazu/pipes/pkg/dir"

const (
	// MaxWeightStraight is the straight weight that always continues
	// straight when it can.
	MaxWeightStraight = 100

	// TurnSearchRadius is how far ChooseNewTurnDirection looks down each
	// candidate turn.
	TurnSearchRadius = 2

	// ClearestSearchRadius is the lookahead of FindClearestDirection.
	ClearestSearchRadius = 3
)

// ChooseRandomDirection picks the next direction for a pipe at pos that last
// moved along lastDir, and takes the cell it moves into.
//
// Continuing straight counts weight times in the draw, each free turn once.
// A weight of MaxWeightStraight goes straight without drawing whenever the
// straight cell is free. None means every neighbour is taken.
func (g *Grid) ChooseRandomDirection(pos Coord, lastDir dir.Direction, weight int) dir.Direction {
	n := g.Neighbors(pos)

	if weight > 0 {
		if lastDir.Valid() && g.refFree(n[lastDir]) {
			if weight == MaxWeightStraight {
				g.taken[n[lastDir]] = true
				return lastDir
			}
		} else {
			weight = 0
		}
	}

	turns := make([]dir.Direction, 0, dir.Count)
	for _, d := range dir.All {
		if d != lastDir && g.refFree(n[d]) {
			turns = append(turns, d)
		}
	}
	total := weight + len(turns)
	if total == 0 {
		return dir.None
	}

	var choice dir.Direction
	if c := g.rnd.Intn(total); c < weight {
		choice = lastDir
	} else {
		choice = turns[c-weight]
	}
	g.taken[n[choice]] = true
	return choice
}

// ChoosePreferredDirection picks uniformly among the free directions in
// prefs, falling back to any free direction, and takes the chosen cell.
func (g *Grid) ChoosePreferredDirection(pos Coord, prefs []dir.Direction) dir.Direction {
	n := g.Neighbors(pos)

	var pick []dir.Direction
	for _, d := range prefs {
		if d.Valid() && g.refFree(n[d]) {
			pick = append(pick, d)
		}
	}
	if len(pick) == 0 {
		for _, d := range dir.All {
			if g.refFree(n[d]) {
				pick = append(pick, d)
			}
		}
	}
	if len(pick) == 0 {
		return dir.None
	}

	choice := pick[g.rnd.Intn(len(pick))]
	g.taken[n[choice]] = true
	return choice
}

// ChooseNewTurnDirection looks one cell ahead along d and picks the side
// direction with the longest free run from there. On a turn both the cell
// ahead and the first cell of the turn are taken, reserving the joint.
//
// It returns None when the cell ahead is blocked, and Straight when the cell
// ahead is free but no turn leads anywhere. Straight takes nothing; the
// caller takes the cell ahead itself.
func (g *Grid) ChooseNewTurnDirection(pos Coord, d dir.Direction) dir.Direction {
	next, ok := g.Next(pos, d)
	if !ok {
		return dir.None
	}

	turns := g.BestPossibleTurns(next, d, TurnSearchRadius)
	if len(turns) == 0 {
		return dir.Straight
	}

	t := turns[g.rnd.Intn(len(turns))]
	g.Take(next)
	g.Take(next.Step(t))
	return t
}

// BestPossibleTurns measures the free run along each direction orthogonal to
// d, up to radius cells, and returns those tied for the longest run. The
// result is empty when no side neighbour is free.
func (g *Grid) BestPossibleTurns(pos Coord, d dir.Direction, radius int) []dir.Direction {
	var cands []dir.Direction
	for _, t := range dir.All {
		if !t.Parallel(d) {
			cands = append(cands, t)
		}
	}
	return g.longestRuns(pos, cands, radius)
}

// FindClearestDirection returns a random choice among all six directions
// tied for the longest free run from pos, or None if pos is boxed in.
// It takes nothing.
func (g *Grid) FindClearestDirection(pos Coord, radius int) dir.Direction {
	best := g.longestRuns(pos, dir.All[:], radius)
	if len(best) == 0 {
		return dir.None
	}
	return best[g.rnd.Intn(len(best))]
}

func (g *Grid) longestRuns(pos Coord, cands []dir.Direction, radius int) []dir.Direction {
	var best []dir.Direction
	longest := 0
	for _, d := range cands {
		run := g.EmptyAlongDir(pos, d, radius)
		switch {
		case run == 0:
		case run > longest:
			longest = run
			best = append(best[:0], d)
		case run == longest:
			best = append(best, d)
		}
	}
	return best
}
