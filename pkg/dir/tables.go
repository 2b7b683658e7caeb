package dir

// Short names keep the tables below readable. xx marks an undefined entry.
const (
	px = PlusX
	mx = MinusX
	py = PlusY
	my = MinusY
	pz = PlusZ
	mz = MinusZ
	xx = None
)

// notchTurn[old][new][notch] is the seam direction after turning from old to
// new. It equals notch rotated 90 degrees about old x new.
var notchTurn = [Count][Count][Count]Direction{
	// old = +x
	{
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, mx, px, pz, mz},
		{xx, xx, px, mx, pz, mz},
		{xx, xx, py, my, mx, px},
		{xx, xx, py, my, px, mx},
	},
	// old = -x
	{
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, px, mx, pz, mz},
		{xx, xx, mx, px, pz, mz},
		{xx, xx, py, my, px, mx},
		{xx, xx, py, my, mx, px},
	},
	// old = +y
	{
		{my, py, xx, xx, pz, mz},
		{py, my, xx, xx, pz, mz},
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, xx, xx, xx, xx},
		{px, mx, xx, xx, my, py},
		{px, mx, xx, xx, py, my},
	},
	// old = -y
	{
		{py, my, xx, xx, pz, mz},
		{my, py, xx, xx, pz, mz},
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, xx, xx, xx, xx},
		{px, mx, xx, xx, py, my},
		{px, mx, xx, xx, my, py},
	},
	// old = +z
	{
		{mz, pz, py, my, xx, xx},
		{pz, mz, py, my, xx, xx},
		{px, mx, mz, pz, xx, xx},
		{px, mx, pz, mz, xx, xx},
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, xx, xx, xx, xx},
	},
	// old = -z
	{
		{pz, mz, py, my, xx, xx},
		{mz, pz, py, my, xx, xx},
		{px, mx, pz, mz, xx, xx},
		{px, mx, mz, pz, xx, xx},
		{xx, xx, xx, xx, xx, xx},
		{xx, xx, xx, xx, xx, xx},
	},
}

// elbowNotch[old][new] is the sequence of seam directions produced by the
// four pre-rotated elbow variants. Entry i is new rotated by -90*i degrees
// about old.
var elbowNotch = [Count][Count][4]Direction{
	// old = +x
	{
		{xx, xx, xx, xx},
		{xx, xx, xx, xx},
		{py, mz, my, pz},
		{my, pz, py, mz},
		{pz, py, mz, my},
		{mz, my, pz, py},
	},
	// old = -x
	{
		{xx, xx, xx, xx},
		{xx, xx, xx, xx},
		{py, pz, my, mz},
		{my, mz, py, pz},
		{pz, my, mz, py},
		{mz, py, pz, my},
	},
	// old = +y
	{
		{px, pz, mx, mz},
		{mx, mz, px, pz},
		{xx, xx, xx, xx},
		{xx, xx, xx, xx},
		{pz, mx, mz, px},
		{mz, px, pz, mx},
	},
	// old = -y
	{
		{px, mz, mx, pz},
		{mx, pz, px, mz},
		{xx, xx, xx, xx},
		{xx, xx, xx, xx},
		{pz, px, mz, mx},
		{mz, mx, pz, px},
	},
	// old = +z
	{
		{px, my, mx, py},
		{mx, py, px, my},
		{py, px, my, mx},
		{my, mx, py, px},
		{xx, xx, xx, xx},
		{xx, xx, xx, xx},
	},
	// old = -z
	{
		{px, py, mx, my},
		{mx, my, px, py},
		{py, mx, my, px},
		{my, px, py, mx},
		{xx, xx, xx, xx},
		{xx, xx, xx, xx},
	},
}

// defaultNotch[d] is where the seam of a +z primitive lands after aligning
// +z with d.
var defaultNotch = [Count]Direction{py, py, mz, pz, py, py}

// rotZ[old][new] is the rotation about z, in degrees, that points +y back
// along old once +z is aligned with new.
var rotZ = [Count][Count]float64{
	{0, 0, 90, 90, 90, -90},
	{0, 0, -90, -90, -90, 90},
	{180, 180, 0, 0, 180, 180},
	{0, 0, 0, 0, 0, 0},
	{-90, 90, 0, 180, 0, 0},
	{90, -90, 180, 0, 0, 0},
}

// undefinedAngle marks impossible alignNotchRot entries.
const undefinedAngle = 1000.0

// alignNotchRot[new][notch] is the rotation about z, in degrees, that moves
// the default seam of a primitive aligned with new onto notch.
var alignNotchRot = [Count][Count]float64{
	{undefinedAngle, undefinedAngle, 0, 180, 90, -90},
	{undefinedAngle, undefinedAngle, 0, 180, -90, 90},
	{-90, 90, undefinedAngle, undefinedAngle, 180, 0},
	{-90, 90, undefinedAngle, undefinedAngle, 0, 180},
	{-90, 90, 0, 180, undefinedAngle, undefinedAngle},
	{90, -90, 0, 180, undefinedAngle, undefinedAngle},
}

// alignPlusZ[d] is the axis and angle, in degrees, of the rotation taking +z
// onto d.
var alignPlusZ = [Count]struct {
	axis Axis
	deg  float64
}{
	{Y, 90},
	{Y, -90},
	{X, -90},
	{X, 90},
	{Y, 0},
	{Y, 180},
}

func pair(a, b Direction) bool {
	return a.Valid() && b.Valid()
}

// Turn returns the seam direction after a turn from -> to that entered
// with the given notch. It returns None for lookups no real turn produces:
// parallel directions, or a notch parallel to from.
func Turn(from, to, notch Direction) Direction {
	if !pair(from, to) || !notch.Valid() {
		return None
	}
	return notchTurn[from][to][notch]
}

// ElbowNotch returns the starting seam of elbow variant i for the turn
// from -> to, or None if the turn is not a 90 degree turn.
func ElbowNotch(from, to Direction, i int) Direction {
	if !pair(from, to) || i < 0 || i >= 4 {
		return None
	}
	return elbowNotch[from][to][i]
}

// ChooseElbow returns the index of the elbow variant whose starting seam
// matches notch, or -1 if none does.
func ChooseElbow(from, to, notch Direction) int {
	if !pair(from, to) {
		return -1
	}
	for i, n := range elbowNotch[from][to] {
		if n != None && n == notch {
			return i
		}
	}
	return -1
}

// DefaultNotch returns the seam of a primitive freshly aligned with d.
func DefaultNotch(d Direction) Direction {
	if !d.Valid() {
		return None
	}
	return defaultNotch[d]
}

// RotZ returns the z rotation, in degrees, that points +y back along from
// once +z has been aligned with to.
func RotZ(from, to Direction) float64 {
	if !pair(from, to) {
		return 0
	}
	return rotZ[from][to]
}

// AlignNotchRot returns the z rotation, in degrees, that moves the default
// seam of a primitive aligned with to onto notch. ok is false when notch is
// parallel to to.
func AlignNotchRot(to, notch Direction) (deg float64, ok bool) {
	if !pair(to, notch) {
		return 0, false
	}
	deg = alignNotchRot[to][notch]
	if deg == undefinedAngle {
		return 0, false
	}
	return deg, true
}

// AlignPlusZ returns the rotation taking +z onto d as an axis and an angle
// in degrees.
func AlignPlusZ(d Direction) (Axis, float64) {
	if !d.Valid() {
		return Z, 0
	}
	r := alignPlusZ[d]
	return r.axis, r.deg
}
