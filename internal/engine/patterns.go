package engine

// FreeCell is the center of the 5x5 card. It is always satisfied and its mark
// cannot be toggled.
const FreeCell = 12

// Each game type is a fixed, ordered list of winning orientations. An
// orientation is the set of cell indices (0..24) that must all be satisfied.
// Bit i of a satisfied/claimed mask refers to orientation i of that list.
var orientations = [numGameTypes][][]int{
	GameTraditional: {
		// rows
		{0, 1, 2, 3, 4},
		{5, 6, 7, 8, 9},
		{10, 11, 12, 13, 14},
		{15, 16, 17, 18, 19},
		{20, 21, 22, 23, 24},
		// columns
		{0, 5, 10, 15, 20},
		{1, 6, 11, 16, 21},
		{2, 7, 12, 17, 22},
		{3, 8, 13, 18, 23},
		{4, 9, 14, 19, 24},
		// diagonals
		{0, 6, 12, 18, 24},
		{4, 8, 12, 16, 20},
	},
	GameFourCorners: {
		{0, 4, 20, 24},
	},
	GamePostageStamp: {
		// 2x2 stamp in each corner
		{0, 1, 5, 6},
		{3, 4, 8, 9},
		{15, 16, 20, 21},
		{18, 19, 23, 24},
	},
	GameCoverAll: {
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
	},
	GameX: {
		{0, 4, 6, 8, 12, 16, 18, 20, 24},
	},
	GameY: {
		{0, 4, 6, 8, 12, 17, 22},
	},
	GameFrameOutside: {
		{0, 1, 2, 3, 4, 5, 9, 10, 14, 15, 19, 20, 21, 22, 23, 24},
	},
	GameFrameInside: {
		{6, 7, 8, 11, 13, 16, 17, 18},
	},
}

// Orientations returns the winning orientations for a game type. The returned
// slices are shared; callers must not mutate them.
func Orientations(g GameType) [][]int {
	if g < 0 || g >= numGameTypes {
		return nil
	}
	return orientations[g]
}

// OrientationCount reports how many winning orientations a game type has.
// Used for cyclic pattern highlighting; only traditional and postage stamp
// have more than one.
func OrientationCount(g GameType) int {
	return len(Orientations(g))
}

// cellSatisfied reports whether a single cell counts toward a pattern: the
// FREE cell always does, any other cell needs its mark set and its face
// number called.
func (g *Game) cellSatisfied(c *Card, idx int) bool {
	if idx < 0 || idx >= 25 {
		return false
	}
	if idx == FreeCell {
		return true
	}
	if !c.Marks[idx] {
		return false
	}
	n := c.Numbers[idx]
	if n < 1 || n > MaxNumber {
		return false
	}
	return g.called[n]
}

// SatisfiedMask evaluates every orientation of the game type independently.
// Bit i is set iff orientation i is fully satisfied.
func (g *Game) SatisfiedMask(c *Card, gt GameType) uint16 {
	var mask uint16
	for i, cells := range Orientations(gt) {
		ok := true
		for _, idx := range cells {
			if !g.cellSatisfied(c, idx) {
				ok = false
				break
			}
		}
		if ok {
			mask |= 1 << i
		}
	}
	return mask
}
