package tetris

import "math"

// Spin classifies how a T tetromino was locked.
type Spin int

const (
	NoSpin Spin = iota
	MiniSpin
	FullSpin
)

var (
	lineScores     = [5]int{0, 100, 300, 500, 800}
	miniSpinScores = [4]int{100, 200, 400, 400}
	fullSpinScores = [4]int{400, 800, 1200, 1600}
)

// Score tracks the points and progress of a game.
type Score struct {
	Points int
	Lines  int
	Level  int
	// Combo counts consecutive locks that cleared at least one line.
	Combo int
	// BackToBack is set when the last line clear was a tetris or a T-spin.
	BackToBack bool
}

func newScore() Score { return Score{Level: 1} }

// award applies the outcome of a lock that cleared lines rows, returning
// the points added.
//
// Line clears score 100/300/500/800 for 1-4 rows. In Modern mode T-spins
// use their own tables, a tetris or T-spin clear right after another one is
// worth 1.5 times its base, and an ongoing combo adds 50 x combo x level.
// The sum is multiplied by the level and by the difficulty multiplier.
func (s *Score) award(lines int, spin Spin, mode Mode, multiplier float64) int {
	if mode != Modern {
		spin = NoSpin
	}
	lines = min(lines, 4)

	if lines == 0 {
		s.Combo = 0
		if spin == NoSpin {
			return 0
		}
		return s.add(float64(spinScore(spin, 0)), multiplier)
	}

	base := float64(lineScores[lines])
	qualifies := lines == 4 || spin != NoSpin
	if mode == Modern {
		if spin != NoSpin {
			base = float64(spinScore(spin, lines))
		}
		if qualifies && s.BackToBack {
			base *= 1.5
		}
		if s.Combo > 0 {
			base += float64(50 * s.Combo * s.Level)
		}
	}
	pts := s.add(base, multiplier)

	s.Combo++
	s.BackToBack = qualifies
	s.Lines += lines
	return pts
}

func (s *Score) add(base, multiplier float64) int {
	pts := int(math.Floor(base * float64(s.Level) * multiplier))
	s.Points += pts
	return pts
}

// levelUp raises the level once per linesPerLevel lines cleared and
// reports how many levels were gained.
func (s *Score) levelUp(linesPerLevel int) int {
	var gained int
	for s.Lines >= s.Level*linesPerLevel {
		s.Level++
		gained++
	}
	return gained
}

func spinScore(spin Spin, lines int) int {
	lines = min(lines, 3)
	if spin == MiniSpin {
		return miniSpinScores[lines]
	}
	return fullSpinScores[lines]
}

// frontCorners are the two corners of the T's 3x3 box on the side it
// points to, for each rotation state.
var frontCorners = [4][2]offset{
	{{0, 0}, {2, 0}},
	{{2, 0}, {2, 2}},
	{{0, 2}, {2, 2}},
	{{0, 0}, {0, 2}},
}

// detectSpin applies the three-corner rule to a T about to lock: three or
// more corners of its bounding box occupied or out of bounds make it a
// T-spin, a full one when both front corners are among them.
func detectSpin(b *Board, t *Tetromino) Spin {
	if t.Shape != T {
		return NoSpin
	}
	var filled int
	for _, c := range []offset{{0, 0}, {2, 0}, {0, 2}, {2, 2}} {
		if b.occupiedOrOut(t.X+c.x, t.Y+c.y) {
			filled++
		}
	}
	if filled < 3 {
		return NoSpin
	}
	for _, c := range frontCorners[t.Rotation%4] {
		if !b.occupiedOrOut(t.X+c.x, t.Y+c.y) {
			return MiniSpin
		}
	}
	return FullSpin
}
