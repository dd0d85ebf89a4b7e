package tetris

import "time"

// Snapshot is a copy of the game state that's safe to read concurrently
// and to keep around: nothing in it is shared with the running game.
type Snapshot struct {
	Board      [][]Cell
	Tetromino  *Tetromino
	Next       *Tetromino
	Held       *Tetromino
	Score      int
	Lines      int
	Level      int
	Combo      int
	BackToBack bool
	Elapsed    time.Duration
	Phase      Phase
	Paused     bool
	GameOver   bool
	Difficulty Difficulty
	Mode       Mode
	// ClearingRows lists the completed rows waiting to be removed.
	ClearingRows []int
}

// Snapshot copies the current state of the game.
func (t *Tetris) Snapshot() *Snapshot {
	s := &Snapshot{
		Board:        t.Board.copy().Cells,
		Tetromino:    t.Tetromino.copy(),
		Next:         t.Next.copy(),
		Held:         t.Held.copy(),
		Score:        t.Points,
		Lines:        t.Lines,
		Level:        t.Level,
		Combo:        t.Combo,
		BackToBack:   t.BackToBack,
		Elapsed:      t.Elapsed,
		Phase:        t.Phase,
		Paused:       t.Phase == Paused,
		GameOver:     t.Phase == GameOver,
		Difficulty:   t.Difficulty,
		Mode:         t.Mode,
		ClearingRows: append([]int(nil), t.clear.rows...),
	}
	if s.Tetromino != nil {
		s.Tetromino.GhostY = s.Tetromino.Y + t.dropDownDelta()
	}
	return s
}

// dropDownDelta returns how many rows the tetromino can fall.
func (t *Tetris) dropDownDelta() int {
	p := t.Tetromino
	var d int
	for t.Board.CanPlace(p.Grid, p.X, p.Y+d+1) {
		d++
	}
	return d
}
