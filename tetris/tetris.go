// Package tetris contains the logic of the game
// based on https://tetris.wiki/Tetris_Guideline
package tetris

import (
	"log/slog"
	"sync"
	"time"
)

// Phase is the state of the game state machine.
type Phase string

const (
	Spawning Phase = "spawning" // a new tetromino is being placed.
	Falling  Phase = "falling"  // the tetromino falls with gravity.
	Locking  Phase = "locking"  // the tetromino rests, waiting for the lock delay.
	Clearing Phase = "clearing" // completed rows blink before being removed.
	GameOver Phase = "game_over"
	Paused   Phase = "paused"
)

// Tetris holds the whole state of one game. It is not safe for concurrent
// use on its own: Game serializes access to it.
type Tetris struct {
	mu sync.RWMutex

	Board     *Board
	Tetromino *Tetromino
	Next      *Tetromino
	Held      *Tetromino
	Score
	Phase      Phase
	Difficulty Difficulty
	Mode       Mode
	// Elapsed is the time played, pauses excluded.
	Elapsed time.Duration

	opts      Options
	logger    *slog.Logger
	newSource func() source
	source    source
	resume    Phase         // phase to go back to when unpausing
	interval  time.Duration // current drop interval
	gravity   time.Duration // time accumulated towards the next row
	lockTimer time.Duration
	clear     clearing
}

// clearing is the progress of the row clear animation.
type clearing struct {
	rows  []int
	saved [][]Cell
	spin  Spin
	step  int
	timer time.Duration
}

// New returns a game ready to play with its first tetromino spawned.
func New(o Options, l *slog.Logger) *Tetris {
	o = o.withDefaults()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	t := &Tetris{
		opts:       o,
		logger:     l,
		Difficulty: o.Difficulty,
		Mode:       o.Mode,
		newSource:  func() source { return newBag(o.Seed) },
	}
	t.reset()
	return t
}

// Restart throws the current game away and starts a new one with the same
// difficulty and mode.
func (t *Tetris) Restart() {
	t.reset()
	t.logger.Debug("game restarted")
}

func (t *Tetris) reset() {
	t.Board = NewBoard(t.opts.Rows, t.opts.Cols)
	t.Score = newScore()
	t.Held = nil
	t.Elapsed = 0
	t.gravity, t.lockTimer = 0, 0
	t.clear = clearing{}
	t.source = t.newSource()
	t.interval = t.opts.dropInterval(t.Difficulty, t.Level)
	t.Next = newTetromino(t.source.draw(), t.opts.Cols)
	t.spawn()
}

// Advance moves the game forward by dt: gravity while falling, the lock
// delay while resting and the blinking of completed rows. It reports
// whether anything visible changed. Nothing happens while paused or over.
func (t *Tetris) Advance(dt time.Duration) bool {
	switch t.Phase {
	case Falling, Locking, Clearing:
	default:
		return false
	}
	t.Elapsed += dt

	switch t.Phase {
	case Falling:
		t.gravity += dt
		var moved bool
		for t.gravity >= t.interval {
			t.gravity -= t.interval
			if !t.fall() {
				t.startLocking()
				return true
			}
			moved = true
		}
		return moved
	case Locking:
		if t.canFall() {
			t.Phase = Falling
			t.lockTimer = 0
			return true
		}
		t.lockTimer += dt
		if t.lockTimer >= t.opts.LockDelay {
			t.lock()
			return true
		}
	case Clearing:
		return t.animate(dt)
	}
	return false
}

// Apply runs a player action and reports whether it changed the game.
// Every action but Pause, Resume and Restart is ignored while the game is
// paused or over.
func (t *Tetris) Apply(a Action) bool {
	switch a {
	case Restart:
		t.Restart()
		return true
	case Pause:
		if t.Phase == Paused {
			return t.unpause()
		}
		return t.pause()
	case Resume:
		return t.unpause()
	}

	if t.Phase == GameOver || t.Phase == Paused || t.Tetromino == nil {
		return false
	}
	switch a {
	case MoveLeft:
		return t.shift(-1)
	case MoveRight:
		return t.shift(1)
	case MoveDown:
		return t.softDrop()
	case DropDown:
		return t.hardDrop()
	case RotateRight:
		return t.turn(true)
	case RotateLeft:
		return t.turn(false)
	case Hold:
		return t.hold()
	}
	return false
}

// SetDifficulty switches the speed tier. The drop interval is recomputed
// for the current level.
func (t *Tetris) SetDifficulty(d Difficulty) bool {
	if t.Phase == GameOver || t.Phase == Paused {
		return false
	}
	if _, err := ParseDifficulty(string(d)); err != nil {
		t.logger.Warn("ignoring difficulty", slog.String("error", err.Error()))
		return false
	}
	t.Difficulty = d
	t.interval = t.opts.dropInterval(d, t.Level)
	return true
}

// SetMode switches the scoring rules.
func (t *Tetris) SetMode(m Mode) bool {
	if t.Phase == GameOver || t.Phase == Paused {
		return false
	}
	if _, err := ParseMode(string(m)); err != nil {
		t.logger.Warn("ignoring mode", slog.String("error", err.Error()))
		return false
	}
	t.Mode = m
	return true
}

func (t *Tetris) pause() bool {
	if t.Phase == GameOver || t.Phase == Paused {
		return false
	}
	t.resume = t.Phase
	t.Phase = Paused
	return true
}

func (t *Tetris) unpause() bool {
	if t.Phase != Paused {
		return false
	}
	t.Phase = t.resume
	return true
}

// spawn moves the next tetromino into play and draws a new next one.
func (t *Tetris) spawn() {
	p := t.Next
	t.Next = newTetromino(t.source.draw(), t.opts.Cols)
	t.place(p)
}

// place puts p in play at its spawn position. The game is over if it
// doesn't fit there.
func (t *Tetris) place(p *Tetromino) {
	t.Phase = Spawning
	t.Tetromino = p
	t.gravity, t.lockTimer = 0, 0
	if !t.Board.CanPlace(p.Grid, p.X, p.Y) {
		t.gameOver("spawn position is blocked")
		return
	}
	t.Phase = Falling
}

func (t *Tetris) gameOver(reason string) {
	t.Phase = GameOver
	t.logger.Info("game over",
		slog.String("reason", reason),
		slog.Int("score", t.Points),
		slog.Int("lines", t.Lines),
		slog.Int("level", t.Level),
	)
}

func (t *Tetris) canFall() bool {
	p := t.Tetromino
	return p != nil && t.Board.CanPlace(p.Grid, p.X, p.Y+1)
}

func (t *Tetris) fall() bool {
	if !t.canFall() {
		return false
	}
	t.Tetromino.Y++
	return true
}

func (t *Tetris) startLocking() {
	t.Phase = Locking
	t.lockTimer = 0
	t.gravity = 0
}

// moved goes back to falling when a resting tetromino was moved over a gap.
func (t *Tetris) moved() {
	if t.Phase == Locking && t.canFall() {
		t.Phase = Falling
		t.lockTimer = 0
	}
}

func (t *Tetris) shift(dx int) bool {
	p := t.Tetromino
	if !t.Board.CanPlace(p.Grid, p.X+dx, p.Y) {
		return false
	}
	p.X += dx
	t.moved()
	return true
}

func (t *Tetris) turn(cw bool) bool {
	if !rotate(t.Board, t.Tetromino, cw) {
		return false
	}
	t.moved()
	return true
}

func (t *Tetris) softDrop() bool {
	if t.fall() {
		t.gravity = 0
		return true
	}
	if t.Phase == Falling {
		t.startLocking()
		return true
	}
	return false
}

// hardDrop drops the tetromino down the stack and locks it without waiting
// for the lock delay.
func (t *Tetris) hardDrop() bool {
	for t.fall() {
	}
	t.lock()
	return true
}

func (t *Tetris) hold() bool {
	p := t.Tetromino
	if !p.CanHold {
		return false
	}
	var next *Tetromino
	if t.Held == nil {
		next = t.Next
		t.Next = newTetromino(t.source.draw(), t.opts.Cols)
	} else {
		next = newTetromino(t.Held.Shape, t.opts.Cols)
	}
	t.Held = newTetromino(p.Shape, t.opts.Cols)
	next.CanHold = false
	t.place(next)
	return true
}

// lock transfers the tetromino to the board. A tetromino that locks with
// its anchor above the board ends the game.
func (t *Tetris) lock() {
	p := t.Tetromino
	t.Tetromino = nil
	if p.Y < 0 {
		t.Board.Merge(p)
		t.gameOver("tetromino locked above the board")
		return
	}

	spin := detectSpin(t.Board, p)
	if n := t.Board.Merge(p); n > 0 {
		t.logger.Error("tetromino merged outside of the board",
			slog.String("shape", string(p.Shape)),
			slog.Int("x", p.X),
			slog.Int("y", p.Y),
			slog.Int("dropped", n),
		)
	}

	rows := t.Board.CompletedRows()
	if len(rows) == 0 {
		t.award(0, spin)
		t.spawn()
		return
	}

	t.clear = clearing{rows: rows, spin: spin}
	for _, r := range rows {
		t.clear.saved = append(t.clear.saved, append([]Cell(nil), t.Board.Cells[r]...))
	}
	t.Phase = Clearing
	if t.opts.flashInterval() == 0 {
		t.finishClear()
		return
	}
	t.clear.step = 1
	t.flash(true)
}

// animate advances the row clear animation. Completed rows alternate
// between the clearing marker and their blocks every flash interval; once
// every toggle has played they are removed.
func (t *Tetris) animate(dt time.Duration) bool {
	c := &t.clear
	c.timer += dt
	interval := t.opts.flashInterval()
	var changed bool
	for c.timer >= interval {
		c.timer -= interval
		if c.step >= t.opts.FlashCount*2 {
			t.finishClear()
			return true
		}
		c.step++
		t.flash(c.step%2 == 1)
		changed = true
	}
	return changed
}

func (t *Tetris) flash(on bool) {
	for i, r := range t.clear.rows {
		if on {
			t.Board.setRow(r, Flashing)
			continue
		}
		copy(t.Board.Cells[r], t.clear.saved[i])
	}
}

func (t *Tetris) finishClear() {
	c := t.clear
	t.clear = clearing{}
	t.Board.ClearRows(c.rows)
	t.award(len(c.rows), c.spin)
	t.spawn()
}

func (t *Tetris) award(lines int, spin Spin) {
	pts := t.Score.award(lines, spin, t.Mode, t.Difficulty.Multiplier())
	if pts > 0 {
		t.logger.Debug("scored",
			slog.Int("lines", lines),
			slog.Int("spin", int(spin)),
			slog.Int("points", pts),
			slog.Int("combo", t.Combo),
		)
	}
	if n := t.Score.levelUp(t.opts.LinesPerLevel); n > 0 {
		t.interval = t.opts.dropInterval(t.Difficulty, t.Level)
		t.logger.Debug("level up", slog.Int("level", t.Level), slog.Duration("interval", t.interval))
	}
}
