package tetris

import (
	"fmt"
	"time"
)

// Difficulty is a named speed tier. It sets the starting drop interval and
// the multiplier applied to every score increment.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var difficulties = map[Difficulty]struct {
	interval   time.Duration
	multiplier float64
}{
	Easy:   {800 * time.Millisecond, 1},
	Medium: {500 * time.Millisecond, 1.5},
	Hard:   {250 * time.Millisecond, 2},
}

// ParseDifficulty validates s as a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	if _, ok := difficulties[Difficulty(s)]; !ok {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return Difficulty(s), nil
}

// Interval is the drop interval at level 1.
func (d Difficulty) Interval() time.Duration { return difficulties[d].interval }

// Multiplier scales every score increment.
func (d Difficulty) Multiplier() float64 { return difficulties[d].multiplier }

// Mode selects the scoring rules.
type Mode string

const (
	// Modern scores T-spins, combos and back-to-back clears.
	Modern Mode = "modern"
	// Classic only scores the line count.
	Classic Mode = "classic"
)

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Modern, Classic:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Options configures a game. Zero fields take their default from
// DefaultOptions, except FlashCount and RowClearDelay: zero there turns the
// row clear animation off.
type Options struct {
	Rows, Cols int
	// LockDelay is the grace period a piece gets once it can't fall.
	LockDelay time.Duration
	// LinesPerLevel is how many lines each level takes.
	LinesPerLevel int
	// FlashCount is how many times completed rows blink before removal.
	FlashCount int
	// RowClearDelay is the total duration of the blinking.
	RowClearDelay time.Duration
	// IntervalStep is taken off the drop interval on every level up
	// until it reaches MinInterval.
	IntervalStep time.Duration
	MinInterval  time.Duration
	Difficulty   Difficulty
	Mode         Mode
	// Seed feeds the piece randomizer. 0 picks one from the clock.
	Seed uint64
	// Frame is the game time between two ticks of a running Game.
	Frame time.Duration
}

// DefaultOptions returns the standard 20x10 game.
func DefaultOptions() Options {
	return Options{
		Rows:          20,
		Cols:          10,
		LockDelay:     200 * time.Millisecond,
		LinesPerLevel: 10,
		FlashCount:    4,
		RowClearDelay: 320 * time.Millisecond,
		IntervalStep:  50 * time.Millisecond,
		MinInterval:   100 * time.Millisecond,
		Difficulty:    Easy,
		Mode:          Modern,
		Frame:         DefaultFrame,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Rows <= 0 {
		o.Rows = d.Rows
	}
	if o.Cols <= 0 {
		o.Cols = d.Cols
	}
	if o.LockDelay <= 0 {
		o.LockDelay = d.LockDelay
	}
	if o.LinesPerLevel <= 0 {
		o.LinesPerLevel = d.LinesPerLevel
	}
	if o.FlashCount < 0 {
		o.FlashCount = 0
	}
	if o.RowClearDelay < 0 {
		o.RowClearDelay = 0
	}
	if o.IntervalStep <= 0 {
		o.IntervalStep = d.IntervalStep
	}
	if o.MinInterval <= 0 {
		o.MinInterval = d.MinInterval
	}
	if o.Frame <= 0 {
		o.Frame = d.Frame
	}
	if _, ok := difficulties[o.Difficulty]; !ok {
		o.Difficulty = d.Difficulty
	}
	if _, err := ParseMode(string(o.Mode)); err != nil {
		o.Mode = d.Mode
	}
	return o
}

// dropInterval returns how long a piece takes to fall one row at level for
// difficulty d. Every level above 1 shortens it by IntervalStep, never below
// MinInterval.
func (o Options) dropInterval(d Difficulty, level int) time.Duration {
	i := d.Interval() - time.Duration(level-1)*o.IntervalStep
	return max(i, o.MinInterval)
}

// flashInterval is the time between two toggles of the row clear animation.
func (o Options) flashInterval() time.Duration {
	if o.FlashCount == 0 {
		return 0
	}
	return o.RowClearDelay / time.Duration(o.FlashCount*2)
}
