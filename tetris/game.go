package tetris

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

type Action string

const (
	MoveLeft    Action = "left"      // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"     // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"      // Moves the Tetromino one step down (soft drop).
	DropDown    Action = "drop"      // Drops the Tetromino down the stack and locks it.
	RotateRight Action = "rotatecw"  // Rotates the Tetromino clockwise.
	RotateLeft  Action = "rotateccw" // Rotates the Tetromino counter-clockwise.
	Hold        Action = "hold"      // Swaps the Tetromino with the held one.
	Pause       Action = "pause"     // Pauses the game, or resumes it if paused.
	Resume      Action = "resume"    // Resumes a paused game.
	Restart     Action = "restart"   // Starts a new game.
)

var actions = []Action{MoveLeft, MoveRight, MoveDown, DropDown, RotateRight, RotateLeft, Hold, Pause, Resume, Restart}

// ParseAction validates s as an Action.
func ParseAction(s string) (Action, error) {
	if !slices.Contains(actions, Action(s)) {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return Action(s), nil
}

// DefaultFrame is how much game time every tick of the ticker advances.
const DefaultFrame = 16 * time.Millisecond

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// request is anything the player asks the game to do.
type request struct {
	action     Action
	difficulty Difficulty
	mode       Mode
}

// Game runs a Tetris in its own goroutine. Ticks of the ticker and player
// actions are processed one at a time, and a snapshot is published on the
// update channel every time the game changes.
type Game struct {
	updateCh chan *Snapshot
	actionCh chan request
	doneCh   chan struct{}
	stopOnce sync.Once

	tetris *Tetris
	ticker Ticker
	frame  time.Duration
	logger *slog.Logger
}

func NewGame(o Options, l *slog.Logger) *Game {
	o = o.withDefaults()
	return NewConfigurableGame(newWrappedTicker(time.Hour), o.Frame, o, l)
}

// NewConfigurableGame returns a game driven by ticker where every tick is
// worth frame of game time.
func NewConfigurableGame(ticker Ticker, frame time.Duration, o Options, l *slog.Logger) *Game {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Game{
		updateCh: make(chan *Snapshot),
		actionCh: make(chan request),
		doneCh:   make(chan struct{}),
		tetris:   New(o, l),
		ticker:   ticker,
		frame:    frame,
		logger:   l,
	}
}

// Start publishes the initial state and starts processing ticks and
// actions until Stop is called.
func (g *Game) Start() {
	go g.listen()
}

// Stop ends the game loop and closes the update channel.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		g.ticker.Stop()
		close(g.doneCh)
	})
}

// GetUpdate returns the channel snapshots are published on.
func (g *Game) GetUpdate() <-chan *Snapshot { return g.updateCh }

func (g *Game) Action(a Action) { g.send(request{action: a}) }

func (g *Game) SetDifficulty(d Difficulty) { g.send(request{difficulty: d}) }

func (g *Game) SetMode(m Mode) { g.send(request{mode: m}) }

func (g *Game) send(r request) {
	select {
	case g.actionCh <- r:
	case <-g.doneCh:
	}
}

// Read returns a copy of the current state that's safe to read concurrently.
func (g *Game) Read() *Snapshot {
	g.tetris.mu.RLock()
	defer g.tetris.mu.RUnlock()
	return g.tetris.Snapshot()
}

func (g *Game) listen() {
	defer close(g.updateCh)
	if !g.publish() {
		return
	}
	g.ticker.Reset(g.frame)
	for {
		var changed bool
		select {
		case <-g.ticker.C():
			g.tetris.mu.Lock()
			changed = g.tetris.Advance(g.frame)
			g.tetris.mu.Unlock()
		case r := <-g.actionCh:
			g.tetris.mu.Lock()
			changed = g.apply(r)
			g.tetris.mu.Unlock()
		case <-g.doneCh:
			return
		}
		if changed && !g.publish() {
			return
		}
	}
}

func (g *Game) apply(r request) bool {
	switch {
	case r.difficulty != "":
		return g.tetris.SetDifficulty(r.difficulty)
	case r.mode != "":
		return g.tetris.SetMode(r.mode)
	}
	return g.tetris.Apply(r.action)
}

// publish sends a snapshot of the game to the update channel. It returns
// false if the game was stopped while waiting for a reader.
func (g *Game) publish() bool {
	g.tetris.mu.RLock()
	s := g.tetris.Snapshot()
	g.tetris.mu.RUnlock()
	select {
	case g.updateCh <- s:
		return true
	case <-g.doneCh:
		return false
	}
}
