package tetris

import (
	"log/slog"
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// sequence deals shapes in a fixed order, starting over when it runs out.
type sequence struct {
	shapes []Shape
	i      int
}

func (s *sequence) draw() Shape {
	shape := s.shapes[s.i%len(s.shapes)]
	s.i++
	return shape
}

// NewTestTetris creates a game with the default options where the
// tetrominoes are dealt from shapes, in order and over again.
func NewTestTetris(shapes ...Shape) *Tetris {
	if len(shapes) == 0 {
		shapes = []Shape{J}
	}
	t := New(DefaultOptions(), slog.New(slog.DiscardHandler))
	t.newSource = func() source { return &sequence{shapes: shapes} }
	t.reset()
	return t
}

// NewTestGame creates a game running t and returns it with a manual ticker.
// Every tick advances frame of game time.
func NewTestGame(t *Tetris, frame time.Duration) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return &Game{
		updateCh: make(chan *Snapshot),
		actionCh: make(chan request),
		doneCh:   make(chan struct{}),
		tetris:   t,
		ticker:   ticker,
		frame:    frame,
		logger:   slog.New(slog.DiscardHandler),
	}, ticker
}
