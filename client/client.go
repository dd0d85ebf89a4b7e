// Package client is the terminal front end of the game: it maps key
// presses to game actions and renders every snapshot to the terminal.
package client

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/eiannone/keyboard"
	"github.com/vietluonghoang/TeWeGa/tetris"
)

type clientState int

const (
	lobby clientState = iota
	playing
	spectating
)

type state struct {
	current clientState
	mode    tetris.Mode
	mu      sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

func (s *state) getMode() tetris.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *state) setMode(m tetris.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// tetrisGame is a game the client can drive, local or remote.
type tetrisGame interface {
	Start()
	Stop()
	GetUpdate() <-chan *tetris.Snapshot
	Action(tetris.Action)
	SetDifficulty(tetris.Difficulty)
	SetMode(tetris.Mode)
}

type renderer interface {
	local(*tetris.Snapshot)
	lobby(message)
	session(string)
	reset()
}

type Client struct {
	newLocal  func() tetrisGame
	newRemote func() tetrisGame
	game      tetrisGame
	render    renderer
	options   *Options
	logger    *slog.Logger
	kbCh      <-chan keyboard.KeyEvent
	state     *state
}

type Options struct {
	NoGhost bool
	Address string
	Name    string
	// Spectate is the ID of a remote session to watch instead of playing.
	Spectate string
	Engine   tetris.Options
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := newRender(l, o.NoGhost, o.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Client{
		newLocal: func() tetrisGame { return tetris.NewGame(o.Engine, l) },
		newRemote: func() tetrisGame {
			return NewRemoteGame(o.Address, o.Spectate, l)
		},
		render:  r,
		options: o,
		logger:  l,
		kbCh:    kb,
		state:   &state{current: lobby, mode: o.Engine.Mode},
	}, nil
}

// Start shows the lobby, or the spectated game, and blocks until the
// player quits.
func (c *Client) Start() {
	if c.options.Spectate != "" {
		c.state.set(spectating)
		c.play(c.newRemote())
	} else {
		c.render.lobby(defaultLobby())
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go c.listenKB(&wg)
	wg.Wait()
	if c.game != nil {
		c.game.Stop()
	}
}

func (c *Client) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		switch c.state.get() {
		case lobby:
			switch event.Rune {
			case 'p':
				c.state.set(playing)
				c.play(c.newLocal())
			case 'o':
				c.state.set(playing)
				c.render.lobby(connecting())
				c.play(c.newRemote())
			case 'q':
				return
			}
		case spectating:
			if event.Rune == 'q' || event.Key == keyboard.KeyEsc {
				return
			}
		case playing:
			c.handlePlaying(event)
		}
	}
}

func (c *Client) handlePlaying(event keyboard.KeyEvent) {
	if a, ok := keyAction(event); ok {
		c.game.Action(a)
		return
	}
	switch event.Rune {
	case '1':
		c.game.SetDifficulty(tetris.Easy)
	case '2':
		c.game.SetDifficulty(tetris.Medium)
	case '3':
		c.game.SetDifficulty(tetris.Hard)
	case 'm':
		next := tetris.Classic
		if c.state.getMode() == tetris.Classic {
			next = tetris.Modern
		}
		c.game.SetMode(next)
	}
}

// keyAction maps a key press to the action it triggers while playing.
func keyAction(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e':
		return tetris.RotateRight, true
	case event.Rune == 'q':
		return tetris.RotateLeft, true
	case event.Key == keyboard.KeySpace:
		return tetris.DropDown, true
	case event.Rune == 'c':
		return tetris.Hold, true
	case event.Rune == 'p' || event.Key == keyboard.KeyEsc:
		return tetris.Pause, true
	case event.Rune == 'r':
		return tetris.Restart, true
	}
	return "", false
}

func (c *Client) play(g tetrisGame) {
	if c.game != nil {
		c.game.Stop()
	}
	c.game = g
	c.render.reset()
	g.Start()
	go c.listenTetris(g)
}

func (c *Client) listenTetris(g tetrisGame) {
	var last *tetris.Snapshot
	for u := range g.GetUpdate() {
		if last == nil {
			c.render.session(sessionID(g))
		}
		last = u
		c.state.setMode(u.Mode)
		c.render.local(u)
		if u.GameOver && c.state.get() == playing {
			c.logger.Info("game over", slog.Int("score", u.Score), slog.Int("lines", u.Lines), slog.Int("level", u.Level))
			c.state.set(lobby)
			c.render.lobby(gameOver(u.Score))
			g.Stop()
			return
		}
	}
	// the update channel closed without a game over: the game was stopped
	// or the remote session ended.
	if c.state.get() == playing {
		c.state.set(lobby)
		if last == nil {
			c.render.lobby(errorMessage())
			return
		}
		c.render.lobby(defaultLobby())
	}
}

// sessionID returns the ID of the remote session g plays, if any.
func sessionID(g tetrisGame) string {
	if r, ok := g.(interface{ Session() string }); ok {
		return r.Session()
	}
	return ""
}
