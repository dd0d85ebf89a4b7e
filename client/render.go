package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/vietluonghoang/TeWeGa/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H"  // Reset cursor position to 0,0
	clearScreen = "\033[2J" // Erase the whole screen

	ghostCell    = "[]"
	clearingCell = "\x1b[1m==\x1b[0m"
	emptyCell    = "  "

	defaultRows = 20
	defaultCols = 10
	boxWidth    = 38
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Shape]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

type templateData struct {
	Local   *tetris.Snapshot
	Name    string
	NoGhost bool
	// Session is the ID of the remote session on screen, empty when local.
	Session string
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData

	mu sync.Mutex
}

func newRender(l *slog.Logger, ng bool, name string) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   os.Stdout,
		logger:   l,
		template: tmp,
		templateData: &templateData{
			Name:    name,
			NoGhost: ng,
		},
	}, nil
}

// message is the content of the box drawn over the board in the lobby.
type message []string

func defaultLobby() message {
	return message{"Welcome to Terminal Tetris", "", "(p)lay   (o)nline   (q)uit"}
}

func gameOver(score int) message {
	return message{"Game Over :)", fmt.Sprintf("score %d", score), "(p)lay   (o)nline   (q)uit"}
}

func connecting() message {
	return message{"connecting to server..."}
}

func errorMessage() message {
	return message{"something went wrong :(", "", "(p)lay   (o)nline   (q)uit"}
}

func (r *render) lobby(m message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.templateData.Local == nil {
		r.execute()
	}
	for i, l := range box(m) {
		fmt.Fprintf(r.writer, "\033[%d;9H%s\r\n", 10+i, l)
	}
}

func (r *render) local(s *tetris.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateData.Local = s
	r.execute()
}

func (r *render) session(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateData.Session = id
}

func (r *render) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateData.Local = nil
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) execute() {
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"localStack": localStack,
		"sidePanel":  sidePanel,
		"border":     border,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout. Lines are
	// erased to their end first so longer text from a previous frame doesn't linger.
	l := strings.ReplaceAll(layout, "\n", "\033[K\r\n")
	l = strings.ReplaceAll(l, "Terminal Tetris", "\033[1mTerminal Tetris\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func box(m message) []string {
	edge := "+" + strings.Repeat("-", boxWidth) + "+"
	lines := []string{edge}
	for _, l := range m {
		if len(l) > boxWidth {
			l = l[:boxWidth]
		}
		left := (boxWidth - len(l)) / 2
		lines = append(lines, "|"+strings.Repeat(" ", left)+l+strings.Repeat(" ", boxWidth-left-len(l))+"|")
	}
	return append(lines, edge)
}

func block(s tetris.Shape) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[s])
}

func emptyStack(rows, cols int) [][]string {
	rendered := make([][]string, rows)
	for y := range rendered {
		rendered[y] = make([]string, cols)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
		}
	}
	return rendered
}

func localStack(t *templateData) [][]string {
	if t == nil || t.Local == nil || len(t.Local.Board) == 0 {
		return emptyStack(defaultRows, defaultCols)
	}
	s := t.Local
	rendered := emptyStack(len(s.Board), len(s.Board[0]))

	// renders the stack
	for y, row := range s.Board {
		for x, c := range row {
			switch {
			case c == tetris.Flashing:
				rendered[y][x] = clearingCell
			case c != tetris.Empty:
				rendered[y][x] = block(c.Shape())
			}
		}
	}

	// renders the ghost, then the current tetromino on top of it. Rows above
	// the board are not drawn.
	p := s.Tetromino
	if p == nil {
		return rendered
	}
	set := func(x, y int, v string) {
		if y >= 0 && y < len(rendered) && x >= 0 && x < len(rendered[y]) {
			rendered[y][x] = v
		}
	}
	if !t.NoGhost {
		eachBlock(p, func(ix, iy int) { set(p.X+ix, p.GhostY+iy, ghostCell) })
	}
	eachBlock(p, func(ix, iy int) { set(p.X+ix, p.Y+iy, block(p.Shape)) })
	return rendered
}

func eachBlock(p *tetris.Tetromino, fn func(x, y int)) {
	for iy, row := range p.Grid {
		for ix, v := range row {
			if v {
				fn(ix, iy)
			}
		}
	}
}

// piecePreview renders the top two rows of p in its spawn rotation, which
// hold every block of every shape.
func piecePreview(p *tetris.Tetromino) []string {
	rendered := []string{strings.Repeat(emptyCell, 4), strings.Repeat(emptyCell, 4)}
	if p == nil {
		return rendered
	}
	g := tetris.ShapeGrid(p.Shape, 0)
	for i := range rendered {
		row := []string{emptyCell, emptyCell, emptyCell, emptyCell}
		if i < len(g) {
			for iv, v := range g[i] {
				if v && iv < len(row) {
					row[iv] = block(p.Shape)
				}
			}
		}
		rendered[i] = strings.Join(row, "")
	}
	return rendered
}

// sidePanel returns the text printed to the right of every board row.
func sidePanel(t *templateData) []string {
	rows := defaultRows
	if t != nil && t.Local != nil && len(t.Local.Board) > 0 {
		rows = len(t.Local.Board)
	}
	lines := make([]string, 0, rows)
	if t == nil || t.Local == nil {
		return append(lines, make([]string, rows)...)
	}
	s := t.Local

	status := ""
	switch {
	case s.GameOver:
		status = "GAME OVER"
	case s.Paused:
		status = "PAUSED"
	}
	combo := fmt.Sprintf("Combo  %d", s.Combo)
	if s.BackToBack {
		combo += "  B2B"
	}

	next := piecePreview(s.Next)
	held := piecePreview(s.Held)
	lines = append(lines,
		"Next",
		next[0],
		next[1],
		"",
		"Hold",
		held[0],
		held[1],
		"",
		fmt.Sprintf("Score  %d", s.Score),
		fmt.Sprintf("Lines  %d", s.Lines),
		fmt.Sprintf("Level  %d", s.Level),
		combo,
		"Time   "+clock(s.Elapsed),
		"",
		fmt.Sprintf("Speed  %s", s.Difficulty),
		fmt.Sprintf("Mode   %s", s.Mode),
		"",
		status,
		t.Name,
		t.Session,
	)
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines[:rows]
}

func clock(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func border(t *templateData) string {
	cols := defaultCols
	if t != nil && t.Local != nil && len(t.Local.Board) > 0 {
		cols = len(t.Local.Board[0])
	}
	return strings.Repeat("-", cols*2)
}
