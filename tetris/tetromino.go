package tetris

// Shape identifies one of the seven tetrominoes.
type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	S Shape = "S"
	Z Shape = "Z"
	J Shape = "J"
	L Shape = "L"
)

// Shapes lists every tetromino in color index order.
var Shapes = []Shape{I, O, T, S, Z, J, L}

// Cell returns the value a locked block of this shape takes on the board.
func (s Shape) Cell() Cell {
	for i, v := range Shapes {
		if v == s {
			return Cell(i + 1)
		}
	}
	return Empty
}

// rotations holds the canonical rotation states of every shape, indexed by
// rotation: 0 spawn, 1 clockwise (R), 2 reversed, 3 counter-clockwise (L).
// The O tetromino has a single state.
var rotations map[Shape][][][]bool

func init() {
	rotations = map[Shape][][][]bool{
		/*
			.	0 1 2 3		.	0 1 2 3		.	0 1 2 3		.	0 1 2 3
			0	X X X X		0	X X O X		0	X X X X		0	X O X X
			1	O O O O		1	X X O X		1	X X X X		1	X O X X
			2	X X X X		2	X X O X		2	O O O O		2	X O X X
			3	X X X X		3	X X O X		3	X X X X		3	X O X X
		*/
		I: {
			grid("....", "####", "....", "...."),
			grid("..#.", "..#.", "..#.", "..#."),
			grid("....", "....", "####", "...."),
			grid(".#..", ".#..", ".#..", ".#.."),
		},
		O: {
			grid("##", "##"),
		},
		/*
			.	0 1 2		.	0 1 2		.	0 1 2		.	0 1 2
			0	X O X		0	X O X		0	X X X		0	X O X
			1	O O O		1	X O O		1	O O O		1	O O X
			2	X X X		2	X O X		2	X O X		2	X O X
		*/
		T: {
			grid(".#.", "###", "..."),
			grid(".#.", ".##", ".#."),
			grid("...", "###", ".#."),
			grid(".#.", "##.", ".#."),
		},
		S: cycle(grid(".##", "##.", "...")),
		Z: cycle(grid("##.", ".##", "...")),
		J: cycle(grid("#..", "###", "...")),
		L: cycle(grid("..#", "###", "...")),
	}
}

// grid builds a shape matrix from rows where '#' is a block.
func grid(rows ...string) [][]bool {
	g := make([][]bool, len(rows))
	for i, r := range rows {
		g[i] = make([]bool, len(r))
		for j, c := range r {
			g[i][j] = c == '#'
		}
	}
	return g
}

// cycle returns the four clockwise rotation states starting at g.
func cycle(g [][]bool) [][][]bool {
	states := [][][]bool{g}
	for range 3 {
		states = append(states, rotateCW(states[len(states)-1]))
	}
	return states
}

func rotateCW(g [][]bool) [][]bool {
	size := len(g)
	r := make([][]bool, size)
	for i := range r {
		r[i] = make([]bool, size)
	}
	for ir, row := range g {
		col := size - ir - 1
		for ic, c := range row {
			r[ic][col] = c
		}
	}
	return r
}

// ShapeGrid returns the shape matrix of s at the given rotation state.
// The returned matrix is shared and must not be modified.
func ShapeGrid(s Shape, rotation int) [][]bool {
	states, ok := rotations[s]
	if !ok {
		return nil
	}
	return states[rotation%len(states)]
}

// States returns how many distinct rotation states s has.
func States(s Shape) int { return len(rotations[s]) }

// Tetromino is a piece on or above the board.
type Tetromino struct {
	// Grid is the shape matrix for the current rotation. Row 0 is the top.
	Grid [][]bool
	// X and Y anchor the top-left corner of Grid on the board.
	// Y is negative while the piece is above the visible board.
	X, Y     int
	Shape    Shape
	Rotation int
	// CanHold is true until the piece has been exchanged through hold.
	CanHold bool
	// GhostY is the Y the piece would rest at if dropped.
	GhostY int
}

// newTetromino returns a tetromino of shape s in its spawn rotation,
// positioned on a board cols wide: horizontally centered with its lowest
// block on row 0.
func newTetromino(s Shape, cols int) *Tetromino {
	t := &Tetromino{
		Grid:    ShapeGrid(s, 0),
		Shape:   s,
		CanHold: true,
	}
	t.X = (cols - len(t.Grid[0])) / 2
	t.Y = -bottomRow(t.Grid)
	return t
}

// bottomRow returns the index of the lowest grid row holding a block.
func bottomRow(g [][]bool) int {
	for i := len(g) - 1; i >= 0; i-- {
		for _, c := range g[i] {
			if c {
				return i
			}
		}
	}
	return 0
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	g := make([][]bool, len(t.Grid))
	for i := range t.Grid {
		g[i] = make([]bool, len(t.Grid[i]))
		copy(g[i], t.Grid[i])
	}
	c := *t
	c.Grid = g
	return &c
}
