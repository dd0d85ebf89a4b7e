package tetris

// Cell is the value of a board position.
type Cell int8

const (
	// Empty is an unoccupied cell.
	Empty Cell = 0
	// Flashing marks a cell of a completed row while it flashes before removal.
	Flashing Cell = -1
)

// Shape returns the tetromino that locked this cell, or "" for empty and
// clearing cells.
func (c Cell) Shape() Shape {
	if c < 1 || int(c) > len(Shapes) {
		return ""
	}
	return Shapes[c-1]
}

func (c Cell) occupied() bool { return c > Empty }

// Board is the playfield. Row 0 is the top and Rows-1 the bottom, columns
// run 0 > Cols-1 left to right.
//
// 		0 1 2 3 4 5 6 7 8 9
// 0	X X X X X X X X X X
// 1	X X X X X X X X X X
// ..
// 19	X X X O O O X X X X
type Board struct {
	Cells [][]Cell
}

// NewBoard returns an empty board of the given size.
func NewBoard(rows, cols int) *Board {
	b := &Board{Cells: make([][]Cell, rows)}
	for i := range b.Cells {
		b.Cells[i] = make([]Cell, cols)
	}
	return b
}

// Rows returns the height of the board.
func (b *Board) Rows() int { return len(b.Cells) }

// Cols returns the width of the board.
func (b *Board) Cols() int {
	if len(b.Cells) == 0 {
		return 0
	}
	return len(b.Cells[0])
}

// CanPlace reports whether grid fits with its top-left corner at x, y.
//
// Blocks above the board (negative row) are always allowed: the spawn area
// is never collidable. Any other block must be inside the board and on a
// cell that isn't occupied.
func (b *Board) CanPlace(grid [][]bool, x, y int) bool {
	for ir, r := range grid {
		for ic, c := range r {
			if !c {
				continue
			}
			py := y + ir
			px := x + ic
			if py < 0 {
				continue
			}
			if px < 0 || px >= b.Cols() || py >= b.Rows() || b.Cells[py][px].occupied() {
				return false
			}
		}
	}
	return true
}

// Merge writes t's blocks into the board and returns how many of them fell
// outside of it and were dropped.
func (b *Board) Merge(t *Tetromino) int {
	var dropped int
	v := t.Shape.Cell()
	for ir, r := range t.Grid {
		for ic, c := range r {
			if !c {
				continue
			}
			py := t.Y + ir
			px := t.X + ic
			if py < 0 || py >= b.Rows() || px < 0 || px >= b.Cols() {
				dropped++
				continue
			}
			b.Cells[py][px] = v
		}
	}
	return dropped
}

// CompletedRows returns the indexes of every full row, top to bottom.
func (b *Board) CompletedRows() []int {
	var rows []int
	for i, r := range b.Cells {
		full := true
		for _, c := range r {
			if c == Empty {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, i)
		}
	}
	return rows
}

// ClearRows removes the given rows and inserts as many empty rows at the
// top. The remaining rows keep their relative order.
func (b *Board) ClearRows(rows []int) {
	if len(rows) == 0 {
		return
	}
	remove := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r >= 0 && r < b.Rows() {
			remove[r] = true
		}
	}
	kept := make([][]Cell, 0, b.Rows())
	for i, r := range b.Cells {
		if !remove[i] {
			kept = append(kept, r)
		}
	}
	cells := make([][]Cell, 0, b.Rows())
	for range b.Rows() - len(kept) {
		cells = append(cells, make([]Cell, b.Cols()))
	}
	b.Cells = append(cells, kept...)
}

// setRow overwrites every cell of row i with v.
func (b *Board) setRow(i int, v Cell) {
	for x := range b.Cells[i] {
		b.Cells[i][x] = v
	}
}

// occupiedOrOut reports whether x, y is outside the board or holds a block.
func (b *Board) occupiedOrOut(x, y int) bool {
	if x < 0 || x >= b.Cols() || y < 0 || y >= b.Rows() {
		return true
	}
	return b.Cells[y][x].occupied()
}

func (b *Board) copy() *Board {
	c := &Board{Cells: make([][]Cell, len(b.Cells))}
	for i := range b.Cells {
		c.Cells[i] = make([]Cell, len(b.Cells[i]))
		copy(c.Cells[i], b.Cells[i])
	}
	return c
}
