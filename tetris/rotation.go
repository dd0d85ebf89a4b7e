package tetris

// offset is an x, y adjustment tried when a rotation collides.
type offset struct{ x, y int }

// kicks are tried in order after the rotated shape fails at its current
// position: sideways first, then up (negative y), then down.
var kicks = []offset{
	{-1, 0}, {1, 0},
	{0, -1}, {-1, -1}, {1, -1},
	{0, 1}, {-1, 1}, {1, 1},
}

// longKicks extend kicks for the I tetromino, whose 4x4 box can need up to
// three cells to clear a wall or the floor.
var longKicks = append(append([]offset{}, kicks...),
	offset{-2, 0}, offset{2, 0}, offset{0, -2}, offset{0, 2},
	offset{-3, 0}, offset{3, 0}, offset{0, -3}, offset{0, 3},
)

func kickTable(s Shape) []offset {
	if s == I {
		return longKicks
	}
	return kicks
}

// rotate turns t one state clockwise (cw) or counter-clockwise, trying the
// kick table when the rotated shape doesn't fit where t is. It reports
// whether the rotation happened; when it didn't, t is left untouched.
func rotate(b *Board, t *Tetromino, cw bool) bool {
	n := States(t.Shape)
	if n < 2 {
		// the O shape doesn't rotate.
		return false
	}
	next := (t.Rotation + 1) % n
	if !cw {
		next = (t.Rotation + n - 1) % n
	}
	candidate := ShapeGrid(t.Shape, next)

	if b.CanPlace(candidate, t.X, t.Y) {
		t.Grid, t.Rotation = candidate, next
		return true
	}
	for _, k := range kickTable(t.Shape) {
		if b.CanPlace(candidate, t.X+k.x, t.Y+k.y) {
			t.Grid, t.Rotation = candidate, next
			t.X += k.x
			t.Y += k.y
			return true
		}
	}
	return false
}
