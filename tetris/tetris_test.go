package tetris

import (
	"reflect"
	"testing"
	"time"
)

func TestSpawn(t *testing.T) {
	tests := []struct {
		shape        Shape
		wantX, wantY int
	}{
		{I, 3, -1},
		{O, 4, -1},
		{T, 3, -1},
		{S, 3, -1},
		{Z, 3, -1},
		{J, 3, -1},
		{L, 3, -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			t.Parallel()
			tetris := NewTestTetris(tt.shape)
			if tetris.Phase != Falling {
				t.Errorf("wanted phase %q, got %q", Falling, tetris.Phase)
			}
			p := tetris.Tetromino
			if p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("wanted tetromino at %d,%d, got %d,%d", tt.wantX, tt.wantY, p.X, p.Y)
			}
			if !p.CanHold || p.Rotation != 0 {
				t.Errorf("wanted a holdable tetromino in spawn rotation, got %+v", p)
			}
			if tetris.Next == nil || tetris.Next.Shape != tt.shape {
				t.Errorf("wanted next tetromino to be %v, got %v", tt.shape, tetris.Next)
			}
		})
	}
}

func TestMoveActions(t *testing.T) {
	// Initial state of the test:
	//
	// 	.	Spawn Location		.	Shape
	// .	0 1 2 3 4 5 6 7 8 9		.	0 1 2
	// -1	X X X O X X X X X X		0	O X X
	// 0	X X X O O O X X X X		1	O O O
	// 1	X X X X X X X X X X		2	X X X
	tests := []struct {
		name         string
		action       Action
		updateStack  func(g *Tetris)
		wantChanged  bool
		wantGrid     [][]bool
		wantLocation []int // x, y
	}{
		{
			name:         "Move left unblocked",
			action:       MoveLeft,
			wantChanged:  true,
			wantLocation: []int{2, -1},
		},
		{
			name:   "Move left blocked",
			action: MoveLeft,
			updateStack: func(g *Tetris) {
				g.Board.Cells[0][2] = J.Cell()
			},
			wantLocation: []int{3, -1},
		},
		{
			name:         "Move right unblocked",
			action:       MoveRight,
			wantChanged:  true,
			wantLocation: []int{4, -1},
		},
		{
			name:   "Move right blocked",
			action: MoveRight,
			updateStack: func(g *Tetris) {
				g.Board.Cells[0][6] = J.Cell()
			},
			wantLocation: []int{3, -1},
		},
		{
			name:         "Move down unblocked",
			action:       MoveDown,
			wantChanged:  true,
			wantLocation: []int{3, 0},
		},
		{
			name:   "Move down blocked starts locking",
			action: MoveDown,
			updateStack: func(g *Tetris) {
				g.Board.Cells[1][3] = J.Cell()
			},
			wantChanged:  true,
			wantLocation: []int{3, -1},
		},
		{
			name:         "Rotate right when unblocked",
			action:       RotateRight,
			wantChanged:  true,
			wantLocation: []int{3, -1},
			wantGrid: [][]bool{
				{false, true, true},
				{false, true, false},
				{false, true, false},
			},
		},
		{
			name:         "Rotate left when unblocked",
			action:       RotateLeft,
			wantChanged:  true,
			wantLocation: []int{3, -1},
			wantGrid: [][]bool{
				{false, true, false},
				{false, true, false},
				{true, true, false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tetris := NewTestTetris(J)
			if tt.updateStack != nil {
				tt.updateStack(tetris)
			}
			if changed := tetris.Apply(tt.action); changed != tt.wantChanged {
				t.Errorf("wanted changed to be %t, got %t", tt.wantChanged, changed)
			}
			if tetris.Tetromino.X != tt.wantLocation[0] {
				t.Errorf("wanted tetromino's X to be %d, got %d", tt.wantLocation[0], tetris.Tetromino.X)
			}
			if tetris.Tetromino.Y != tt.wantLocation[1] {
				t.Errorf("wanted tetromino's Y to be %d, got %d", tt.wantLocation[1], tetris.Tetromino.Y)
			}
			if tt.wantGrid != nil {
				if !reflect.DeepEqual(tetris.Tetromino.Grid, tt.wantGrid) {
					t.Errorf("wanted %v, got %v", tt.wantGrid, tetris.Tetromino.Grid)
				}
			}
		})
	}
}

func TestHardDrop(t *testing.T) {
	tetris := NewTestTetris(J)
	if !tetris.Apply(DropDown) {
		t.Fatal("wanted hard drop to change the game")
	}
	want := NewBoard(20, 10)
	want.Cells[18][3] = J.Cell()
	want.Cells[19][3] = J.Cell()
	want.Cells[19][4] = J.Cell()
	want.Cells[19][5] = J.Cell()
	if !reflect.DeepEqual(tetris.Board, want) {
		t.Errorf("wanted %v, got %v", want.Cells, tetris.Board.Cells)
	}
	if tetris.Phase != Falling || tetris.Tetromino.Y != -1 {
		t.Errorf("wanted a new tetromino falling from the top, got %q at %d", tetris.Phase, tetris.Tetromino.Y)
	}
}

func TestGravity(t *testing.T) {
	tetris := NewTestTetris(J)
	if tetris.Advance(799 * time.Millisecond) {
		t.Error("wanted nothing to change before the drop interval")
	}
	if tetris.Tetromino.Y != -1 {
		t.Errorf("wanted Y to be -1, got %d", tetris.Tetromino.Y)
	}
	if !tetris.Advance(time.Millisecond) {
		t.Error("wanted the tetromino to fall")
	}
	if tetris.Tetromino.Y != 0 {
		t.Errorf("wanted Y to be 0, got %d", tetris.Tetromino.Y)
	}
	tetris.Advance(1600 * time.Millisecond)
	if tetris.Tetromino.Y != 2 {
		t.Errorf("wanted Y to be 2, got %d", tetris.Tetromino.Y)
	}
	if tetris.Elapsed != 2400*time.Millisecond {
		t.Errorf("wanted 2.4s elapsed, got %v", tetris.Elapsed)
	}
}

func TestLockDelay(t *testing.T) {
	t.Run("resting tetromino locks after the lock delay", func(t *testing.T) {
		tetris := NewTestTetris(J)
		tetris.Tetromino.Y = 18
		tetris.Advance(800 * time.Millisecond)
		if tetris.Phase != Locking {
			t.Fatalf("wanted phase %q, got %q", Locking, tetris.Phase)
		}
		tetris.Advance(199 * time.Millisecond)
		if tetris.Phase != Locking || tetris.Tetromino.Y != 18 {
			t.Fatalf("wanted the tetromino to still be locking at 18, got %q at %d", tetris.Phase, tetris.Tetromino.Y)
		}
		tetris.Advance(time.Millisecond)
		if tetris.Board.Cells[19][5] != J.Cell() {
			t.Errorf("wanted the tetromino to be in the stack, got %v", tetris.Board.Cells[19])
		}
		if tetris.Phase != Falling || tetris.Tetromino.Y != -1 {
			t.Errorf("wanted a new tetromino falling, got %q at %d", tetris.Phase, tetris.Tetromino.Y)
		}
	})

	t.Run("moving over a gap goes back to falling", func(t *testing.T) {
		// .	0 1 2 3 4 5 6 7 8 9
		// 17	X X X O X X X X X X
		// 18	X X X O O O X X X X
		// 19	B B B B B B X X X X
		tetris := NewTestTetris(J)
		for x := range 6 {
			tetris.Board.Cells[19][x] = L.Cell()
		}
		tetris.Tetromino.Y = 17
		tetris.Advance(800 * time.Millisecond)
		tetris.Advance(100 * time.Millisecond)
		for range 2 {
			tetris.Apply(MoveRight)
			if tetris.Phase != Locking {
				t.Fatalf("wanted phase %q while supported, got %q", Locking, tetris.Phase)
			}
		}
		tetris.Apply(MoveRight)
		if tetris.Phase != Falling {
			t.Fatalf("wanted phase %q over the gap, got %q", Falling, tetris.Phase)
		}
		tetris.Advance(800 * time.Millisecond)
		if tetris.Tetromino.Y != 18 {
			t.Errorf("wanted the tetromino to fall into the gap, got Y %d", tetris.Tetromino.Y)
		}
	})

	t.Run("moving while supported keeps the lock timer", func(t *testing.T) {
		tetris := NewTestTetris(J)
		tetris.Tetromino.Y = 18
		tetris.Advance(800 * time.Millisecond)
		tetris.Advance(100 * time.Millisecond)
		tetris.Apply(MoveRight)
		tetris.Advance(100 * time.Millisecond)
		if tetris.Board.Cells[19][6] != J.Cell() {
			t.Errorf("wanted the tetromino to lock after 200ms, got %v", tetris.Board.Cells[19])
		}
	})
}

func TestGameOver(t *testing.T) {
	t.Run("locking above the board ends the game", func(t *testing.T) {
		tetris := NewTestTetris(J)
		for x := 3; x <= 5; x++ {
			tetris.Board.Cells[1][x] = L.Cell()
		}
		tetris.Advance(800 * time.Millisecond)
		tetris.Advance(200 * time.Millisecond)
		if tetris.Phase != GameOver {
			t.Fatalf("wanted phase %q, got %q", GameOver, tetris.Phase)
		}
		if tetris.Apply(MoveLeft) || tetris.Apply(Pause) || tetris.Advance(time.Second) {
			t.Error("wanted the game to ignore actions and time once over")
		}
	})

	t.Run("locking inside the board doesn't end the game", func(t *testing.T) {
		tetris := NewTestTetris(J)
		for x := range 3 {
			tetris.Board.Cells[2][x] = L.Cell()
		}
		tetris.Tetromino.X, tetris.Tetromino.Y = 0, 0
		tetris.Advance(800 * time.Millisecond)
		tetris.Advance(200 * time.Millisecond)
		if tetris.Phase != Falling {
			t.Errorf("wanted phase %q, got %q", Falling, tetris.Phase)
		}
		if tetris.Board.Cells[0][0] != J.Cell() {
			t.Errorf("wanted the tetromino to be in the stack, got %v", tetris.Board.Cells[0])
		}
	})

	t.Run("blocked spawn ends the game", func(t *testing.T) {
		tetris := NewTestTetris(J)
		tetris.Board.Cells[0][4] = L.Cell()
		tetris.spawn()
		if tetris.Phase != GameOver {
			t.Errorf("wanted phase %q, got %q", GameOver, tetris.Phase)
		}
	})

	t.Run("restart starts a new game", func(t *testing.T) {
		tetris := NewTestTetris(J)
		tetris.Points = 1000
		tetris.Board.Cells[0][4] = L.Cell()
		tetris.spawn()
		if !tetris.Apply(Restart) {
			t.Fatal("wanted restart to change the game")
		}
		first := tetris.Snapshot()
		tetris.Apply(Restart)
		if !reflect.DeepEqual(first, tetris.Snapshot()) {
			t.Errorf("wanted restarting twice to give the same game")
		}
		if first.Phase != Falling || first.Score != 0 || first.Board[0][4] != Empty {
			t.Errorf("wanted a fresh game, got %+v", first)
		}
	})
}

func TestHold(t *testing.T) {
	tetris := NewTestTetris(J, L, S)
	tetris.Apply(MoveLeft)
	if !tetris.Apply(Hold) {
		t.Fatal("wanted the first hold to succeed")
	}
	if tetris.Held.Shape != J || tetris.Tetromino.Shape != L || tetris.Next.Shape != S {
		t.Fatalf("wanted held J, current L and next S, got %v %v %v", tetris.Held.Shape, tetris.Tetromino.Shape, tetris.Next.Shape)
	}
	if tetris.Tetromino.CanHold {
		t.Error("wanted the swapped in tetromino to not be holdable")
	}
	if tetris.Held.X != 3 || tetris.Held.Y != -1 {
		t.Errorf("wanted the held tetromino back at its spawn position, got %d,%d", tetris.Held.X, tetris.Held.Y)
	}

	if tetris.Apply(Hold) {
		t.Error("wanted the second hold to be ignored")
	}
	if tetris.Tetromino.Shape != L {
		t.Errorf("wanted current to still be L, got %v", tetris.Tetromino.Shape)
	}

	tetris.Apply(DropDown)
	if tetris.Tetromino.Shape != S || !tetris.Tetromino.CanHold {
		t.Fatalf("wanted a holdable S after locking, got %+v", tetris.Tetromino)
	}
	if !tetris.Apply(Hold) {
		t.Fatal("wanted hold to succeed after locking")
	}
	if tetris.Tetromino.Shape != J || tetris.Held.Shape != S || tetris.Next.Shape != J {
		t.Errorf("wanted held S, current J and next J, got %v %v %v", tetris.Held.Shape, tetris.Tetromino.Shape, tetris.Next.Shape)
	}
}

func TestPause(t *testing.T) {
	t.Run("paused game doesn't move", func(t *testing.T) {
		tetris := NewTestTetris(J)
		tetris.Advance(500 * time.Millisecond)
		if !tetris.Apply(Pause) || tetris.Phase != Paused {
			t.Fatalf("wanted phase %q, got %q", Paused, tetris.Phase)
		}
		if tetris.Advance(10 * time.Second) {
			t.Error("wanted time to be ignored while paused")
		}
		if tetris.Apply(MoveLeft) || tetris.SetDifficulty(Hard) {
			t.Error("wanted actions to be ignored while paused")
		}
		if !tetris.Apply(Pause) || tetris.Phase != Falling {
			t.Fatalf("wanted phase %q, got %q", Falling, tetris.Phase)
		}
		tetris.Advance(300 * time.Millisecond)
		if tetris.Tetromino.Y != 0 {
			t.Errorf("wanted Y to be 0, got %d", tetris.Tetromino.Y)
		}
		if tetris.Elapsed != 800*time.Millisecond {
			t.Errorf("wanted 800ms elapsed, got %v", tetris.Elapsed)
		}
	})

	t.Run("resume goes back to the paused phase", func(t *testing.T) {
		tetris := NewTestTetris(J)
		tetris.Tetromino.Y = 18
		tetris.Advance(800 * time.Millisecond)
		tetris.Apply(Pause)
		if !tetris.Snapshot().Paused {
			t.Error("wanted the snapshot to be paused")
		}
		if !tetris.Apply(Resume) || tetris.Phase != Locking {
			t.Errorf("wanted phase %q, got %q", Locking, tetris.Phase)
		}
		if tetris.Apply(Resume) {
			t.Error("wanted resume to be ignored when not paused")
		}
	})
}

func TestLineClear(t *testing.T) {
	// .	0 1 2 3 4 5 6 7 8 9
	// 19	B B B O O O O B B B
	setup := func() *Tetris {
		tetris := NewTestTetris(I)
		for _, x := range []int{0, 1, 2, 7, 8, 9} {
			tetris.Board.Cells[19][x] = L.Cell()
		}
		return tetris
	}

	t.Run("completed rows blink before being removed", func(t *testing.T) {
		tetris := setup()
		tetris.Apply(DropDown)
		if tetris.Phase != Clearing {
			t.Fatalf("wanted phase %q, got %q", Clearing, tetris.Phase)
		}
		if tetris.Tetromino != nil {
			t.Error("wanted no tetromino while clearing")
		}
		if s := tetris.Snapshot(); !reflect.DeepEqual(s.ClearingRows, []int{19}) {
			t.Errorf("wanted clearing rows [19], got %v", s.ClearingRows)
		}
		if tetris.Board.Cells[19][0] != Flashing {
			t.Errorf("wanted row 19 to show the clearing marker, got %v", tetris.Board.Cells[19])
		}
		if tetris.Apply(MoveLeft) || tetris.Apply(Hold) {
			t.Error("wanted actions to be ignored while clearing")
		}

		tetris.Advance(40 * time.Millisecond)
		if tetris.Board.Cells[19][0] != L.Cell() || tetris.Board.Cells[19][3] != I.Cell() {
			t.Errorf("wanted row 19 blocks to be shown, got %v", tetris.Board.Cells[19])
		}
		for range 6 {
			tetris.Advance(40 * time.Millisecond)
		}
		if tetris.Phase != Clearing || tetris.Points != 0 {
			t.Fatalf("wanted the row to still be clearing without points, got %q with %d", tetris.Phase, tetris.Points)
		}

		tetris.Advance(40 * time.Millisecond)
		if tetris.Phase != Falling {
			t.Fatalf("wanted phase %q, got %q", Falling, tetris.Phase)
		}
		if !reflect.DeepEqual(tetris.Board, NewBoard(20, 10)) {
			t.Errorf("wanted an empty board, got %v", tetris.Board.Cells)
		}
		if tetris.Points != 100 || tetris.Lines != 1 || tetris.Combo != 1 {
			t.Errorf("wanted 100 points, 1 line and combo 1, got %+v", tetris.Score)
		}
	})

	t.Run("level up shortens the drop interval", func(t *testing.T) {
		tetris := setup()
		tetris.Lines = 9
		tetris.Apply(DropDown)
		tetris.Advance(320 * time.Millisecond)
		if tetris.Level != 2 {
			t.Errorf("wanted level 2, got %d", tetris.Level)
		}
		if tetris.interval != 750*time.Millisecond {
			t.Errorf("wanted interval 750ms, got %v", tetris.interval)
		}
	})

	t.Run("lock without lines resets the combo", func(t *testing.T) {
		tetris := setup()
		tetris.Apply(DropDown)
		tetris.Advance(320 * time.Millisecond)
		tetris.Apply(DropDown)
		if tetris.Combo != 0 {
			t.Errorf("wanted combo 0, got %d", tetris.Combo)
		}
	})

	t.Run("no animation clears right away", func(t *testing.T) {
		o := DefaultOptions()
		o.FlashCount = 0
		tetris := NewTestTetris(I)
		tetris.opts = o.withDefaults()
		for _, x := range []int{0, 1, 2, 7, 8, 9} {
			tetris.Board.Cells[19][x] = L.Cell()
		}
		tetris.Apply(DropDown)
		if tetris.Phase != Falling || tetris.Lines != 1 {
			t.Errorf("wanted the row cleared on lock, got %q with %d lines", tetris.Phase, tetris.Lines)
		}
	})
}

func TestSettings(t *testing.T) {
	t.Run("difficulty changes the drop interval", func(t *testing.T) {
		tetris := NewTestTetris(J)
		if !tetris.SetDifficulty(Hard) {
			t.Fatal("wanted the difficulty to change")
		}
		tetris.Advance(250 * time.Millisecond)
		if tetris.Tetromino.Y != 0 {
			t.Errorf("wanted Y to be 0, got %d", tetris.Tetromino.Y)
		}
		if tetris.SetDifficulty("impossible") || tetris.Difficulty != Hard {
			t.Errorf("wanted an unknown difficulty to be ignored, got %q", tetris.Difficulty)
		}
	})

	t.Run("mode", func(t *testing.T) {
		tetris := NewTestTetris(J)
		if !tetris.SetMode(Classic) || tetris.Mode != Classic {
			t.Errorf("wanted mode %q, got %q", Classic, tetris.Mode)
		}
		if tetris.SetMode("arcade") || tetris.Mode != Classic {
			t.Errorf("wanted an unknown mode to be ignored, got %q", tetris.Mode)
		}
	})
}

func TestSnapshot(t *testing.T) {
	tetris := NewTestTetris(J)
	s := tetris.Snapshot()
	if s.Tetromino.GhostY != 18 {
		t.Errorf("wanted ghost at 18, got %d", s.Tetromino.GhostY)
	}
	s.Board[0][0] = J.Cell()
	s.Tetromino.X = 8
	if tetris.Board.Cells[0][0] != Empty || tetris.Tetromino.X != 3 {
		t.Error("wanted the snapshot to not share state with the game")
	}
	if s.Level != 1 || s.Difficulty != Easy || s.Mode != Modern || s.Next.Shape != J {
		t.Errorf("wanted a level 1 easy modern game, got %+v", s)
	}
}

func TestRandomBag(t *testing.T) {
	t.Run("bag should contain 7 elements. after drawing it should contain one less", func(t *testing.T) {
		t.Parallel()
		bag := newBag(1)
		if len(bag.bag) != 7 {
			t.Errorf("wanted bag to have 7 pieces, got %d", len(bag.bag))
		}
		bag.draw()
		if len(bag.bag) != 6 {
			t.Errorf("wanted bag to have 6 pieces, got %d", len(bag.bag))
		}
	})

	t.Run("first draw should always be I, J, L or T", func(t *testing.T) {
		t.Parallel()
		for seed := range uint64(50) {
			bag := newBag(seed + 1)
			shape := bag.draw()
			if shape == O || shape == Z || shape == S {
				t.Errorf("wanted I, J, L, or T, got %v", shape)
			}
		}
	})

	t.Run("every 7 draws deal each shape once", func(t *testing.T) {
		t.Parallel()
		bag := newBag(42)
		for range 3 {
			seen := map[Shape]int{}
			for range 7 {
				seen[bag.draw()]++
			}
			if len(seen) != 7 {
				t.Errorf("wanted all 7 shapes, got %v", seen)
			}
		}
	})

	t.Run("same seed deals the same shapes", func(t *testing.T) {
		t.Parallel()
		a, b := newBag(7), newBag(7)
		for range 14 {
			if sa, sb := a.draw(), b.draw(); sa != sb {
				t.Fatalf("wanted %v, got %v", sa, sb)
			}
		}
	})
}
