package pb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vietluonghoang/TeWeGa/tetris"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	emptyCell    = '.'
	clearingCell = '*'
)

// Command is what a player sends on the Play stream. Exactly one field is
// expected to be set.
type Command struct {
	Action     tetris.Action
	Difficulty tetris.Difficulty
	Mode       tetris.Mode
}

func CommandToProto(c Command) *structpb.Struct {
	fields := map[string]*structpb.Value{}
	if c.Action != "" {
		fields["action"] = structpb.NewStringValue(string(c.Action))
	}
	if c.Difficulty != "" {
		fields["difficulty"] = structpb.NewStringValue(string(c.Difficulty))
	}
	if c.Mode != "" {
		fields["mode"] = structpb.NewStringValue(string(c.Mode))
	}
	return &structpb.Struct{Fields: fields}
}

// CommandFromProto validates and decodes a command.
func CommandFromProto(s *structpb.Struct) (Command, error) {
	var c Command
	if len(s.GetFields()) != 1 {
		return c, fmt.Errorf("want exactly one command field, got %d", len(s.GetFields()))
	}
	for k, v := range s.GetFields() {
		var err error
		switch k {
		case "action":
			c.Action, err = tetris.ParseAction(v.GetStringValue())
		case "difficulty":
			c.Difficulty, err = tetris.ParseDifficulty(v.GetStringValue())
		case "mode":
			c.Mode, err = tetris.ParseMode(v.GetStringValue())
		default:
			err = fmt.Errorf("unknown command field %q", k)
		}
		if err != nil {
			return Command{}, fmt.Errorf("invalid command: %w", err)
		}
	}
	return c, nil
}

// SnapshotToProto encodes s for the wire.
func SnapshotToProto(s *tetris.Snapshot) (*structpb.Struct, error) {
	board := make([]any, len(s.Board))
	for i, r := range s.Board {
		board[i] = encodeRow(r)
	}
	clearing := make([]any, len(s.ClearingRows))
	for i, r := range s.ClearingRows {
		clearing[i] = r
	}
	m := map[string]any{
		"board":         board,
		"score":         s.Score,
		"lines":         s.Lines,
		"level":         s.Level,
		"combo":         s.Combo,
		"back_to_back":  s.BackToBack,
		"elapsed_ms":    s.Elapsed.Milliseconds(),
		"phase":         string(s.Phase),
		"paused":        s.Paused,
		"game_over":     s.GameOver,
		"difficulty":    string(s.Difficulty),
		"mode":          string(s.Mode),
		"clearing_rows": clearing,
	}
	for k, p := range map[string]*tetris.Tetromino{"tetromino": s.Tetromino, "next": s.Next, "held": s.Held} {
		if p != nil {
			m[k] = encodePiece(p)
		}
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return st, nil
}

// SnapshotFromProto decodes a snapshot encoded by SnapshotToProto.
func SnapshotFromProto(st *structpb.Struct) (*tetris.Snapshot, error) {
	f := st.GetFields()
	rows := f["board"].GetListValue().GetValues()
	if len(rows) == 0 {
		return nil, errors.New("snapshot has no board")
	}
	s := &tetris.Snapshot{
		Board:      make([][]tetris.Cell, len(rows)),
		Score:      number(f["score"]),
		Lines:      number(f["lines"]),
		Level:      number(f["level"]),
		Combo:      number(f["combo"]),
		BackToBack: f["back_to_back"].GetBoolValue(),
		Elapsed:    time.Duration(number(f["elapsed_ms"])) * time.Millisecond,
		Phase:      tetris.Phase(f["phase"].GetStringValue()),
		Paused:     f["paused"].GetBoolValue(),
		GameOver:   f["game_over"].GetBoolValue(),
		Difficulty: tetris.Difficulty(f["difficulty"].GetStringValue()),
		Mode:       tetris.Mode(f["mode"].GetStringValue()),
	}
	for i, r := range rows {
		row, err := decodeRow(r.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("invalid row %d: %w", i, err)
		}
		s.Board[i] = row
	}
	for _, v := range f["clearing_rows"].GetListValue().GetValues() {
		s.ClearingRows = append(s.ClearingRows, number(v))
	}

	var err error
	if s.Tetromino, err = decodePiece(f["tetromino"]); err != nil {
		return nil, fmt.Errorf("invalid tetromino: %w", err)
	}
	if s.Next, err = decodePiece(f["next"]); err != nil {
		return nil, fmt.Errorf("invalid next tetromino: %w", err)
	}
	if s.Held, err = decodePiece(f["held"]); err != nil {
		return nil, fmt.Errorf("invalid held tetromino: %w", err)
	}
	return s, nil
}

func encodeRow(r []tetris.Cell) string {
	var b strings.Builder
	for _, c := range r {
		switch c {
		case tetris.Empty:
			b.WriteByte(emptyCell)
		case tetris.Flashing:
			b.WriteByte(clearingCell)
		default:
			b.WriteString(string(c.Shape()))
		}
	}
	return b.String()
}

func decodeRow(s string) ([]tetris.Cell, error) {
	row := make([]tetris.Cell, len(s))
	for i, c := range s {
		switch c {
		case emptyCell:
			row[i] = tetris.Empty
		case clearingCell:
			row[i] = tetris.Flashing
		default:
			cell := tetris.Shape(string(c)).Cell()
			if cell == tetris.Empty {
				return nil, fmt.Errorf("unknown cell %q", c)
			}
			row[i] = cell
		}
	}
	return row, nil
}

func encodePiece(p *tetris.Tetromino) map[string]any {
	return map[string]any{
		"shape":    string(p.Shape),
		"x":        p.X,
		"y":        p.Y,
		"rotation": p.Rotation,
		"ghost_y":  p.GhostY,
		"can_hold": p.CanHold,
	}
}

func decodePiece(v *structpb.Value) (*tetris.Tetromino, error) {
	f := v.GetStructValue().GetFields()
	if f == nil {
		return nil, nil
	}
	p := &tetris.Tetromino{
		Shape:    tetris.Shape(f["shape"].GetStringValue()),
		X:        number(f["x"]),
		Y:        number(f["y"]),
		Rotation: number(f["rotation"]),
		GhostY:   number(f["ghost_y"]),
		CanHold:  f["can_hold"].GetBoolValue(),
	}
	if p.Rotation < 0 {
		return nil, fmt.Errorf("invalid rotation %d", p.Rotation)
	}
	p.Grid = tetris.ShapeGrid(p.Shape, p.Rotation)
	if p.Grid == nil {
		return nil, fmt.Errorf("unknown shape %q", p.Shape)
	}
	return p, nil
}

func number(v *structpb.Value) int {
	return int(v.GetNumberValue())
}
