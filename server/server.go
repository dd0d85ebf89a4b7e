// Package server hosts games over gRPC. Every Play stream owns one game
// session; any number of spectators can follow a session by its ID.
package server

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vietluonghoang/TeWeGa/pb"
	"github.com/vietluonghoang/TeWeGa/tetris"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// spectatorBuffer is how many snapshots a slow spectator can lag behind
// before updates to it are dropped.
const spectatorBuffer = 16

type session struct {
	id         string
	game       *tetris.Game
	spectators map[chan *structpb.Struct]struct{}
	closed     bool
	mu         sync.Mutex
}

func (s *session) subscribe() chan *structpb.Struct {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan *structpb.Struct, spectatorBuffer)
	if s.closed {
		close(ch)
		return ch
	}
	s.spectators[ch] = struct{}{}
	return ch
}

func (s *session) unsubscribe(ch chan *structpb.Struct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spectators[ch]; ok {
		delete(s.spectators, ch)
		close(ch)
	}
}

// broadcast sends msg to every spectator without waiting on any of them.
// It returns how many spectators missed it.
func (s *session) broadcast(msg *structpb.Struct) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var dropped int
	for ch := range s.spectators {
		select {
		case ch <- msg:
		default:
			dropped++
		}
	}
	return dropped
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.spectators {
		delete(s.spectators, ch)
		close(ch)
	}
}

type gameServer struct {
	pb.UnimplementedGameServiceServer
	sessions map[string]*session
	newGame  func(l *slog.Logger) *tetris.Game
	logger   *slog.Logger
	mu       sync.Mutex
}

// New returns the game service. Every session plays a game configured
// with o.
func New(o tetris.Options, l *slog.Logger) pb.GameServiceServer {
	return newServer(func(l *slog.Logger) *tetris.Game { return tetris.NewGame(o, l) }, l)
}

func newServer(newGame func(*slog.Logger) *tetris.Game, l *slog.Logger) *gameServer {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &gameServer{
		sessions: make(map[string]*session),
		newGame:  newGame,
		logger:   l,
	}
}

func (g *gameServer) open() *session {
	id := uuid.New().String()
	s := &session{
		id:         id,
		game:       g.newGame(g.logger.With(slog.String("session", id))),
		spectators: make(map[chan *structpb.Struct]struct{}),
	}
	g.mu.Lock()
	g.sessions[id] = s
	g.mu.Unlock()
	return s
}

func (g *gameServer) remove(s *session) {
	g.mu.Lock()
	delete(g.sessions, s.id)
	g.mu.Unlock()
	s.close()
}

func (g *gameServer) get(id string) (*session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[id]
	return s, ok
}

func (g *gameServer) Play(stream grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error {
	s := g.open()
	logger := g.logger.With(slog.String("session", s.id))
	defer g.remove(s)

	if err := stream.SendHeader(metadata.Pairs(pb.SessionHeader, s.id)); err != nil {
		logger.Error("unable to send header", slog.String("error", err.Error()))
		return status.Errorf(codes.Internal, "failed to send session header: %v", err)
	}
	logger.Info("session started")

	s.game.Start()
	defer s.game.Stop()

	// receive commands from the player
	errCh := make(chan error, 1)
	go func() {
		for {
			rcv, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					errCh <- nil
					return
				}
				errCh <- err
				return
			}
			cmd, err := pb.CommandFromProto(rcv)
			if err != nil {
				logger.Warn("rejected command", slog.String("error", err.Error()))
				errCh <- status.Error(codes.InvalidArgument, err.Error())
				return
			}
			switch {
			case cmd.Action != "":
				s.game.Action(cmd.Action)
			case cmd.Difficulty != "":
				s.game.SetDifficulty(cmd.Difficulty)
			case cmd.Mode != "":
				s.game.SetMode(cmd.Mode)
			}
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case snap, ok := <-s.game.GetUpdate():
			if !ok {
				return nil
			}
			msg, err := pb.SnapshotToProto(snap)
			if err != nil {
				logger.Error("unable to encode snapshot", slog.String("error", err.Error()))
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.Send(msg); err != nil {
				logger.Error("unable to send snapshot", slog.String("error", err.Error()))
				return err
			}
			if n := s.broadcast(msg); n > 0 {
				logger.Debug("spectators missed a snapshot", slog.Int("count", n))
			}
			if snap.GameOver {
				logger.Info("game over", slog.Int("score", snap.Score), slog.Int("lines", snap.Lines))
			}
		case err := <-errCh:
			logger.Info("session ended")
			return err
		case <-ctx.Done():
			logger.Debug("session cancelled", slog.String("error", ctx.Err().Error()))
			return ctx.Err()
		}
	}
}

func (g *gameServer) Spectate(req *wrapperspb.StringValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	s, ok := g.get(req.GetValue())
	if !ok {
		return status.Errorf(codes.NotFound, "session %q not found", req.GetValue())
	}
	logger := g.logger.With(slog.String("session", s.id))
	ch := s.subscribe()
	defer s.unsubscribe(ch)
	logger.Debug("spectator joined")

	first, err := pb.SnapshotToProto(s.game.Read())
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := stream.Send(first); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				logger.Debug("spectated session ended")
				return nil
			}
			if err := stream.Send(msg); err != nil {
				logger.Error("unable to send snapshot to spectator", slog.String("error", err.Error()))
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
