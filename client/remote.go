package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/vietluonghoang/TeWeGa/pb"
	"github.com/vietluonghoang/TeWeGa/tetris"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RemoteGame plays, or spectates, a game hosted by the game server. It
// drives the same way as a local tetris.Game.
type RemoteGame struct {
	Addr string
	// Spectate is the ID of the session to follow. When empty a new session
	// is opened and played.
	Spectate string
	Logger   *slog.Logger

	dialOpts []grpc.DialOption
	updateCh chan *tetris.Snapshot
	cmdCh    chan pb.Command
	doneCh   chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	session  string
	mu       sync.Mutex
}

func NewRemoteGame(addr, spectate string, l *slog.Logger, opts ...grpc.DialOption) *RemoteGame {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteGame{
		Addr:     addr,
		Spectate: spectate,
		Logger:   l,
		dialOpts: append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...),
		updateCh: make(chan *tetris.Snapshot),
		cmdCh:    make(chan pb.Command),
		doneCh:   make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start connects to the server in the background. Connection errors close
// the update channel.
func (r *RemoteGame) Start() {
	go r.run()
}

// Stop ends the session.
func (r *RemoteGame) Stop() { r.cancel() }

func (r *RemoteGame) GetUpdate() <-chan *tetris.Snapshot { return r.updateCh }

func (r *RemoteGame) Action(a tetris.Action) { r.send(pb.Command{Action: a}) }

func (r *RemoteGame) SetDifficulty(d tetris.Difficulty) { r.send(pb.Command{Difficulty: d}) }

func (r *RemoteGame) SetMode(m tetris.Mode) { r.send(pb.Command{Mode: m}) }

// Session returns the ID of the session being played or spectated, once
// known.
func (r *RemoteGame) Session() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *RemoteGame) send(c pb.Command) {
	if r.Spectate != "" {
		return
	}
	select {
	case r.cmdCh <- c:
	case <-r.doneCh:
	case <-r.ctx.Done():
	}
}

func (r *RemoteGame) run() {
	defer close(r.updateCh)
	defer close(r.doneCh)

	conn, err := grpc.NewClient(r.Addr, r.dialOpts...)
	if err != nil {
		r.Logger.Error("unable to create gRPC client", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			r.Logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
		}
	}()
	client := pb.NewGameServiceClient(conn)

	if r.Spectate != "" {
		r.spectate(client)
		return
	}
	r.play(client)
}

func (r *RemoteGame) play(client pb.GameServiceClient) {
	stream, err := client.Play(r.ctx)
	if err != nil {
		r.Logger.Error("unable to create gRPC Play stream", slog.String("error", err.Error()))
		return
	}
	header, err := stream.Header()
	if err != nil {
		r.logRecvError(err)
		return
	}
	if ids := header.Get(pb.SessionHeader); len(ids) > 0 {
		r.setSession(ids[0])
		r.Logger.Info("joined session", slog.String("session", ids[0]))
	}

	// send player commands
	go func() {
		for {
			select {
			case c := <-r.cmdCh:
				if err := stream.Send(pb.CommandToProto(c)); err != nil {
					r.cancel()
					if errors.Is(err, io.EOF) {
						r.Logger.Debug("send() server closed the session with EOF")
						return
					}
					r.Logger.Error("send() unable to send command", slog.String("error", err.Error()))
					return
				}
			case <-r.ctx.Done():
				stream.CloseSend() //nolint: errcheck
				return
			}
		}
	}()

	r.receive(stream)
}

func (r *RemoteGame) spectate(client pb.GameServiceClient) {
	stream, err := client.Spectate(r.ctx, wrapperspb.String(r.Spectate))
	if err != nil {
		r.Logger.Error("unable to create gRPC Spectate stream", slog.String("error", err.Error()))
		return
	}
	r.setSession(r.Spectate)
	r.receive(stream)
}

func (r *RemoteGame) receive(stream interface {
	Recv() (*structpb.Struct, error)
}) {
	for {
		rcv, err := stream.Recv()
		if err != nil {
			r.logRecvError(err)
			return
		}
		s, err := pb.SnapshotFromProto(rcv)
		if err != nil {
			r.Logger.Error("unable to decode snapshot", slog.String("error", err.Error()))
			return
		}
		select {
		case r.updateCh <- s:
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *RemoteGame) logRecvError(err error) {
	if errors.Is(err, io.EOF) {
		r.Logger.Debug("stream.Recv() closed with EOF", slog.String("msg", err.Error()))
		return
	}
	st, ok := status.FromError(err)
	switch {
	case ok && st.Code() == codes.Canceled:
		r.Logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
	case ok && st.Code() == codes.DeadlineExceeded:
		r.Logger.Debug("stream.Recv() closed with DeadlineExceeded", slog.String("msg", st.Message()))
	default:
		r.Logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
	}
}

func (r *RemoteGame) setSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = id
}
