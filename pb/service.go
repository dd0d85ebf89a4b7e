// Package pb is the gRPC contract between the game server and its clients.
//
// The service is described in game.proto. Messages are the well known
// google.protobuf.Struct and StringValue types, so the descriptors below are
// written by hand instead of generated.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "tewega.v1.GameService"

	GameService_Play_FullMethodName     = "/tewega.v1.GameService/Play"
	GameService_Spectate_FullMethodName = "/tewega.v1.GameService/Spectate"

	// SessionHeader is the header metadata key carrying the ID of the
	// session opened by Play.
	SessionHeader = "x-session-id"
)

// GameServiceClient is the client API for GameService.
type GameServiceClient interface {
	// Play opens a single player session: commands go up the stream and
	// a snapshot comes down every time the game changes.
	Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], error)
	// Spectate streams the snapshots of a running session.
	Spectate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type gameServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewGameServiceClient(cc grpc.ClientConnInterface) GameServiceClient {
	return &gameServiceClient{cc}
}

func (c *gameServiceClient) Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &GameService_ServiceDesc.Streams[0], GameService_Play_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	return x, nil
}

func (c *gameServiceClient) Spectate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &GameService_ServiceDesc.Streams[1], GameService_Spectate_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// GameServiceServer is the server API for GameService.
type GameServiceServer interface {
	Play(grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error
	Spectate(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error
}

// UnimplementedGameServiceServer can be embedded to have forward compatible
// implementations.
type UnimplementedGameServiceServer struct{}

func (UnimplementedGameServiceServer) Play(grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error {
	return status.Errorf(codes.Unimplemented, "method Play not implemented")
}

func (UnimplementedGameServiceServer) Spectate(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Errorf(codes.Unimplemented, "method Spectate not implemented")
}

func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameService_ServiceDesc, srv)
}

func _GameService_Play_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(GameServiceServer).Play(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

func _GameService_Spectate_Handler(srv any, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GameServiceServer).Spectate(m, &grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

// GameService_ServiceDesc is the grpc.ServiceDesc for GameService.
var GameService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       _GameService_Play_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
		{
			StreamName:    "Spectate",
			Handler:       _GameService_Spectate_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "pb/game.proto",
}
