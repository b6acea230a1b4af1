package rpc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tdjsnelling/babel/bookmark"
)

var _ BookmarksServer = &Server{}

// Server exposes a bookmark store over gRPC.
type Server struct {
	s bookmark.Store
}

func NewServer(s bookmark.Store) *Server {
	return &Server{s: s}
}

func (s *Server) Get(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if len(req.Value) != len(bookmark.Handle{}) {
		return nil, status.Errorf(codes.InvalidArgument, "handle is %d bytes, want %d", len(req.Value), len(bookmark.Handle{}))
	}
	room, err := s.s.Get(ctx, bookmark.HandleFromBytes(req.Value))
	if errors.Is(err, bookmark.ErrNotFound) {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err != nil {
		return nil, err
	}
	return wrapperspb.String(string(room)), nil
}

func (s *Server) Put(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_, added, err := s.s.Put(ctx, bookmark.Room(req.Value))
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bool(added), nil
}

func (s *Server) ListHandles(req *wrapperspb.BytesValue, srv grpc.ServerStream) error {
	var start bookmark.Handle
	if len(req.Value) > 0 {
		start = bookmark.HandleFromBytes(req.Value)
	}
	return s.s.ListHandles(srv.Context(), start, func(h bookmark.Handle) error {
		return srv.SendMsg(wrapperspb.Bytes(h[:]))
	})
}

func (s *Server) Count(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	n, err := bookmark.Count(ctx, s.s)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Int64(n), nil
}
