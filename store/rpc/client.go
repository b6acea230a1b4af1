// Package rpc serves a bookmark store over gRPC
// and implements a bookmark store that is a client of such a server.
package rpc

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
)

var (
	_ bookmark.Store   = &Client{}
	_ bookmark.Counter = &Client{}
)

// Client is a bookmark store backed by a remote Server.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func method(name string) string {
	return "/" + ServiceName + "/" + name
}

func (c *Client) Get(ctx context.Context, h bookmark.Handle) (bookmark.Room, error) {
	resp := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, method("Get"), wrapperspb.Bytes(h[:]), resp)
	if code := status.Code(err); code == codes.NotFound {
		return "", bookmark.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return bookmark.Room(resp.Value), nil
}

func (c *Client) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	desc := &serviceDesc.Streams[0]
	stream, err := c.cc.NewStream(ctx, desc, method(desc.StreamName))
	if err != nil {
		return err
	}
	if err = stream.SendMsg(wrapperspb.Bytes(start[:])); err != nil {
		return errors.Wrap(err, "sending request")
	}
	if err = stream.CloseSend(); err != nil {
		return errors.Wrap(err, "closing send side")
	}
	for {
		resp := new(wrapperspb.BytesValue)
		err := stream.RecvMsg(resp)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "receiving response")
		}
		err = f(bookmark.HandleFromBytes(resp.Value))
		if err != nil {
			return err
		}
	}
}

// Put sends r to the server.
// The handle is computed locally.
func (c *Client) Put(ctx context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	resp := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, method("Put"), wrapperspb.String(string(r)), resp); err != nil {
		return bookmark.Zero, false, err
	}
	return r.Handle(), resp.Value, nil
}

func (c *Client) Count(ctx context.Context) (int64, error) {
	resp := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, method("Count"), &emptypb.Empty{}, resp); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

func init() {
	store.Register("rpc", func(_ context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		addr, ok := conf["addr"].(string)
		if !ok {
			return nil, errors.New(`missing "addr" parameter`)
		}
		var opts []grpc.DialOption
		if ins, _ := conf["insecure"].(bool); ins {
			opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		}
		cc, err := grpc.Dial(addr, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "connecting to %s", addr)
		}
		return NewClient(cc), nil
	})
}
