package main

import (
	"context"
	"flag"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/tdjsnelling/babel/server"
	"github.com/tdjsnelling/babel/store"
	"github.com/tdjsnelling/babel/store/rpc"
)

func (c maincmd) serve(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		addr      = fs.String("addr", c.conf.Addr, "listen address")
		cacheSize = fs.Int("cache", c.conf.CacheSize, "number of pages to cache")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	e, err := c.engine()
	if err != nil {
		return err
	}
	s, err := c.store(ctx)
	if err != nil {
		return err
	}
	defer store.Close(s)
	srv, err := server.New(e, s, *cacheSize, server.WithLogger(c.logger))
	if err != nil {
		return err
	}
	return srv.Serve(ctx, *addr)
}

// serveRPC exposes the configured bookmark store over gRPC,
// for use by other instances configured with an "rpc" store.
func (c maincmd) serveRPC(ctx context.Context, fs *flag.FlagSet, args []string) error {
	addr := fs.String("addr", c.conf.RPCAddr, "listen address")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	s, err := c.store(ctx)
	if err != nil {
		return err
	}
	defer store.Close(s)

	gs := grpc.NewServer()
	rpc.RegisterBookmarksServer(gs, rpc.NewServer(s))

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", *addr)
	}
	defer lis.Close()

	c.logger.Info("listening", "addr", lis.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		gs.GracefulStop()
		return nil
	})
	return g.Wait()
}
