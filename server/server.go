// Package server is the HTTP front end of the library.
// It serves pages by identifier,
// searches for text,
// and hands out bookmark handles in place of long room numbers.
package server

import (
	"context"
	"crypto/rand"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/search"
)

// DefaultCacheSize is the number of generated pages kept in memory.
const DefaultCacheSize = 1024

// Server serves one library.
type Server struct {
	engine   *babel.Engine
	embedder *search.Embedder
	store    bookmark.Store
	logger   hclog.Logger
	pages    *lru.Cache // full identifier -> page text

	// Entropy for random identifiers and search fillers.
	entropy io.Reader
	rng     search.Rand
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is hclog.Default().
func WithLogger(logger hclog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRand sets the sources of randomness.
// Tests use it to make random routes repeatable.
// rng must be safe for concurrent use.
func WithRand(entropy io.Reader, rng search.Rand) Option {
	return func(s *Server) {
		s.entropy = entropy
		s.rng = rng
	}
}

// New produces a Server for the library of e,
// storing bookmarks in st and caching up to cacheSize pages.
func New(e *babel.Engine, st bookmark.Store, cacheSize int, opts ...Option) (*Server, error) {
	em, err := search.NewEmbedder(e.Config(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating embedder")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	pages, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating page cache")
	}
	s := &Server{
		engine:   e,
		embedder: em,
		store:    st,
		logger:   hclog.Default(),
		pages:    pages,
		entropy:  rand.Reader,
		rng:      search.DefaultRand,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("http")
	return s, nil
}

// Handler returns the routes of s wrapped in request-id and access-log middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ref/{id}", withCache(cacheStatic, s.handleRef))
	mux.HandleFunc("GET /fullref/{id}", withCache(cacheStatic, s.handleFullRef))
	mux.HandleFunc("GET /book/{id}", withCache(cacheStatic, s.handleBook))
	mux.HandleFunc("POST /get-uid", withCache(cacheDynamic, s.handleGetUID))
	mux.HandleFunc("POST /search", withCache(cacheDynamic, s.handleSearch))
	mux.HandleFunc("GET /random", withCache(cacheDynamic, s.handleRandom))
	mux.HandleFunc("GET /health", withCache(cacheDynamic, s.handleHealth))

	return withRequestID(withAccessLog(s.logger, mux))
}

// Serve listens on addr until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errch := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", lis.Addr().String())
		errch <- srv.Serve(lis)
	}()

	select {
	case err := <-errch:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutting down")
		}
		return nil
	}
}
