// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
)

var _ bookmark.Store = &Store{}

type Store struct {
	s      bookmark.Store
	logger hclog.Logger
}

// New wraps s, logging each operation to logger.
// A nil logger means hclog.Default().
func New(s bookmark.Store, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.Default()
	}
	return &Store{s: s, logger: logger.Named("bookmarks")}
}

// Close closes the nested store.
func (s *Store) Close() error {
	return store.Close(s.s)
}

func (s *Store) Get(ctx context.Context, h bookmark.Handle) (bookmark.Room, error) {
	start := time.Now()
	r, err := s.s.Get(ctx, h)
	if err != nil {
		s.logger.Error("get", "handle", h, "error", err)
	} else {
		s.logger.Debug("get", "handle", h, "room", r.Short(), "elapsed", time.Since(start))
	}
	return r, err
}

func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	s.logger.Debug("list handles", "start", start)
	var n int
	err := s.s.ListHandles(ctx, start, func(h bookmark.Handle) error {
		err := f(h)
		if err != nil {
			s.logger.Error("list handles", "handle", h, "error", err)
		} else {
			s.logger.Trace("list handles", "handle", h)
			n++
		}
		return err
	})
	s.logger.Debug("list handles done", "count", n)
	return err
}

func (s *Store) Put(ctx context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	start := time.Now()
	h, added, err := s.s.Put(ctx, r)
	if err != nil {
		s.logger.Error("put", "room", r.Short(), "error", err)
	} else {
		s.logger.Debug("put", "handle", h, "added", added, "elapsed", time.Since(start))
	}
	return h, added, err
}

// Count implements bookmark.Counter by delegating to the nested store.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := bookmark.Count(ctx, s.s)
	if err != nil {
		s.logger.Error("count", "error", err)
	}
	return n, err
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		nested, err := store.Nested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		return New(nested, nil), nil
	})
}
