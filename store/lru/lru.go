// Package lru implements a bookmark store that acts as a least-recently-used cache for a nested bookmark store.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
)

var _ bookmark.Store = &Store{}

// Store implements a memory-based least-recently-used cache for a bookmark store.
// Writes pass through to the underlying store.
type Store struct {
	c *lru.Cache // Handle->Room
	s bookmark.Store
}

// New produces a new Store backed by `s` and caching up to `size` rooms.
func New(s bookmark.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// Close closes the nested store.
func (s *Store) Close() error {
	return store.Close(s.s)
}

// Get gets the room with handle h.
func (s *Store) Get(ctx context.Context, h bookmark.Handle) (bookmark.Room, error) {
	if got, ok := s.c.Get(h); ok {
		return got.(bookmark.Room), nil
	}
	r, err := s.s.Get(ctx, h)
	if err != nil {
		return "", err
	}
	s.c.Add(h, r)
	return r, nil
}

// Put adds a room to the store if it wasn't already present.
// A room already in the cache is known to be stored and is not written again.
func (s *Store) Put(ctx context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	h := r.Handle()
	if s.c.Contains(h) {
		return h, false, nil
	}
	h, added, err := s.s.Put(ctx, r)
	if err != nil {
		return h, added, err
	}
	s.c.Add(h, r)
	return h, added, nil
}

// ListHandles produces all handles in the store, in lexicographic order.
func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	return s.s.ListHandles(ctx, start, f)
}

// Count implements bookmark.Counter by delegating to the nested store.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return bookmark.Count(ctx, s.s)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		size, ok := store.Int(conf, "size")
		if !ok {
			return nil, errors.New(`missing "size" parameter`)
		}
		nested, err := store.Nested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		return New(nested, size)
	})
}
