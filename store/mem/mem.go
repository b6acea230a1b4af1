// Package mem implements an in-memory bookmark store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
)

var _ bookmark.Store = &Store{}

// Store is a memory-based implementation of a bookmark store.
type Store struct {
	mu    sync.Mutex
	rooms map[bookmark.Handle]bookmark.Room
}

// New produces a new Store.
func New() *Store {
	return &Store{rooms: make(map[bookmark.Handle]bookmark.Room)}
}

// Get gets the room with handle h.
func (s *Store) Get(_ context.Context, h bookmark.Handle) (bookmark.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rooms[h]; ok {
		return r, nil
	}
	return "", bookmark.ErrNotFound
}

// Put adds a room to the store if it wasn't already present.
func (s *Store) Put(_ context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := r.Handle()
	if _, ok := s.rooms[h]; ok {
		return h, false, nil
	}
	s.rooms[h] = r
	return h, true, nil
}

// Count implements bookmark.Counter.
func (s *Store) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rooms)), nil
}

// ListHandles produces all handles in the store, in lexicographic order.
func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	s.mu.Lock()
	handles := make([]bookmark.Handle, 0, len(s.rooms))
	for h := range s.rooms {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i].Less(handles[j]) })
	index := sort.Search(len(handles), func(n int) bool {
		return start.Less(handles[n])
	})

	for i := index; i < len(handles); i++ {
		err := f(handles[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (bookmark.Store, error) {
		return New(), nil
	})
}
