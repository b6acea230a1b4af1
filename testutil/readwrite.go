// Package testutil holds conformance tests shared by the bookmark store backends.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bookmark"
)

// ReadWrite permits testing a Store implementation
// by writing some rooms to it,
// then reading them back by handle and by listing.
// The store must start out empty.
func ReadWrite(ctx context.Context, t *testing.T, store bookmark.Store) {
	rooms := []bookmark.Room{
		"1",
		"zz",
		"3k9f0a",
		bookmark.Room(strings.Repeat("q7", 1500)),
	}

	t1 := time.Now()
	handles := make(map[bookmark.Handle]bookmark.Room)
	for _, r := range rooms {
		h, added, err := store.Put(ctx, r)
		if err != nil {
			t.Fatal(err)
		}
		if !added {
			t.Errorf("room %s: not added on first put", r.Short())
		}
		if h != r.Handle() {
			t.Errorf("room %s: got handle %s, want %s", r.Short(), h, r.Handle())
		}
		handles[h] = r
	}
	t.Logf("wrote %d rooms in %s", len(rooms), time.Since(t1))

	for _, r := range rooms {
		_, added, err := store.Put(ctx, r)
		if err != nil {
			t.Fatal(err)
		}
		if added {
			t.Errorf("room %s: added on second put", r.Short())
		}
	}

	for h, want := range handles {
		got, err := store.Get(ctx, h)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("handle %s: got room %s, want %s", h, got.Short(), want.Short())
		}
	}

	_, err := store.Get(ctx, bookmark.Room("not stored").Handle())
	if !errors.Is(err, bookmark.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	var (
		last  bookmark.Handle
		count int
	)
	err = store.ListHandles(ctx, bookmark.Zero, func(h bookmark.Handle) error {
		if count > 0 && !last.Less(h) {
			return fmt.Errorf("handle %s listed after %s", h, last)
		}
		if _, ok := handles[h]; !ok {
			return fmt.Errorf("unexpected handle %s", h)
		}
		last = h
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != len(rooms) {
		t.Errorf("listed %d handles, want %d", count, len(rooms))
	}

	n, err := bookmark.Count(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(rooms)) {
		t.Errorf("counted %d bookmarks, want %d", n, len(rooms))
	}
}
