package lru

import (
	"context"
	"testing"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store/mem"
	"github.com/tdjsnelling/babel/testutil"
)

func TestStore(t *testing.T) {
	s, err := New(mem.New(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	testutil.ReadWrite(context.Background(), t, s)
}

func TestCacheHit(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = mem.New()
	)
	s, err := New(nested, 2)
	if err != nil {
		t.Fatal(err)
	}

	h, _, err := nested.Put(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.Get(ctx, h); err != nil {
		t.Fatal(err)
	}

	// A cached room survives removal from the nested store.
	other := mem.New()
	s.s = other
	got, err := s.Get(ctx, h)
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" {
		t.Errorf("got %s, want abc", got)
	}

	if _, err = s.Get(ctx, bookmark.Room("xyz").Handle()); err == nil {
		t.Error("got no error for uncached, unstored room")
	}
}
