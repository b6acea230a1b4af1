package main

import (
	"context"
	"math/big"
	"math/rand"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/tdjsnelling/babel"
	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
	"github.com/tdjsnelling/babel/store/mem"
)

var opened, closed int

type closingStore struct {
	*mem.Store
}

func (closingStore) Close() error {
	closed++
	return nil
}

func init() {
	store.Register("closing", func(context.Context, map[string]interface{}) (bookmark.Store, error) {
		opened++
		return closingStore{Store: mem.New()}, nil
	})
}

func TestBookmarksOpenOnce(t *testing.T) {
	opened, closed = 0, 0

	cfg := babel.DefaultConfig()
	cfg.Walls, cfg.Shelves, cfg.Books, cfg.Pages = 1, 2, 3, 4
	cfg.Lines, cfg.Chars = 4, 10
	consts, err := babel.DeriveConstants(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	e, err := babel.NewEngine(cfg, consts)
	if err != nil {
		t.Fatal(err)
	}

	c := maincmd{
		conf:   &config{Library: cfg, Bookmarks: map[string]interface{}{"type": "closing"}},
		logger: hclog.NewNullLogger(),
	}
	ctx := context.Background()

	bs := c.bookmarks()
	if _, err := bs.render(ctx, e, babel.Identifier{Room: big.NewInt(1), Wall: 1, Shelf: 1, Book: 1, Page: 1}, false); err != nil {
		t.Fatal(err)
	}
	if opened != 0 {
		t.Errorf("rendering without handles opened %d stores", opened)
	}

	id, err := e.Random(rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}
	withHandle, err := bs.render(ctx, e, id, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = bs.render(ctx, e, id, true); err != nil {
		t.Fatal(err)
	}
	got, err := bs.identifier(ctx, e, withHandle)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(id) {
		t.Errorf("got %s, want %s", e.FormatIdentifier(got), e.FormatIdentifier(id))
	}

	if err = bs.Close(); err != nil {
		t.Fatal(err)
	}
	if opened != 1 || closed != 1 {
		t.Errorf("opened %d, closed %d; want 1 and 1", opened, closed)
	}
	if err = bs.Close(); err != nil {
		t.Fatal(err)
	}
	if closed != 1 {
		t.Errorf("second Close closed again (%d)", closed)
	}
}
