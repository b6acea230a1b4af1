package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tdjsnelling/babel/bookmark"
	. "github.com/tdjsnelling/babel/store"
	"github.com/tdjsnelling/babel/store/mem"
)

func TestSync(t *testing.T) {
	const text = `1a 2b 3c 4d 5e 6f 7g`

	var (
		ctx    = context.Background()
		rooms  = strings.Fields(text)
		stores = make([]bookmark.Store, 0, len(rooms))
	)
	for i := range rooms {
		s := mem.New()
		stores = append(stores, s)
		for j, room := range rooms {
			if i == j {
				continue
			}

			_, _, err := s.Put(ctx, bookmark.Room(room))
			if err != nil {
				t.Fatal(err)
			}
		}
	}

	// One store with a single room, one empty.
	lone := mem.New()
	if _, _, err := lone.Put(ctx, "zz"); err != nil {
		t.Fatal(err)
	}
	stores = append(stores, lone, mem.New())

	err := Sync(ctx, stores)
	if err != nil {
		t.Fatal(err)
	}

	want := listHandles(ctx, t, stores[0])
	if len(want) != len(rooms)+1 {
		t.Fatalf("got %d handles, want %d", len(want), len(rooms)+1)
	}
	for i := 1; i < len(stores); i++ {
		got := listHandles(ctx, t, stores[i])
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("store %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func listHandles(ctx context.Context, t *testing.T, s bookmark.Store) []bookmark.Handle {
	t.Helper()

	var out []bookmark.Handle
	err := s.ListHandles(ctx, bookmark.Zero, func(h bookmark.Handle) error {
		out = append(out, h)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	s, err := FromConfig(ctx, map[string]interface{}{"type": "mem"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*mem.Store); !ok {
		t.Errorf("got %T, want *mem.Store", s)
	}

	if _, err = Create(ctx, "nonesuch", nil); err == nil {
		t.Error("got no error for unregistered type")
	}
	if _, err = FromConfig(ctx, map[string]interface{}{}); err == nil {
		t.Error("got no error for missing type")
	}
}
