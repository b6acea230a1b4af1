package sqlite3

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tdjsnelling/babel/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	err := withTestStore(ctx, t, func(s *Store) error {
		testutil.ReadWrite(ctx, t, s)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestReopen(t *testing.T) {
	var (
		ctx  = context.Background()
		path = filepath.Join(t.TempDir(), "bookmarks.db")
	)

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	h, _, err := s.Put(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s, err = New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, h)
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" {
		t.Errorf("got %s, want abc", got)
	}
}

func withTestStore(ctx context.Context, t *testing.T, fn func(*Store) error) error {
	db, err := Open(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := New(ctx, db)
	if err != nil {
		return err
	}

	return fn(s)
}
