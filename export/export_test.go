package export

import (
	"bytes"
	"context"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"

	"github.com/tdjsnelling/babel"
)

func smallConfig(g babel.Granularity) babel.Config {
	cfg := babel.DefaultConfig()
	cfg.Granularity = g
	cfg.Walls, cfg.Shelves, cfg.Books = 1, 2, 3
	cfg.Pages, cfg.Lines, cfg.Chars = 3, 4, 10
	return cfg
}

func testEngine(t *testing.T, cfg babel.Config) *babel.Engine {
	t.Helper()

	consts, err := babel.DeriveConstants(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	e, err := babel.NewEngine(cfg, consts)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// wantBook assembles the expected export page by page.
func wantBook(t *testing.T, e *babel.Engine, id babel.Identifier) string {
	t.Helper()

	var pages []string
	for p := 1; p <= e.Config().Pages; p++ {
		pid := id
		pid.Page = p
		page, err := e.Page(pid)
		if err != nil {
			t.Fatal(err)
		}
		pages = append(pages, strings.Join(e.Lines(page), "\n")+"\n")
	}
	return strings.Join(pages, "\f\n")
}

func TestWriteBook(t *testing.T) {
	ctx := context.Background()

	for _, g := range []babel.Granularity{babel.PageLevel, babel.BookLevel} {
		t.Run(string(g), func(t *testing.T) {
			var (
				e  = testEngine(t, smallConfig(g))
				id = babel.Identifier{Room: big.NewInt(5), Wall: 1, Shelf: 2, Book: 3, Page: 2}
			)

			buf := new(bytes.Buffer)
			if err := WriteBook(ctx, buf, e, id); err != nil {
				t.Fatal(err)
			}
			want := wantBook(t, e, id)
			if diff := cmp.Diff(want, buf.String()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			if n := strings.Count(buf.String(), "\n"); n != 3*4+2 {
				t.Errorf("got %d lines, want %d", n, 3*4+2)
			}

			zbuf := new(bytes.Buffer)
			if err := WriteBookZstd(ctx, zbuf, e, id); err != nil {
				t.Fatal(err)
			}
			dec, err := zstd.NewReader(nil)
			if err != nil {
				t.Fatal(err)
			}
			defer dec.Close()
			got, err := dec.DecodeAll(zbuf.Bytes(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, string(got)); diff != "" {
				t.Errorf("zstd mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteBookErrors(t *testing.T) {
	e := testEngine(t, smallConfig(babel.PageLevel))

	err := WriteBook(context.Background(), new(bytes.Buffer), e, babel.Identifier{Room: big.NewInt(1), Wall: 2, Shelf: 1, Book: 1, Page: 1})
	if err == nil {
		t.Error("got no error for a wall out of range")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = WriteBook(ctx, new(bytes.Buffer), e, babel.Identifier{Room: big.NewInt(1), Wall: 1, Shelf: 1, Book: 1, Page: 1})
	if err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
