package babel

import (
	"math/big"
	"math/rand"
	"testing"
)

func TestNavigatorContinuity(t *testing.T) {
	for _, cfg := range []Config{tinyConfig(), tinyBookConfig()} {
		t.Run(string(cfg.Granularity), func(t *testing.T) {
			e := testEngine(t, cfg, 10)
			n := int(e.N().Int64())
			for ix := 0; ix < n; ix++ {
				for page := 1; page <= cfg.Pages; page++ {
					id := e.Decode(big.NewInt(int64(ix)), page)

					prev, err := e.Prev(id)
					if err != nil {
						t.Fatal(err)
					}
					back, err := e.Next(prev)
					if err != nil {
						t.Fatal(err)
					}
					if !back.Equal(id) {
						t.Fatalf("next(prev(%s)) = %s", e.FormatIdentifier(id), e.FormatIdentifier(back))
					}

					next, err := e.Next(id)
					if err != nil {
						t.Fatal(err)
					}
					back, err = e.Prev(next)
					if err != nil {
						t.Fatal(err)
					}
					if !back.Equal(id) {
						t.Fatalf("prev(next(%s)) = %s", e.FormatIdentifier(id), e.FormatIdentifier(back))
					}
				}
			}
		})
	}
}

func TestNavigatorBookRollover(t *testing.T) {
	e := testEngine(t, tinyBookConfig(), 11)

	cases := []struct {
		from, next, prev string
	}{
		{"1.1.1.1.1", "1.1.1.1.2", "20.1.1.2.3"},
		{"1.1.1.1.2", "1.1.1.1.3", "1.1.1.1.1"},
		{"1.1.1.1.3", "1.1.1.2.1", "1.1.1.1.2"},
		{"1.1.1.2.3", "2.1.1.1.1", "1.1.1.2.2"},
		{"20.1.1.2.3", "1.1.1.1.1", "20.1.1.2.2"},
	}
	for _, c := range cases {
		id, err := e.ParseIdentifier(c.from)
		if err != nil {
			t.Fatal(err)
		}
		next, err := e.Next(id)
		if err != nil {
			t.Fatal(err)
		}
		if got := e.FormatIdentifier(next); got != c.next {
			t.Errorf("next(%s) = %s, want %s", c.from, got, c.next)
		}
		prev, err := e.Prev(id)
		if err != nil {
			t.Fatal(err)
		}
		if got := e.FormatIdentifier(prev); got != c.prev {
			t.Errorf("prev(%s) = %s, want %s", c.from, got, c.prev)
		}
	}
}

func TestRandom(t *testing.T) {
	for _, cfg := range []Config{tinyConfig(), tinyBookConfig()} {
		t.Run(string(cfg.Granularity), func(t *testing.T) {
			var (
				e     = testEngine(t, cfg, 12)
				rng   = rand.New(rand.NewSource(13))
				seen  = make(map[int64]bool)
				pages = make(map[int]bool)
			)
			for i := 0; i < 2000; i++ {
				id, err := e.Random(rng)
				if err != nil {
					t.Fatal(err)
				}
				ix, err := e.Encode(id)
				if err != nil {
					t.Fatalf("random identifier %s: %s", e.FormatIdentifier(id), err)
				}
				seen[ix.Int64()] = true
				pages[id.Page] = true
			}
			if got, want := len(seen), int(e.N().Int64()); got != want {
				t.Errorf("saw %d distinct indexes, want %d", got, want)
			}
			if len(pages) != cfg.Pages {
				t.Errorf("saw %d distinct pages, want %d", len(pages), cfg.Pages)
			}
		})
	}
}
