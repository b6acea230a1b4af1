package testutil

import (
	"context"
	"sort"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"

	"github.com/tdjsnelling/babel/bookmark"
)

// AllHandles writes a random set of random rooms to an empty store
// and makes sure that the right set of handles comes back in a call to ListHandles.
func AllHandles(ctx context.Context, t *testing.T, storeFactory func() bookmark.Store) {
	if err := quick.Check(allHandlesHelper(ctx, t, storeFactory), &quick.Config{MaxCount: 20}); err != nil {
		t.Error(err)
	}
}

func allHandlesHelper(ctx context.Context, t *testing.T, storeFactory func() bookmark.Store) func([]string) bool {
	return func(rooms []string) bool {
		var (
			store = storeFactory()
			want  []bookmark.Handle
		)
		for _, room := range rooms {
			h, added, err := store.Put(ctx, bookmark.Room(room))
			if err != nil {
				t.Fatal(err)
			}
			if added {
				want = append(want, h)
			}
		}
		var got []bookmark.Handle
		err := store.ListHandles(ctx, bookmark.Zero, func(h bookmark.Handle) error {
			got = append(got, h)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		sort.Slice(want, func(i, j int) bool { return want[i].Less(want[j]) })

		if diff := cmp.Diff(want, got); diff != "" {
			t.Logf("mismatch (-want +got):\n%s", diff)
			return false
		}
		return true
	}
}
