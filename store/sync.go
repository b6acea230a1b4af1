package store

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tdjsnelling/babel/bookmark"
)

// Sync synchronizes two or more bookmark stores.
// It runs ListHandles on all input stores.
// When a handle is found to be in some but not all stores,
// its room is added to the stores where it's missing.
// Migrating bookmarks from one backend to another is Sync on an empty destination.
func Sync(ctx context.Context, stores []bookmark.Store) error {
	if len(stores) < 2 {
		return nil
	}

	type tuple struct {
		s  bookmark.Store
		ch <-chan bookmark.Handle
		h  *bookmark.Handle
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx2 := errgroup.WithContext(ctx)

	tuples := make([]*tuple, 0, len(stores))
	for _, s := range stores {
		s := s
		ch := make(chan bookmark.Handle)
		eg.Go(func() error {
			defer close(ch)
			return s.ListHandles(ctx2, bookmark.Zero, func(h bookmark.Handle) error {
				select {
				case <-ctx2.Done():
					return ctx2.Err()
				case ch <- h:
				}
				return nil
			})
		})
		tuples = append(tuples, &tuple{s: s, ch: ch})
	}

	advance := func(tup *tuple) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case h, ok := <-tup.ch:
			if ok {
				tup.h = &h
			} else {
				tup.h = nil
			}
		}
		return nil
	}

	havers := tuples
	for {
		for _, tup := range havers {
			if err := advance(tup); err != nil {
				return err
			}
		}

		sort.Slice(tuples, func(i, j int) bool {
			hi := tuples[i].h
			hj := tuples[j].h
			if hi != nil {
				if hj != nil {
					return hi.Less(*hj)
				}
				return true
			}
			return false
		})

		if tuples[0].h == nil {
			// We've reached the end of input on all channels.
			return eg.Wait()
		}

		h := *(tuples[0].h)

		havers = []*tuple{tuples[0]}
		i := 1
		for i < len(tuples) && tuples[i].h != nil && *(tuples[i].h) == h {
			havers = append(havers, tuples[i])
			i++
		}

		if i == len(tuples) {
			continue
		}

		room, err := havers[0].s.Get(ctx, h)
		if err != nil {
			return errors.Wrapf(err, "getting room for %s", h)
		}
		if room.Handle() != h {
			return errors.Errorf("store holds room %s under wrong handle %s", room.Short(), h)
		}

		for _, tup := range tuples[i:] {
			if _, _, err = tup.s.Put(ctx, room); err != nil {
				return errors.Wrapf(err, "storing room for %s", h)
			}
		}
	}
}
