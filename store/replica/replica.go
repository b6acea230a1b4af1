// Package replica implements a bookmark store that writes through to several nested stores.
// A deployment can keep serving from a local database
// while mirroring every new bookmark to object storage.
package replica

import (
	"context"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
)

var _ bookmark.Store = (*Store)(nil)

// Store is a bookmark store that delegates reads and writes to two sets of nested stores.
// One set is synchronous:
// writes to all of these must succeed before a call to Put returns,
// and an error from any will cause Put to fail.
// The other set is asynchronous:
// a call to Put queues writes on these stores but does not wait for them to finish.
// However, if any asynchronous write encounters an error,
// the whole Store is put into an error state and further operations will fail.
type Store struct {
	sync        []bookmark.Store
	async       []asyncChans
	asyncStores []bookmark.Store
	cancel      context.CancelFunc

	mu  sync.Mutex // protects err
	err error      // the error from an async goroutine, if any
}

type asyncChans struct {
	rooms chan<- bookmark.Room
	errs  <-chan error
}

// New produces a new Store.
// The set of synchronous stores must be non-empty.
// The set of asynchronous stores may be empty.
// If there are any asynchronous stores,
// goroutines are launched for them,
// and canceling the given context object causes those to exit,
// placing the Store in an error state.
//
// Normally, writes to asynchronous stores do not block calls to Put,
// but the queue for each nested store has a fixed length given by n,
// which must be 1 or greater.
// If any async store falls too far behind,
// Put will block until all requests can be queued.
func New(ctx context.Context, sync []bookmark.Store, async []bookmark.Store, n int) *Store {
	result := &Store{sync: sync, asyncStores: async}

	if len(async) > 0 {
		ctx, result.cancel = context.WithCancel(ctx)

		selectCases := make([]reflect.SelectCase, 1+len(async))

		for i, a := range async {
			var (
				rooms = make(chan bookmark.Room, n)
				errs  = make(chan error, 1)
			)

			result.async = append(result.async, asyncChans{rooms: rooms, errs: errs})

			selectCases[i].Dir = reflect.SelectRecv
			selectCases[i].Chan = reflect.ValueOf(errs)

			go runAsync(ctx, a, rooms, errs)
		}

		selectCases[len(async)].Dir = reflect.SelectRecv
		selectCases[len(async)].Chan = reflect.ValueOf(ctx.Done())

		go func() {
			_, errval, ok := reflect.Select(selectCases)
			result.cancel()
			result.mu.Lock()
			if ok {
				result.err = errval.Interface().(error)
			} else {
				result.err = ctx.Err()
			}
			result.mu.Unlock()
		}()
	}

	return result
}

// Runs as a goroutine until ctx is canceled or an error occurs (which it writes to errs).
func runAsync(ctx context.Context, s bookmark.Store, rooms <-chan bookmark.Room, errs chan<- error) {
	defer close(errs)

	for {
		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			return

		case r := <-rooms:
			_, _, err := s.Put(ctx, r)
			if err != nil {
				errs <- err
				return
			}
		}
	}
}

// Put implements bookmark.Store.Put.
// The room is stored in all synchronous nested stores.
// An error from any of them causes Put to return an error.
//
// Some nested stores may already have the room and others may not,
// in which case the value of `added`
// (the boolean return value)
// is true if any of them added it.
//
// A request to write the room is queued for any asynchronous nested stores.
// Normally this does not block the call to Put,
// but if any async store falls too far behind,
// Put must wait for space to open in its request queue before proceeding.
// The size of this queue is given by the int passed to New.
func (s *Store) Put(ctx context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	if err := s.checkErr(); err != nil {
		return bookmark.Zero, false, errors.Wrap(err, "in async-store goroutine")
	}

	var (
		addedMu sync.Mutex
		added   bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, nested := range s.sync {
		nested := nested
		g.Go(func() error {
			_, a, err := nested.Put(gctx, r)
			if err != nil {
				return err
			}
			addedMu.Lock()
			added = added || a
			addedMu.Unlock()
			return nil
		})
	}

	for _, a := range s.async {
		select {
		case <-ctx.Done():
			return bookmark.Zero, false, ctx.Err()

		case a.rooms <- r:
		}
	}

	if err := g.Wait(); err != nil {
		return bookmark.Zero, false, err
	}
	return r.Handle(), added, nil
}

// Get implements bookmark.Getter.
// It delegates the request to all of the synchronous stores in s,
// returning the result from the first one to respond without error
// and canceling the request to the others.
// If all synchronous stores respond with an error,
// one of those errors is returned.
func (s *Store) Get(ctx context.Context, h bookmark.Handle) (bookmark.Room, error) {
	if err := s.checkErr(); err != nil {
		return "", errors.Wrap(err, "in async-store goroutine")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		g  errgroup.Group
		ch = make(chan bookmark.Room, len(s.sync))
	)
	for _, nested := range s.sync {
		nested := nested
		g.Go(func() error {
			r, err := nested.Get(ctx, h)
			if err != nil {
				return err
			}
			ch <- r
			cancel()
			return nil
		})
	}

	err := g.Wait()
	select {
	case r := <-ch:
		return r, nil
	default:
		return "", err
	}
}

// ListHandles implements bookmark.Getter.
// It delegates the request to all of the synchronous stores in s
// and synthesizes the result from the union of their handles.
func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	if err := s.checkErr(); err != nil {
		return errors.Wrap(err, "in async-store goroutine")
	}

	chans := make([]chan bookmark.Handle, len(s.sync))
	for i := 0; i < len(s.sync); i++ {
		chans[i] = make(chan bookmark.Handle, 1)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	for i, nested := range s.sync {
		var (
			i      = i
			nested = nested
		)
		g.Go(func() error {
			defer close(chans[i])
			return nested.ListHandles(ctx, start, func(h bookmark.Handle) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case chans[i] <- h:
					return nil
				}
			})
		})
	}

	// A closed channel yields the zero handle, which marks its end.
	last := start
	next := make([]bookmark.Handle, len(s.sync))
	for i, ch := range chans {
		next[i] = <-ch
	}

	for {
		var (
			best      bookmark.Handle
			bestIndex int
		)
		for i, h := range next {
			if h.IsZero() {
				continue
			}
			if h == last {
				h = <-chans[i]
				next[i] = h
				if h.IsZero() {
					continue
				}
			}
			if best.IsZero() || h.Less(best) {
				best, bestIndex = h, i
			}
		}
		if best.IsZero() {
			break
		}
		if err := f(best); err != nil {
			return err
		}
		last = best
		next[bestIndex] = <-chans[bestIndex]
	}

	return g.Wait()
}

func (s *Store) checkErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the asynchronous writers and closes every nested store.
// Rooms still queued for the asynchronous stores are dropped.
func (s *Store) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	var firstErr error
	for _, nested := range s.sync {
		if err := store.Close(nested); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, nested := range s.asyncStores {
		if err := store.Close(nested); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func nestedList(ctx context.Context, conf map[string]interface{}, key string) ([]bookmark.Store, error) {
	var confs []map[string]interface{}
	switch v := conf[key].(type) {
	case nil:
		return nil, nil
	case []map[string]interface{}:
		confs = v
	case []interface{}:
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("%q item is a %T, not an object", key, item)
			}
			confs = append(confs, m)
		}
	default:
		return nil, errors.Errorf("%q parameter is a %T, not a list", key, v)
	}

	var result []bookmark.Store
	for _, nested := range confs {
		s, err := store.FromConfig(ctx, nested)
		if err != nil {
			return nil, errors.Wrapf(err, "creating nested %s store", key)
		}
		result = append(result, s)
	}
	return result, nil
}

func init() {
	store.Register("replica", func(ctx context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		syncStores, err := nestedList(ctx, conf, "sync")
		if err != nil {
			return nil, err
		}
		if len(syncStores) == 0 {
			return nil, errors.New(`missing "sync" parameter`)
		}
		asyncStores, err := nestedList(ctx, conf, "async")
		if err != nil {
			return nil, err
		}

		queueLen, ok := store.Int(conf, "queuelen")
		if !ok {
			queueLen = 10
		}

		return New(ctx, syncStores, asyncStores, queueLen), nil
	})
}
