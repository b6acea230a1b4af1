// Package file implements a bookmark store as a file hierarchy.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bobg/flock"
	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
	"github.com/tdjsnelling/babel/store/compress"
)

var _ bookmark.Store = &Store{}

// Store is a file-based implementation of a bookmark store.
// Each room lives in its own file, named by the hex of its handle
// and encoded with package compress.
type Store struct {
	root    string
	kind    compress.Kind
	flocker flock.Locker
}

// New produces a new Store storing data beneath `root`,
// compressing new rooms with the compressor of kind k.
func New(root string, k compress.Kind) *Store {
	return &Store{root: root, kind: k}
}

func (s *Store) roomroot() string {
	return filepath.Join(s.root, "rooms")
}

func (s *Store) roompath(h bookmark.Handle) string {
	x := h.Hex()
	return filepath.Join(s.roomroot(), x[:2], x[:4], x)
}

// Get gets the room with handle h.
func (s *Store) Get(_ context.Context, h bookmark.Handle) (bookmark.Room, error) {
	path := s.roompath(h)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", bookmark.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	r, err := compress.Decode(b)
	return r, errors.Wrapf(err, "decoding %s", path)
}

// Put adds a room to the store if it wasn't already present.
// The room is written to a temporary file and renamed into place
// while holding a lock on the destination path,
// so a concurrent reader never sees a partial room.
func (s *Store) Put(_ context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	var (
		h    = r.Handle()
		path = s.roompath(h)
		dir  = filepath.Dir(path)
	)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return bookmark.Zero, false, errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	lockpath := path + ".lock"
	if err = s.flocker.Lock(lockpath); err != nil {
		return bookmark.Zero, false, errors.Wrapf(err, "locking %s", lockpath)
	}
	defer s.flocker.Unlock(lockpath)

	if _, err = os.Stat(path); err == nil {
		return h, false, nil
	}

	b, err := compress.Encode(s.kind, r)
	if err != nil {
		return bookmark.Zero, false, err
	}

	tmp, err := os.CreateTemp(dir, "tmp-")
	if err != nil {
		return bookmark.Zero, false, errors.Wrapf(err, "creating temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(b)
	if err != nil {
		tmp.Close()
		return bookmark.Zero, false, errors.Wrapf(err, "writing data to %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return bookmark.Zero, false, errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return bookmark.Zero, false, errors.Wrapf(err, "renaming into %s", path)
	}

	return h, true, nil
}

// ListHandles produces all handles in the store, in lexicographic order.
func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	err := os.MkdirAll(s.roomroot(), 0755)
	if err != nil {
		return errors.Wrapf(err, "ensuring %s exists", s.roomroot())
	}

	topLevel, err := os.ReadDir(s.roomroot())
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", s.roomroot())
	}

	startHex := start.Hex()
	topIndex := sort.Search(len(topLevel), func(n int) bool {
		return topLevel[n].Name() >= startHex[:2]
	})
	for i := topIndex; i < len(topLevel); i++ {
		topInfo := topLevel[i]
		if !topInfo.IsDir() {
			continue
		}
		topName := topInfo.Name()
		if len(topName) != 2 {
			continue
		}
		if _, err = strconv.ParseInt(topName, 16, 64); err != nil {
			continue
		}

		midLevel, err := os.ReadDir(filepath.Join(s.roomroot(), topName))
		if err != nil {
			return errors.Wrapf(err, "reading dir %s/%s", s.roomroot(), topName)
		}
		midIndex := sort.Search(len(midLevel), func(n int) bool {
			return midLevel[n].Name() >= startHex[:4]
		})
		for j := midIndex; j < len(midLevel); j++ {
			midInfo := midLevel[j]
			if !midInfo.IsDir() {
				continue
			}
			midName := midInfo.Name()
			if len(midName) != 4 {
				continue
			}
			if _, err = strconv.ParseInt(midName, 16, 64); err != nil {
				continue
			}

			roomInfos, err := os.ReadDir(filepath.Join(s.roomroot(), topName, midName))
			if err != nil {
				return errors.Wrapf(err, "reading dir %s/%s/%s", s.roomroot(), topName, midName)
			}

			index := sort.Search(len(roomInfos), func(n int) bool {
				return roomInfos[n].Name() > startHex
			})
			for k := index; k < len(roomInfos); k++ {
				roomInfo := roomInfos[k]
				if roomInfo.IsDir() {
					continue
				}

				h, err := bookmark.ParseHandle(roomInfo.Name())
				if err != nil {
					continue
				}

				err = f(h)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		k, err := compress.FromConfig(conf)
		if err != nil {
			return nil, err
		}
		return New(root, k), nil
	})
}
