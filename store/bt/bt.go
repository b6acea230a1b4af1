// Package bt implements a bookmark store on Google Cloud Bigtable.
package bt

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigtable"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
	"github.com/tdjsnelling/babel/store/compress"
)

var (
	_ bookmark.Store   = &Store{}
	_ bookmark.Counter = &Store{}
)

// Store is a Google Cloud Bigtable-backed implementation of a bookmark store.
// Each room is a row keyed by the hex of its handle.
type Store struct {
	t    *bigtable.Table
	kind compress.Kind
}

const (
	// Family is the column family that holds rooms.
	// It must exist in the table.
	Family = "room"

	roomcol   = "room"
	keyPrefix = "b:"
	keyEnd    = "b;" // just past every key with keyPrefix
)

var errEmptyItems = errors.New("empty items")

// New produces a new Store,
// compressing new rooms with the compressor of kind k.
func New(t *bigtable.Table, k compress.Kind) *Store {
	return &Store{t: t, kind: k}
}

// Get gets the room with handle h.
func (s *Store) Get(ctx context.Context, h bookmark.Handle) (bookmark.Room, error) {
	row, err := s.t.ReadRow(ctx, rowKey(h), bigtable.RowFilter(bigtable.LatestNFilter(1)))
	if err != nil {
		return "", errors.Wrapf(err, "reading row %s", h)
	}
	if len(row) == 0 {
		return "", bookmark.ErrNotFound
	}
	items := row[Family]
	if len(items) == 0 {
		return "", errEmptyItems
	}
	r, err := compress.Decode(items[0].Value)
	return r, errors.Wrapf(err, "decoding row %s", h)
}

// Put adds a room to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	b, err := compress.Encode(s.kind, r)
	if err != nil {
		return bookmark.Zero, false, err
	}

	mut := bigtable.NewMutation()
	mut.Set(Family, roomcol, bigtable.Now(), b)

	// Applied only when the row has no cells yet.
	cmut := bigtable.NewCondMutation(bigtable.LatestNFilter(1), nil, mut)

	var (
		alreadyPresent bool
		h              = r.Handle()
	)
	err = s.t.Apply(ctx, rowKey(h), cmut, bigtable.GetCondMutationResult(&alreadyPresent))
	if err != nil {
		return bookmark.Zero, false, errors.Wrapf(err, "writing row %s", h)
	}
	return h, !alreadyPresent, nil
}

// ListHandles produces all handles in the store after start, in lexicographic order.
func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	var innerErr error
	rowFn := func(row bigtable.Row) bool {
		key := row.Key()
		h, err := handleFromKey(key)
		if err != nil {
			innerErr = errors.Wrapf(err, "extracting handle from key %s", key)
			return false
		}
		if h == start {
			return true
		}
		if err = f(h); err != nil {
			innerErr = err
			return false
		}
		return true
	}
	err := s.t.ReadRows(ctx, bigtable.NewRange(rowKey(start), keyEnd), rowFn, bigtable.RowFilter(bigtable.StripValueFilter()))
	if err != nil {
		return err
	}
	return innerErr
}

// Count implements bookmark.Counter.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.t.ReadRows(ctx, bigtable.PrefixRange(keyPrefix), func(bigtable.Row) bool {
		n++
		return true
	}, bigtable.RowFilter(bigtable.StripValueFilter()))
	return n, err
}

func rowKey(h bookmark.Handle) string {
	return fmt.Sprintf("%s%x", keyPrefix, h[:])
}

func handleFromKey(key string) (bookmark.Handle, error) {
	if len(key) < len(keyPrefix) {
		return bookmark.Zero, errors.New("short key")
	}
	return bookmark.ParseHandle(key[len(keyPrefix):])
}

func init() {
	store.Register("bt", func(ctx context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		project, ok := conf["project"].(string)
		if !ok {
			return nil, errors.New(`missing "project" parameter`)
		}
		instance, ok := conf["instance"].(string)
		if !ok {
			return nil, errors.New(`missing "instance" parameter`)
		}
		table, ok := conf["table"].(string)
		if !ok {
			return nil, errors.New(`missing "table" parameter`)
		}

		// Without creds the client uses application default credentials,
		// or the emulator named by BIGTABLE_EMULATOR_HOST.
		var options []option.ClientOption
		if creds, ok := conf["creds"].(string); ok {
			options = append(options, option.WithCredentialsFile(creds))
		}
		k, err := compress.FromConfig(conf)
		if err != nil {
			return nil, err
		}
		c, err := bigtable.NewClient(ctx, project, instance, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating bigtable client")
		}
		return New(c.Open(table), k), nil
	})
}
