// Package gcs implements a bookmark store on Google Cloud Storage.
package gcs

import (
	"context"
	stderrs "errors"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
	"github.com/tdjsnelling/babel/store/compress"
)

var _ bookmark.Store = &Store{}

// Store is a Google Cloud Storage-based implementation of a bookmark store.
// Each room is an object named by the hex of its handle
// and encoded with package compress.
type Store struct {
	bucket *storage.BucketHandle
	kind   compress.Kind
}

// New produces a new Store,
// compressing new rooms with the compressor of kind k.
func New(bucket *storage.BucketHandle, k compress.Kind) *Store {
	return &Store{bucket: bucket, kind: k}
}

const objPrefix = "bookmarks/"

// Get gets the room with handle h.
func (s *Store) Get(ctx context.Context, h bookmark.Handle) (bookmark.Room, error) {
	name := objName(h)
	r, err := s.bucket.Object(name).NewReader(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return "", bookmark.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading info of object %s", name)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrapf(err, "reading contents of object %s", name)
	}
	room, err := compress.Decode(b)
	return room, errors.Wrapf(err, "decoding object %s", name)
}

// Put adds a room to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	b, err := compress.Encode(s.kind, r)
	if err != nil {
		return bookmark.Zero, false, err
	}

	var (
		h     = r.Handle()
		name  = objName(h)
		obj   = s.bucket.Object(name).If(storage.Conditions{DoesNotExist: true})
		w     = obj.NewWriter(ctx)
		added = true
	)
	w.ContentType = "application/octet-stream"

	_, err = w.Write(b)
	if err == nil {
		// The precondition is checked when the upload completes.
		err = w.Close()
	} else {
		w.Close()
	}

	var e *googleapi.Error
	if stderrs.As(err, &e) && e.Code == http.StatusPreconditionFailed {
		added, err = false, nil
	}
	if err != nil {
		return bookmark.Zero, false, errors.Wrapf(err, "writing object %s", name)
	}
	return h, added, nil
}

// ListHandles produces all handles in the store, in lexicographic order.
func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	// Google Cloud Storage iterators have no API for starting in the middle of a bucket.
	// But they can filter by object-name prefix.
	// So we take (the hex encoding of) `start` and repeatedly compute prefixes for the objects we want.
	// If `start` is e67a, for example, the sequence of generated prefixes is:
	//   e67b e67c e67d e67e e67f
	//   e68 e69 e6a e6b e6c e6d e6e e6f
	//   e7 e8 e9 ea eb ec ed ee ef
	//   f
	return eachHexPrefix(start.Hex(), false, func(prefix string) error {
		return s.listHandles(ctx, prefix, f)
	})
}

func (s *Store) listHandles(ctx context.Context, prefix string, f func(bookmark.Handle) error) error {
	iter := s.bucket.Objects(ctx, &storage.Query{Prefix: objPrefix + prefix})
	for {
		obj, err := iter.Next()
		if stderrs.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		h, err := bookmark.ParseHandle(strings.TrimPrefix(obj.Name, objPrefix))
		if err != nil {
			return errors.Wrapf(err, "decoding object name %s", obj.Name)
		}
		err = f(h)
		if err != nil {
			return err
		}
	}
}

func eachHexPrefix(prefix string, incl bool, f func(string) error) error {
	prefix = strings.ToLower(prefix)
	for len(prefix) > 0 {
		end := hexval(prefix[len(prefix)-1:][0])
		if !incl {
			end++
		}
		prefix = prefix[:len(prefix)-1]
		for c := end; c < 16; c++ {
			err := f(prefix + string(hexdigit(c)))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func hexval(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(10 + b - 'a')
	case 'A' <= b && b <= 'F':
		return int(10 + b - 'A')
	}
	return 0
}

func hexdigit(n int) byte {
	if n < 10 {
		return byte(n + '0')
	}
	return byte(n - 10 + 'a')
}

func objName(h bookmark.Handle) string {
	return objPrefix + h.Hex()
}

func init() {
	store.Register("gcs", func(ctx context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		var options []option.ClientOption
		creds, ok := conf["creds"].(string)
		if !ok {
			return nil, errors.New(`missing "creds" parameter`)
		}
		bucketName, ok := conf["bucket"].(string)
		if !ok {
			return nil, errors.New(`missing "bucket" parameter`)
		}
		options = append(options, option.WithCredentialsFile(creds))
		c, err := storage.NewClient(ctx, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		k, err := compress.FromConfig(conf)
		if err != nil {
			return nil, err
		}
		return New(c.Bucket(bucketName), k), nil
	})
}
