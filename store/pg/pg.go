// Package pg implements a bookmark store in a Postgresql database.
package pg

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
)

var _ bookmark.Store = &Store{}

// Store is a Postgresql-based bookmark store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `bookmarks` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
  handle BYTEA PRIMARY KEY NOT NULL,
  room TEXT NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create table `bookmarks`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get gets the room with handle h.
func (s *Store) Get(ctx context.Context, h bookmark.Handle) (bookmark.Room, error) {
	const q = `SELECT room FROM bookmarks WHERE handle = $1`

	var r string
	err := s.db.QueryRowContext(ctx, q, h).Scan(&r)
	if stderrs.Is(err, sql.ErrNoRows) {
		return "", bookmark.ErrNotFound
	}
	return bookmark.Room(r), errors.Wrapf(err, "getting bookmark %s", h)
}

// Put adds a room to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, r bookmark.Room) (bookmark.Handle, bool, error) {
	const q = `INSERT INTO bookmarks (handle, room) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	h := r.Handle()
	res, err := s.db.ExecContext(ctx, q, h, string(r))
	if err != nil {
		return bookmark.Zero, false, errors.Wrap(err, "inserting bookmark")
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return bookmark.Zero, false, errors.Wrap(err, "counting affected rows")
	}
	return h, aff > 0, nil
}

// ListHandles produces all handles in the store, in lexicographic order.
func (s *Store) ListHandles(ctx context.Context, start bookmark.Handle, f func(bookmark.Handle) error) error {
	const q = `SELECT handle FROM bookmarks WHERE handle > $1 ORDER BY handle`
	return sqlutil.ForQueryRows(ctx, s.db, q, start, f)
}

// Count implements bookmark.Counter.
func (s *Store) Count(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM bookmarks`

	var n int64
	err := s.db.QueryRowContext(ctx, q).Scan(&n)
	return n, errors.Wrap(err, "counting bookmarks")
}

func init() {
	store.Register("pg", func(ctx context.Context, conf map[string]interface{}) (bookmark.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
