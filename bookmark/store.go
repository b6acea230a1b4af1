package bookmark

import (
	"context"

	"github.com/pkg/errors"
)

// Getter is a read-only Store (qv).
type Getter interface {
	// Get gets a room by its handle.
	Get(context.Context, Handle) (Room, error)

	// ListHandles calls a function for each handle in the store in lexicographic order,
	// beginning with the first handle _after_ the specified one.
	//
	// The calls reflect at least the set of handles
	// known at the moment ListHandles was called.
	// It is unspecified whether later changes,
	// that happen concurrently with ListHandles,
	// are reflected.
	//
	// If the callback function returns an error,
	// ListHandles exits with that error.
	ListHandles(context.Context, Handle, func(Handle) error) error
}

// Store is a bookmark store.
// It stores rooms,
// each retrievable by its handle.
type Store interface {
	Getter

	// Put adds r to the store if it was not already present.
	// It returns r's handle and a boolean that is true iff the room had to be added.
	Put(ctx context.Context, r Room) (h Handle, added bool, err error)
}

// Counter is a store that can count its bookmarks cheaply.
type Counter interface {
	Count(context.Context) (int64, error)
}

// ErrNotFound is the error returned
// when a Getter tries to access a non-existent handle.
var ErrNotFound = errors.New("not found")

// Count returns the number of bookmarks in g,
// using Counter if g implements it and walking ListHandles otherwise.
func Count(ctx context.Context, g Getter) (int64, error) {
	if c, ok := g.(Counter); ok {
		return c.Count(ctx)
	}
	var n int64
	err := g.ListHandles(ctx, Zero, func(Handle) error {
		n++
		return nil
	})
	return n, err
}

// Resolve interprets roomOrHandle,
// which is either the text form of a handle or a room number.
// A handle is looked up and its room returned (ErrNotFound if it is unknown).
// A room is canonicalized, stored if it is new, and returned with its handle.
func Resolve(ctx context.Context, s Store, roomOrHandle string) (Room, Handle, error) {
	if IsHandle(roomOrHandle) {
		h, err := ParseHandle(roomOrHandle)
		if err != nil {
			return "", Zero, errors.Wrap(ErrNotFound, err.Error())
		}
		room, err := s.Get(ctx, h)
		if err != nil {
			return "", Zero, errors.Wrapf(err, "getting bookmark %s", h)
		}
		return room, h, nil
	}

	room := CanonicalRoom(roomOrHandle)
	h, _, err := s.Put(ctx, room)
	if err != nil {
		return "", Zero, errors.Wrapf(err, "storing bookmark for room %s", room.Short())
	}
	return room, h, nil
}
