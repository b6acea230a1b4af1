// Package bookmark maps library rooms to short public handles.
//
// A room number can run to thousands of characters,
// too long to put in a URL or read aloud.
// A handle is the SHA2-256 hash of the room's canonical text,
// written as @ followed by 64 hex digits.
// Since the handle is computed from the room,
// the mapping is content-addressed:
// storing a room twice yields the same handle,
// and any store can verify what it holds.
package bookmark

import (
	"bytes"
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

type (
	// Room is the canonical text of a room number:
	// lowercase, with no leading zeros.
	Room string

	// Handle is the public name of a room: the sha256 hash of its canonical text.
	Handle [sha256.Size]byte
)

// Prefix marks the text form of a handle.
const Prefix = "@"

// CanonicalRoom lowercases s and strips its leading zeros.
func CanonicalRoom(s string) Room {
	s = strings.ToLower(s)
	if t := strings.TrimLeft(s, "0"); t != "" {
		s = t
	} else if s != "" {
		s = "0"
	}
	return Room(s)
}

// Handle computes the handle of a room.
func (r Room) Handle() Handle {
	return sha256.Sum256([]byte(r))
}

// Short abbreviates a long room as its first and last eight characters.
func (r Room) Short() string {
	if len(r) > 16 {
		return string(r[:8]) + "..." + string(r[len(r)-8:])
	}
	return string(r)
}

// Zero is the zero value of a Handle.
var Zero Handle

// String renders h as @ followed by lowercase hex.
func (h Handle) String() string {
	return Prefix + h.Hex()
}

// Hex renders h as lowercase hex, without the prefix.
func (h Handle) Hex() string {
	return hex.EncodeToString(h[:])
}

// IsZero tells whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h == Zero
}

// Less tells whether h sorts before other.
func (h Handle) Less(other Handle) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// Value implements driver.Valuer.
func (h Handle) Value() (driver.Value, error) {
	return h[:], nil
}

// Scan implements sql.Scanner.
func (h *Handle) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("cannot scan %T into a handle", src)
	}
	if len(b) != sha256.Size {
		return errors.Errorf("got %d bytes, want %d", len(b), sha256.Size)
	}
	copy(h[:], b)
	return nil
}

// IsHandle tells whether s looks like the text form of a handle rather than a room.
func IsHandle(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// ParseHandle parses the text form of a handle.
// The @ prefix is optional.
func ParseHandle(s string) (Handle, error) {
	var h Handle
	s = strings.TrimPrefix(s, Prefix)
	if len(s) != 2*sha256.Size {
		return Zero, errors.Errorf("handle has %d hex digits, want %d", len(s), 2*sha256.Size)
	}
	_, err := hex.Decode(h[:], []byte(s))
	return h, errors.Wrap(err, "decoding handle")
}

// HandleFromBytes copies b into a Handle.
func HandleFromBytes(b []byte) Handle {
	var out Handle
	copy(out[:], b)
	return out
}
