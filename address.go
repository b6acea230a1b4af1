package babel

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Identifier is the location of a page: ROOM.WALL.SHELF.BOOK.PAGE.
// All coordinates are 1-based.
type Identifier struct {
	Room  *big.Int
	Wall  int
	Shelf int
	Book  int
	Page  int
}

// Equal tells whether two identifiers denote the same page.
func (id Identifier) Equal(other Identifier) bool {
	if (id.Room == nil) != (other.Room == nil) {
		return false
	}
	if id.Room != nil && id.Room.Cmp(other.Room) != 0 {
		return false
	}
	return id.Wall == other.Wall && id.Shelf == other.Shelf && id.Book == other.Book && id.Page == other.Page
}

// Tail renders the part of the identifier after the room: WALL.SHELF.BOOK.PAGE.
func (id Identifier) Tail() string {
	return strings.Join([]string{
		strconv.Itoa(id.Wall),
		strconv.Itoa(id.Shelf),
		strconv.Itoa(id.Book),
		strconv.Itoa(id.Page),
	}, ".")
}

// SplitIdentifier separates ROOM from WALL.SHELF.BOOK.PAGE without interpreting either.
// It is for callers that substitute something else,
// such as a bookmark handle,
// for the room.
func SplitIdentifier(s string) (room, tail string, err error) {
	parts := strings.Split(s, ".")
	if len(parts) != 5 {
		return "", "", fieldErr("identifier", s, errors.Wrapf(ErrMalformedIdentifier, "%d fields, want 5", len(parts)))
	}
	return parts[0], strings.Join(parts[1:], "."), nil
}

// ParseIdentifier parses ROOM.WALL.SHELF.BOOK.PAGE,
// with the room written in the engine's room base.
// Only syntax is checked here; Encode checks ranges.
func (e *Engine) ParseIdentifier(s string) (Identifier, error) {
	room, tail, err := SplitIdentifier(s)
	if err != nil {
		return Identifier{}, err
	}
	r, err := e.ParseRoom(room)
	if err != nil {
		return Identifier{}, err
	}
	id := Identifier{Room: r}
	fields := strings.Split(tail, ".")
	for i, dst := range []*int{&id.Wall, &id.Shelf, &id.Book, &id.Page} {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return Identifier{}, fieldErr(coordNames[i], fields[i], ErrMalformedIdentifier)
		}
		*dst = n
	}
	return id, nil
}

var coordNames = []string{"wall", "shelf", "book", "page"}

// ParseRoom parses a room number written in the room base.
// Letters may be in either case.
func (e *Engine) ParseRoom(s string) (*big.Int, error) {
	if s == "" {
		return nil, fieldErr("room", s, ErrMalformedIdentifier)
	}
	digits := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		d := digitVal(s[i])
		if d < 0 || d >= e.cfg.RoomBase {
			return nil, fieldErr("room", s, ErrInvalidRoomSymbol)
		}
		digits[i] = byte(d)
	}
	return e.roomRadix.Parse(digits)
}

func digitVal(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// FormatRoom renders a room number in the room base, lowercase, without leading zeros.
func (e *Engine) FormatRoom(room *big.Int) string {
	return room.Text(e.cfg.RoomBase)
}

// FormatIdentifier renders id as ROOM.WALL.SHELF.BOOK.PAGE.
func (e *Engine) FormatIdentifier(id Identifier) string {
	return e.FormatRoom(id.Room) + "." + id.Tail()
}

// Encode maps an identifier to its 0-based block index.
// At book granularity the page does not contribute to the index,
// though it is still range-checked.
func (e *Engine) Encode(id Identifier) (*big.Int, error) {
	cfg := e.cfg
	for i, c := range []struct {
		val, max int
	}{
		{id.Wall, cfg.Walls},
		{id.Shelf, cfg.Shelves},
		{id.Book, cfg.Books},
		{id.Page, cfg.Pages},
	} {
		if c.val < 1 || c.val > c.max {
			return nil, fieldErr(coordNames[i], strconv.Itoa(c.val), errors.Wrapf(ErrOutOfBounds, "must be between 1 and %d", c.max))
		}
	}
	if id.Room == nil || id.Room.Sign() < 1 || id.Room.Cmp(e.maxRoom) > 0 {
		return nil, e.roomErr(id.Room)
	}

	local := ((id.Wall-1)*cfg.Shelves+(id.Shelf-1))*cfg.Books + (id.Book - 1)
	if cfg.Granularity == PageLevel {
		local = local*cfg.Pages + (id.Page - 1)
	}

	index := new(big.Int).Sub(id.Room, one)
	index.Mul(index, e.span)
	index.Add(index, big.NewInt(int64(local)))

	// The last room may be only partly populated.
	if index.Cmp(e.n) >= 0 {
		return nil, e.roomErr(id.Room)
	}
	return index, nil
}

func (e *Engine) roomErr(room *big.Int) error {
	val := ""
	if room != nil {
		val = e.FormatRoom(room)
	}
	return fieldErr("room", val, errors.Wrap(ErrOutOfBounds, "no such room"))
}

// Decode maps a block index in [0,N) back to its identifier.
// At book granularity the index names a book and page is attached as given;
// at page granularity page is ignored.
func (e *Engine) Decode(index *big.Int, page int) Identifier {
	cfg := e.cfg

	room, rem := new(big.Int).QuoRem(index, e.span, new(big.Int))
	room.Add(room, one)
	local := int(rem.Int64())

	if cfg.Granularity == PageLevel {
		page = local%cfg.Pages + 1
		local /= cfg.Pages
	}
	book := local%cfg.Books + 1
	local /= cfg.Books
	shelf := local%cfg.Shelves + 1
	local /= cfg.Shelves
	wall := local + 1

	return Identifier{Room: room, Wall: wall, Shelf: shelf, Book: book, Page: page}
}

// MaxRoom is the largest valid room number, ceil(N / span).
func (e *Engine) MaxRoom() *big.Int {
	return new(big.Int).Set(e.maxRoom)
}
