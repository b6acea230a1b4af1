package babel

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bignum"
)

// Granularity is the unit of content that one address denotes.
type Granularity string

const (
	// PageLevel addresses every page independently.
	// The page is part of the index and a block is one page long.
	PageLevel Granularity = "page"

	// BookLevel addresses books.
	// A block is a whole book and the page selects a slice of it.
	BookLevel Granularity = "book"
)

// DefaultAlphabet is 26 lowercase letters, period, comma, and space.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz., "

// Config describes the shape of a library.
type Config struct {
	Alphabet    string      `json:"alphabet"`
	Walls       int         `json:"walls"`
	Shelves     int         `json:"shelves"`
	Books       int         `json:"books"`
	Pages       int         `json:"pages"`
	Lines       int         `json:"lines"`
	Chars       int         `json:"chars"`
	Granularity Granularity `json:"granularity"`

	// RoomBase is the radix in which room numbers are written.
	RoomBase int `json:"room_base"`

	// Blank is the symbol used for padding search layouts.
	Blank string `json:"blank"`
}

// DefaultConfig is a page-level library:
// 4 walls of 5 shelves of 32 books of 410 pages,
// each page 40 lines of 80 characters.
func DefaultConfig() Config {
	return Config{
		Alphabet:    DefaultAlphabet,
		Walls:       4,
		Shelves:     5,
		Books:       32,
		Pages:       410,
		Lines:       40,
		Chars:       80,
		Granularity: PageLevel,
		RoomBase:    36,
		Blank:       " ",
	}
}

// BookConfig is DefaultConfig at book granularity.
func BookConfig() Config {
	c := DefaultConfig()
	c.Granularity = BookLevel
	return c
}

// Validate checks that c describes a usable library.
func (c Config) Validate() error {
	k := utf8.RuneCountInString(c.Alphabet)
	if k < 2 || k > bignum.MaxBase {
		return errors.Errorf("alphabet has %d symbols, want 2 to %d", k, bignum.MaxBase)
	}
	seen := make(map[rune]bool)
	for _, r := range c.Alphabet {
		if seen[r] {
			return errors.Errorf("alphabet repeats symbol %q", r)
		}
		seen[r] = true
	}
	for _, f := range []struct {
		name string
		val  int
	}{
		{"walls", c.Walls},
		{"shelves", c.Shelves},
		{"books", c.Books},
		{"pages", c.Pages},
		{"lines", c.Lines},
		{"chars", c.Chars},
	} {
		if f.val < 1 {
			return errors.Errorf("%s must be positive, got %d", f.name, f.val)
		}
	}
	if c.Granularity != PageLevel && c.Granularity != BookLevel {
		return errors.Errorf("unknown granularity %q", c.Granularity)
	}
	if c.RoomBase < 2 || c.RoomBase > 36 {
		return errors.Errorf("room base %d out of range [2,36]", c.RoomBase)
	}
	if utf8.RuneCountInString(c.Blank) != 1 || !seen[[]rune(c.Blank)[0]] {
		return errors.Errorf("blank %q is not a single alphabet symbol", c.Blank)
	}
	return nil
}

// PageLength is the number of symbols on one page.
func (c Config) PageLength() int {
	return c.Lines * c.Chars
}

// BlockLength is L, the number of symbols in one addressable block.
func (c Config) BlockLength() int {
	if c.Granularity == BookLevel {
		return c.Pages * c.PageLength()
	}
	return c.PageLength()
}

// Span is the number of blocks in one room.
func (c Config) Span() int {
	span := c.Walls * c.Shelves * c.Books
	if c.Granularity == PageLevel {
		span *= c.Pages
	}
	return span
}
