package babel

import (
	"math"
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bignum"
)

var one = big.NewInt(1)

// Engine evaluates the library's permutation in both directions
// and converts between identifiers and block indexes.
type Engine struct {
	cfg       Config
	alpha     *Alphabet
	roomRadix *bignum.Radix
	mod       *bignum.Modulus

	n, c, inv *big.Int
	span      *big.Int
	maxRoom   *big.Int
}

// NewEngine produces an Engine for the library described by cfg,
// using the given permutation constants.
func NewEngine(cfg Config, consts Constants) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	if err := consts.Verify(cfg); err != nil {
		return nil, err
	}

	alpha, err := NewAlphabet(cfg.Alphabet, cfg.BlockLength())
	if err != nil {
		return nil, errors.Wrap(err, "building alphabet")
	}

	e := &Engine{
		cfg:   cfg,
		alpha: alpha,
		mod:   bignum.NewModulus(consts.N),
		n:     new(big.Int).Set(consts.N),
		c:     new(big.Int).Set(consts.C),
		inv:   new(big.Int).Set(consts.I),
		span:  big.NewInt(int64(cfg.Span())),
	}

	e.maxRoom = new(big.Int).Add(e.n, e.span)
	e.maxRoom.Sub(e.maxRoom, one)
	e.maxRoom.Quo(e.maxRoom, e.span)

	roomDigits := int(float64(e.maxRoom.BitLen())/math.Log2(float64(cfg.RoomBase))) + 1
	e.roomRadix, err = bignum.NewRadix(cfg.RoomBase, roomDigits)
	if err != nil {
		return nil, errors.Wrap(err, "building room radix")
	}
	return e, nil
}

// Config returns the library's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Alphabet returns the library's alphabet.
func (e *Engine) Alphabet() *Alphabet { return e.alpha }

// N returns the number of blocks in the library.
func (e *Engine) N() *big.Int { return new(big.Int).Set(e.n) }

// Generate returns the content of the block at the given index:
// the base-k rendering of index·C mod N, exactly L symbols long.
func (e *Engine) Generate(index *big.Int) (string, error) {
	if index.Sign() < 0 || index.Cmp(e.n) >= 0 {
		return "", fieldErr("index", index.String(), ErrOutOfBounds)
	}
	v := e.mod.MulMod(index, e.c)
	return e.alpha.Decode(v, e.cfg.BlockLength())
}

// Invert returns the index of the block whose content is exactly content.
func (e *Engine) Invert(content string) (*big.Int, error) {
	if n := utf8.RuneCountInString(content); n != e.cfg.BlockLength() {
		return nil, fieldErr("content", strconv.Itoa(n), errors.Wrapf(ErrOutOfBounds, "length must be %d", e.cfg.BlockLength()))
	}
	v, err := e.alpha.Encode(content)
	if err != nil {
		return nil, err
	}
	return e.mod.MulMod(v, e.inv), nil
}

// Block returns the content of the whole block containing id.
// At page granularity that is the page itself; at book granularity it is the book.
func (e *Engine) Block(id Identifier) (string, error) {
	index, err := e.Encode(id)
	if err != nil {
		return "", err
	}
	return e.Generate(index)
}

// Page returns the Lines·Chars symbols of the page at id.
func (e *Engine) Page(id Identifier) (string, error) {
	block, err := e.Block(id)
	if err != nil {
		return "", err
	}
	if e.cfg.Granularity == PageLevel {
		return block, nil
	}
	// Every symbol is a single rune but not necessarily a single byte.
	runes := []rune(block)
	pl := e.cfg.PageLength()
	start := (id.Page - 1) * pl
	return string(runes[start : start+pl]), nil
}

// Lookup finds the identifier of a block with the given content.
// At book granularity page selects the page within the found book;
// at page granularity it is ignored.
func (e *Engine) Lookup(content string, page int) (Identifier, error) {
	index, err := e.Invert(content)
	if err != nil {
		return Identifier{}, err
	}
	return e.Decode(index, page), nil
}

// Lines splits a page into its Lines rows of Chars symbols.
func (e *Engine) Lines(page string) []string {
	var (
		runes = []rune(page)
		out   = make([]string, 0, e.cfg.Lines)
	)
	for i := 0; i+e.cfg.Chars <= len(runes); i += e.cfg.Chars {
		out = append(out, string(runes[i:i+e.cfg.Chars]))
	}
	return out
}
