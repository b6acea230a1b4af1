package babel

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bignum"
)

// Alphabet is an ordered set of symbols.
// A symbol's position is its digit value,
// so a string of symbols is a number written in base Size().
type Alphabet struct {
	symbols []rune
	index   map[rune]byte
	radix   *bignum.Radix
}

// NewAlphabet produces an Alphabet over the given symbols,
// precomputing conversion tables for strings of up to maxLen symbols.
func NewAlphabet(symbols string, maxLen int) (*Alphabet, error) {
	a := &Alphabet{
		symbols: []rune(symbols),
		index:   make(map[rune]byte),
	}
	for i, r := range a.symbols {
		if _, ok := a.index[r]; ok {
			return nil, errors.Errorf("duplicate symbol %q", r)
		}
		a.index[r] = byte(i)
	}
	radix, err := bignum.NewRadix(len(a.symbols), maxLen)
	if err != nil {
		return nil, errors.Wrap(err, "building radix tables")
	}
	a.radix = radix
	return a, nil
}

// Size is k, the number of symbols.
func (a *Alphabet) Size() int {
	return len(a.symbols)
}

// Symbol returns the symbol with digit value i.
func (a *Alphabet) Symbol(i int) rune {
	return a.symbols[i]
}

// Contains tells whether r is in the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

func (a *Alphabet) String() string {
	return string(a.symbols)
}

// Encode interprets content as a base-k number, most significant symbol first.
func (a *Alphabet) Encode(content string) (*big.Int, error) {
	digits := make([]byte, 0, len(content))
	pos := 0
	for _, r := range content {
		d, ok := a.index[r]
		if !ok {
			return nil, fieldErr("content", strconv.Itoa(pos)+":"+string(r), ErrInvalidSymbol)
		}
		digits = append(digits, d)
		pos++
	}
	return a.radix.Parse(digits)
}

// Decode renders v as exactly length symbols,
// left-padded with the zero-valued symbol.
func (a *Alphabet) Decode(v *big.Int, length int) (string, error) {
	digits, err := a.radix.Format(v, length)
	if err != nil {
		return "", errors.Wrap(err, "decoding block")
	}
	var b strings.Builder
	b.Grow(length)
	for _, d := range digits {
		b.WriteRune(a.symbols[d])
	}
	return b.String(), nil
}
