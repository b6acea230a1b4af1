package bignum

import (
	"math/big"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// MaxBase is the largest base a Radix supports.
const MaxBase = 62

// ErrOverflow is returned by Radix.Format when a value has more digits than requested.
var ErrOverflow = errors.New("value does not fit in width")

const textDigits = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Radix converts between big integers and digit strings in one base.
// Digits are values in [0,base), most significant first.
//
// Parsing is divide-and-conquer over a table of powers base^(leaf·2^j),
// so converting an n-digit string costs O(M(n) log n) rather than the O(n²) of Horner's rule.
// A Radix is safe for concurrent use.
type Radix struct {
	base int
	leaf int // digits that always fit in a uint64

	mu   sync.Mutex                 // serializes growth of pows
	pows atomic.Pointer[[]*big.Int] // (*pows)[j] = base^(leaf·2^j); replaced on growth, never modified
}

// NewRadix produces a Radix for the given base,
// with its power table precomputed for strings of up to maxDigits digits.
func NewRadix(base, maxDigits int) (*Radix, error) {
	if base < 2 || base > MaxBase {
		return nil, errors.Errorf("base %d out of range [2,%d]", base, MaxBase)
	}
	leaf := 0
	for p := uint64(1); p <= ^uint64(0)/uint64(base); p *= uint64(base) {
		leaf++
	}
	pows := []*big.Int{Pow(base, leaf)}
	for n := leaf; n < maxDigits; n *= 2 {
		last := pows[len(pows)-1]
		pows = append(pows, Mul(last, last))
	}
	r := &Radix{base: base, leaf: leaf}
	r.pows.Store(&pows)
	return r, nil
}

// Base is the radix.
func (r *Radix) Base() int { return r.base }

// pow returns base^(leaf·2^j).
// Lookups within the table take no lock;
// a caller exceeding the precomputed size publishes an extended copy.
func (r *Radix) pow(j int) *big.Int {
	if pows := *r.pows.Load(); j < len(pows) {
		return pows[j]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pows := *r.pows.Load()
	if j < len(pows) {
		return pows[j]
	}
	grown := make([]*big.Int, len(pows), j+1)
	copy(grown, pows)
	for len(grown) <= j {
		last := grown[len(grown)-1]
		grown = append(grown, Mul(last, last))
	}
	r.pows.Store(&grown)
	return grown[j]
}

// Parse interprets digits (values in [0,base), most significant first) as a number.
func (r *Radix) Parse(digits []byte) (*big.Int, error) {
	for i, d := range digits {
		if int(d) >= r.base {
			return nil, errors.Errorf("digit %d at position %d out of range for base %d", d, i, r.base)
		}
	}
	return r.parse(digits), nil
}

func (r *Radix) parse(digits []byte) *big.Int {
	if len(digits) <= r.leaf {
		var v uint64
		for _, d := range digits {
			v = v*uint64(r.base) + uint64(d)
		}
		return new(big.Int).SetUint64(v)
	}

	// Split so that the low half is exactly leaf·2^j digits.
	j, n := 0, r.leaf
	for 2*n < len(digits) {
		j++
		n *= 2
	}
	var (
		hi = r.parse(digits[:len(digits)-n])
		lo = r.parse(digits[len(digits)-n:])
	)
	hi = Mul(hi, r.pow(j))
	return hi.Add(hi, lo)
}

// Format renders v as exactly width digits, left-padded with zeros.
// It returns ErrOverflow if v needs more than width digits.
func (r *Radix) Format(v *big.Int, width int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, errors.New("negative value")
	}
	text := v.Text(r.base)
	if len(text) > width {
		return nil, errors.Wrapf(ErrOverflow, "%d digits, width %d", len(text), width)
	}
	out := make([]byte, width)
	pad := width - len(text)
	for i := 0; i < len(text); i++ {
		out[pad+i] = byte(strings.IndexByte(textDigits, text[i]))
	}
	return out, nil
}
