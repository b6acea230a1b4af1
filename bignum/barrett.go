package bignum

import (
	"math/big"
)

// Modulus reduces values modulo a fixed n using Barrett reduction.
// The reciprocal is computed once,
// after which each reduction costs two multiplications and a shift,
// both multiplications going through Mul.
// A Modulus is immutable and safe for concurrent use.
type Modulus struct {
	n  *big.Int
	k  uint     // bit length of n
	mu *big.Int // floor(2^(2k) / n)
}

// NewModulus prepares reduction modulo n, which must be positive.
func NewModulus(n *big.Int) *Modulus {
	if n.Sign() <= 0 {
		panic("bignum: non-positive modulus")
	}
	k := uint(n.BitLen())
	mu := new(big.Int).Lsh(one, 2*k)
	mu.Quo(mu, n)
	return &Modulus{n: new(big.Int).Set(n), k: k, mu: mu}
}

// N returns a copy of the modulus.
func (m *Modulus) N() *big.Int {
	return new(big.Int).Set(m.n)
}

// Reduce returns x mod n in [0,n).
// Values in [0, 2^(2k)) take the Barrett path; anything else falls back to division.
func (m *Modulus) Reduce(x *big.Int) *big.Int {
	if x.Sign() < 0 || uint(x.BitLen()) > 2*m.k {
		return new(big.Int).Mod(x, m.n)
	}
	if x.Cmp(m.n) < 0 {
		return new(big.Int).Set(x)
	}

	q := new(big.Int).Rsh(x, m.k-1)
	q = Mul(q, m.mu)
	q.Rsh(q, m.k+1)

	r := new(big.Int).Sub(x, Mul(q, m.n))
	for r.Cmp(m.n) >= 0 {
		r.Sub(r, m.n)
	}
	return r
}

// MulMod returns x*y mod n.
func (m *Modulus) MulMod(x, y *big.Int) *big.Int {
	return m.Reduce(Mul(x, y))
}

// Add returns x+y mod n for x, y already in [0,n).
func (m *Modulus) Add(x, y *big.Int) *big.Int {
	r := new(big.Int).Add(x, y)
	if r.Cmp(m.n) >= 0 {
		r.Sub(r, m.n)
	}
	return r
}

// Sub returns x-y mod n for x, y already in [0,n).
func (m *Modulus) Sub(x, y *big.Int) *big.Int {
	r := new(big.Int).Sub(x, y)
	if r.Sign() < 0 {
		r.Add(r, m.n)
	}
	return r
}
