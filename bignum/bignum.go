// Package bignum is the narrow arbitrary-precision layer used by the library engine.
// Everything the engine needs from big integers goes through here:
// digit-string conversion in a fixed base,
// fast multiplication,
// repeated reduction modulo one fixed modulus,
// modular inverses,
// and uniform sampling.
package bignum

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"github.com/remyoudompheng/bigfft"
)

// ErrNoInverse is returned by ModInverse when its arguments are not coprime.
var ErrNoInverse = errors.New("no modular inverse")

var one = big.NewInt(1)

// Mul returns x*y.
// Large operands are multiplied with an FFT,
// small ones fall through to math/big.
func Mul(x, y *big.Int) *big.Int {
	return bigfft.Mul(x, y)
}

// Pow returns base^exp.
func Pow(base, exp int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(base)), big.NewInt(int64(exp)), nil)
}

// ModInverse returns the x in [1,n) with a*x = 1 (mod n),
// computed with the extended Euclidean algorithm.
func ModInverse(a, n *big.Int) (*big.Int, error) {
	if n.Sign() <= 0 {
		return nil, errors.New("non-positive modulus")
	}
	var (
		x = new(big.Int)
		g = new(big.Int).GCD(x, nil, new(big.Int).Mod(a, n), n)
	)
	if g.Cmp(one) != 0 {
		return nil, ErrNoInverse
	}
	return x.Mod(x, n), nil
}

// Coprime tells whether gcd(a, b) is 1.
func Coprime(a, b *big.Int) bool {
	return new(big.Int).GCD(nil, nil, a, b).Cmp(one) == 0
}

// RandBelow returns a uniform random value in [0,n), reading entropy from r.
// The result is exact for any n: values are drawn by rejection on bit strings of n's length.
func RandBelow(r io.Reader, n *big.Int) (*big.Int, error) {
	if n.Sign() <= 0 {
		return nil, errors.New("non-positive bound")
	}
	v, err := rand.Int(r, n)
	return v, errors.Wrap(err, "drawing random value")
}
