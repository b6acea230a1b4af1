package babel

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bignum"
)

// Constants are the parameters of the permutation:
// N = k^L, a multiplier C coprime to N, and I = C⁻¹ mod N.
type Constants struct {
	N, C, I *big.Int
}

// constantsBase is the radix of the constants file.
const constantsBase = 36

const maxDeriveAttempts = 1000

// DeriveConstants chooses a random multiplier for the library described by cfg
// and computes its inverse.
// This happens once, at build time;
// the result is persisted with WriteConstants.
func DeriveConstants(cfg Config, r io.Reader) (Constants, error) {
	if err := cfg.Validate(); err != nil {
		return Constants{}, errors.Wrap(err, "validating config")
	}
	var (
		k   = big.NewInt(int64(utf8.RuneCountInString(cfg.Alphabet)))
		n   = bignum.Pow(int(k.Int64()), cfg.BlockLength())
		nm1 = new(big.Int).Sub(n, one)
	)
	for attempt := 0; attempt < maxDeriveAttempts; attempt++ {
		c, err := bignum.RandBelow(r, nm1)
		if err != nil {
			return Constants{}, err
		}
		c.Add(c, one)

		// N = k^L has exactly k's prime factors,
		// so gcd(C, k) = 1 is the cheap sufficient test.
		if !bignum.Coprime(c, k) {
			continue
		}
		inv, err := bignum.ModInverse(c, n)
		if errors.Is(err, bignum.ErrNoInverse) {
			continue
		}
		if err != nil {
			return Constants{}, errors.Wrap(err, "computing inverse")
		}
		return Constants{N: n, C: c, I: inv}, nil
	}
	return Constants{}, errors.Wrapf(ErrNoModularInverse, "after %d attempts", maxDeriveAttempts)
}

// Verify checks that c is consistent with cfg.
func (c Constants) Verify(cfg Config) error {
	if c.N == nil || c.C == nil || c.I == nil {
		return errors.Wrap(ErrConstantsUnavailable, "missing value")
	}
	n := bignum.Pow(utf8.RuneCountInString(cfg.Alphabet), cfg.BlockLength())
	if c.N.Cmp(n) != 0 {
		return errors.Wrap(ErrConstantsUnavailable, "N is not k^L for this library")
	}
	for _, v := range []struct {
		name string
		x    *big.Int
	}{{"C", c.C}, {"I", c.I}} {
		if v.x.Sign() <= 0 || v.x.Cmp(c.N) >= 0 {
			return errors.Wrapf(ErrConstantsUnavailable, "%s outside (0,N)", v.name)
		}
	}
	if bignum.NewModulus(c.N).MulMod(c.C, c.I).Cmp(one) != 0 {
		return errors.Wrap(ErrConstantsUnavailable, "C·I is not 1 mod N")
	}
	return nil
}

// WriteConstants writes N, C, and I on three lines in base 36.
func WriteConstants(w io.Writer, c Constants) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", c.N.Text(constantsBase), c.C.Text(constantsBase), c.I.Text(constantsBase))
	return errors.Wrap(err, "writing constants")
}

// ReadConstants reads constants written by WriteConstants and verifies them against cfg.
// Every failure wraps ErrConstantsUnavailable.
func ReadConstants(r io.Reader, cfg Config) (Constants, error) {
	var (
		sc    = bufio.NewScanner(r)
		lines []string
	)
	sc.Buffer(nil, 1<<26)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return Constants{}, errors.Wrapf(ErrConstantsUnavailable, "reading: %s", err)
	}
	if len(lines) != 3 {
		return Constants{}, errors.Wrapf(ErrConstantsUnavailable, "got %d values, want 3", len(lines))
	}

	radix, err := bignum.NewRadix(constantsBase, len(lines[0]))
	if err != nil {
		return Constants{}, errors.Wrap(err, "building radix")
	}
	vals := make([]*big.Int, 3)
	for i, line := range lines {
		digits := make([]byte, len(line))
		for j := 0; j < len(line); j++ {
			d := digitVal(line[j])
			if d < 0 || d >= constantsBase {
				return Constants{}, errors.Wrapf(ErrConstantsUnavailable, "line %d: bad digit %q", i+1, line[j])
			}
			digits[j] = byte(d)
		}
		if vals[i], err = radix.Parse(digits); err != nil {
			return Constants{}, errors.Wrapf(ErrConstantsUnavailable, "line %d: %s", i+1, err)
		}
	}

	c := Constants{N: vals[0], C: vals[1], I: vals[2]}
	if err := c.Verify(cfg); err != nil {
		return Constants{}, err
	}
	return c, nil
}

// LoadConstants reads constants from the named file.
func LoadConstants(path string, cfg Config) (Constants, error) {
	f, err := os.Open(path)
	if err != nil {
		return Constants{}, errors.Wrapf(ErrConstantsUnavailable, "opening %s: %s", path, err)
	}
	defer f.Close()
	return ReadConstants(f, cfg)
}
