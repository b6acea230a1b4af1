package babel

import (
	"io"
	"math/big"

	"github.com/tdjsnelling/babel/bignum"
)

// Random returns a uniformly random identifier, drawing entropy from r.
// At book granularity the page is chosen independently and uniformly.
func (e *Engine) Random(r io.Reader) (Identifier, error) {
	index, err := bignum.RandBelow(r, e.n)
	if err != nil {
		return Identifier{}, err
	}
	page := 1
	if e.cfg.Granularity == BookLevel {
		p, err := bignum.RandBelow(r, big.NewInt(int64(e.cfg.Pages)))
		if err != nil {
			return Identifier{}, err
		}
		page = int(p.Int64()) + 1
	}
	return e.Decode(index, page), nil
}
