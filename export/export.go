// Package export writes whole books as plain text.
package export

import (
	"bufio"
	"context"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
)

// PageBreak separates consecutive pages in an exported book.
const PageBreak = '\f'

// WriteBook writes every page of the book containing id to w,
// one line of text per Chars symbols,
// with PageBreak on a line of its own between pages.
// The page number in id is ignored.
func WriteBook(ctx context.Context, w io.Writer, e *babel.Engine, id babel.Identifier) error {
	var (
		cfg = e.Config()
		bw  = bufio.NewWriter(w)
	)

	var pages func(int) (string, error)
	if cfg.Granularity == babel.BookLevel {
		// One block holds the whole book.
		id.Page = 1
		block, err := e.Block(id)
		if err != nil {
			return err
		}
		runes := []rune(block)
		pl := cfg.PageLength()
		pages = func(p int) (string, error) {
			return string(runes[(p-1)*pl : p*pl]), nil
		}
	} else {
		pages = func(p int) (string, error) {
			pid := id
			pid.Page = p
			return e.Page(pid)
		}
	}

	for p := 1; p <= cfg.Pages; p++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p > 1 {
			if _, err := bw.WriteString(string(PageBreak) + "\n"); err != nil {
				return err
			}
		}
		page, err := pages(p)
		if err != nil {
			return errors.Wrapf(err, "generating page %d", p)
		}
		for _, line := range e.Lines(page) {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteBookZstd is WriteBook through a zstd encoder.
func WriteBookZstd(ctx context.Context, w io.Writer, e *babel.Engine, id babel.Identifier) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "creating zstd encoder")
	}
	if err := WriteBook(ctx, enc, e, id); err != nil {
		enc.Close()
		return err
	}
	return errors.Wrap(enc.Close(), "closing zstd encoder")
}
