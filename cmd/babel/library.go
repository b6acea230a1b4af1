package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	mrand "math/rand"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
	"github.com/tdjsnelling/babel/export"
	"github.com/tdjsnelling/babel/search"
)

func (c maincmd) genConstants(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		out  = fs.String("out", c.conf.Constants, "file to write")
		seed = fs.Int64("seed", 0, "deterministic seed (default: crypto/rand)")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	var r io.Reader = rand.Reader
	if *seed != 0 {
		r = mrand.New(mrand.NewSource(*seed))
	}

	c.logger.Info("deriving constants", "alphabet", len([]rune(c.conf.Library.Alphabet)), "block_length", c.conf.Library.BlockLength())
	consts, err := babel.DeriveConstants(c.conf.Library, r)
	if err != nil {
		return errors.Wrap(err, "deriving constants")
	}

	f, err := os.Create(*out)
	if err != nil {
		return errors.Wrapf(err, "creating %s", *out)
	}
	if err = babel.WriteConstants(f, consts); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", *out)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", *out)
	}
	c.logger.Info("wrote constants", "file", *out)
	return nil
}

func (c maincmd) page(ctx context.Context, fs *flag.FlagSet, args []string) error {
	useHandle := fs.Bool("bookmark", false, "show prev/next with bookmark handles")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("usage: page [-bookmark] IDENTIFIER")
	}

	e, err := c.engine()
	if err != nil {
		return err
	}
	bs := c.bookmarks()
	defer bs.Close()

	id, err := bs.identifier(ctx, e, fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "parsing identifier")
	}
	page, err := e.Page(id)
	if err != nil {
		return errors.Wrap(err, "generating page")
	}

	w := bufio.NewWriter(os.Stdout)
	for i, line := range e.Lines(page) {
		fmt.Fprintf(w, "%3d  %s\n", i+1, line)
	}

	prev, err := e.Prev(id)
	if err != nil {
		return err
	}
	next, err := e.Next(id)
	if err != nil {
		return err
	}
	prevStr, err := bs.render(ctx, e, prev, *useHandle)
	if err != nil {
		return err
	}
	nextStr, err := bs.render(ctx, e, next, *useHandle)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nprev: %s\nnext: %s\n", prevStr, nextStr)
	return w.Flush()
}

func (c maincmd) next(ctx context.Context, fs *flag.FlagSet, args []string) error {
	return c.step(ctx, fs, args, (*babel.Engine).Next)
}

func (c maincmd) prev(ctx context.Context, fs *flag.FlagSet, args []string) error {
	return c.step(ctx, fs, args, (*babel.Engine).Prev)
}

func (c maincmd) step(ctx context.Context, fs *flag.FlagSet, args []string, f func(*babel.Engine, babel.Identifier) (babel.Identifier, error)) error {
	useHandle := fs.Bool("bookmark", false, "print a bookmark handle in place of the room")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("missing identifier")
	}

	e, err := c.engine()
	if err != nil {
		return err
	}
	bs := c.bookmarks()
	defer bs.Close()

	id, err := bs.identifier(ctx, e, fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "parsing identifier")
	}
	id, err = f(e, id)
	if err != nil {
		return err
	}
	s, err := bs.render(ctx, e, id, *useHandle)
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}

func (c maincmd) random(ctx context.Context, fs *flag.FlagSet, args []string) error {
	useHandle := fs.Bool("bookmark", false, "print a bookmark handle in place of the room")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	e, err := c.engine()
	if err != nil {
		return err
	}
	bs := c.bookmarks()
	defer bs.Close()

	id, err := e.Random(rand.Reader)
	if err != nil {
		return errors.Wrap(err, "choosing random page")
	}
	s, err := bs.render(ctx, e, id, *useHandle)
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}

func (c maincmd) search(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		mode      = fs.String("mode", string(search.EmptyPage), "filler mode: empty, empty-page, chars, words")
		seed      = fs.Int64("seed", 0, "deterministic seed for filler (default: random)")
		wordsFile = fs.String("words", "", "file of filler words, one per line (default: built-in list)")
		useHandle = fs.Bool("bookmark", false, "print a bookmark handle in place of the room")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	var text string
	if fs.NArg() > 0 {
		text = strings.Join(fs.Args(), " ")
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "reading stdin")
		}
		text = strings.TrimSuffix(string(b), "\n")
	}

	var words []string
	if *wordsFile != "" {
		b, err := os.ReadFile(*wordsFile)
		if err != nil {
			return errors.Wrapf(err, "reading %s", *wordsFile)
		}
		words = strings.Fields(string(b))
	}

	e, err := c.engine()
	if err != nil {
		return err
	}
	bs := c.bookmarks()
	defer bs.Close()

	em, err := search.NewEmbedder(e.Config(), words)
	if err != nil {
		return err
	}

	var rng search.Rand = search.DefaultRand
	if *seed != 0 {
		rng = mrand.New(mrand.NewSource(*seed))
	}

	id, res, err := em.Search(e, strings.ToLower(text), search.Mode(*mode), rng)
	if err != nil {
		return err
	}
	s, err := bs.render(ctx, e, id, *useHandle)
	if err != nil {
		return err
	}
	fmt.Printf("%s\nhighlight: %s\n", s, res.Highlight)
	return nil
}

func (c maincmd) export(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		out     = fs.String("o", "", "output file (default: stdout)")
		useZstd = fs.Bool("zstd", false, "compress with zstd")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("missing identifier")
	}

	e, err := c.engine()
	if err != nil {
		return err
	}
	bs := c.bookmarks()
	defer bs.Close()

	id, err := bs.identifier(ctx, e, fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "parsing identifier")
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return errors.Wrapf(err, "creating %s", *out)
		}
		defer f.Close()
		w = f
	}

	write := export.WriteBook
	if *useZstd {
		write = export.WriteBookZstd
	}
	return write(ctx, w, e, id)
}
