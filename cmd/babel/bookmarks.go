package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
)

func (c maincmd) bookmark(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("usage: bookmark ROOM|@HANDLE")
	}

	s, err := c.store(ctx)
	if err != nil {
		return err
	}
	defer store.Close(s)

	room, h, err := bookmark.Resolve(ctx, s, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", h, room)
	return nil
}

func (c maincmd) count(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	s, err := c.store(ctx)
	if err != nil {
		return err
	}
	defer store.Close(s)

	n, err := bookmark.Count(ctx, s)
	if err != nil {
		return errors.Wrap(err, "counting bookmarks")
	}
	fmt.Println(n)
	return nil
}

// migrate copies bookmarks between the configured store and the stores named on the command line
// until all hold the same set.
func (c maincmd) migrate(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New("usage: migrate STORECONFIG.json...")
	}

	s, err := c.store(ctx)
	if err != nil {
		return err
	}
	defer store.Close(s)

	stores := []bookmark.Store{s}
	for _, arg := range fs.Args() {
		conf, err := storeConfig(arg)
		if err != nil {
			return err
		}
		other, err := store.FromConfig(ctx, conf)
		if err != nil {
			return errors.Wrapf(err, "creating store from %s", arg)
		}
		defer store.Close(other)
		stores = append(stores, other)
	}

	return store.Sync(ctx, stores)
}
