// Command babel is a CLI interface to the library:
// it generates and searches pages,
// manages bookmarks,
// and serves both over the network.
//
// Usage:
//
//	babel [-config babel.json] SUBCOMMAND [ARGS]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/bobg/subcmd"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/store"
	_ "github.com/tdjsnelling/babel/store/bt"
	_ "github.com/tdjsnelling/babel/store/file"
	_ "github.com/tdjsnelling/babel/store/gcs"
	"github.com/tdjsnelling/babel/store/logging"
	_ "github.com/tdjsnelling/babel/store/lru"
	_ "github.com/tdjsnelling/babel/store/mem"
	_ "github.com/tdjsnelling/babel/store/pg"
	_ "github.com/tdjsnelling/babel/store/replica"
	_ "github.com/tdjsnelling/babel/store/rpc"
	_ "github.com/tdjsnelling/babel/store/sqlite3"
)

type maincmd struct {
	conf   *config
	logger hclog.Logger
}

func main() {
	configFile := flag.String("config", defaultConfigFile, "path to config file")
	flag.Parse()

	conf, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "babel",
		Level:  hclog.LevelFromString(conf.LogLevel),
		Output: os.Stderr,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = subcmd.Run(ctx, maincmd{conf: conf, logger: logger}, flag.Args())
	if err != nil {
		logger.Error("failed", "error", err)
		os.Exit(1)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"bookmark":      c.bookmark,
		"count":         c.count,
		"export":        c.export,
		"gen-constants": c.genConstants,
		"migrate":       c.migrate,
		"next":          c.next,
		"page":          c.page,
		"prev":          c.prev,
		"random":        c.random,
		"search":        c.search,
		"serve":         c.serve,
		"serve-rpc":     c.serveRPC,
	}
}

func (c maincmd) engine() (*babel.Engine, error) {
	consts, err := babel.LoadConstants(c.conf.Constants, c.conf.Library)
	if err != nil {
		return nil, err
	}
	return babel.NewEngine(c.conf.Library, consts)
}

// store opens the configured bookmark store,
// logging its operations at debug level.
// The caller closes it with store.Close.
func (c maincmd) store(ctx context.Context) (bookmark.Store, error) {
	s, err := store.FromConfig(ctx, c.conf.Bookmarks)
	if err != nil {
		return nil, errors.Wrap(err, "creating bookmark store")
	}
	return logging.New(s, c.logger), nil
}

// bookmarks opens the bookmark store on first use,
// so subcommands that never see a handle never open it.
type bookmarks struct {
	c maincmd
	s bookmark.Store
}

func (c maincmd) bookmarks() *bookmarks {
	return &bookmarks{c: c}
}

func (b *bookmarks) get(ctx context.Context) (bookmark.Store, error) {
	if b.s == nil {
		s, err := b.c.store(ctx)
		if err != nil {
			return nil, err
		}
		b.s = s
	}
	return b.s, nil
}

// Close closes the store if it was opened.
func (b *bookmarks) Close() error {
	if b.s == nil {
		return nil
	}
	err := store.Close(b.s)
	b.s = nil
	return errors.Wrap(err, "closing bookmark store")
}

// identifier parses an identifier whose room may be given as a bookmark handle.
func (b *bookmarks) identifier(ctx context.Context, e *babel.Engine, s string) (babel.Identifier, error) {
	room, tail, err := babel.SplitIdentifier(s)
	if err != nil {
		return babel.Identifier{}, err
	}
	if bookmark.IsHandle(room) {
		bs, err := b.get(ctx)
		if err != nil {
			return babel.Identifier{}, err
		}
		r, _, err := bookmark.Resolve(ctx, bs, room)
		if err != nil {
			return babel.Identifier{}, err
		}
		room = string(r)
	}
	id, err := e.ParseIdentifier(room + "." + tail)
	if err != nil {
		return babel.Identifier{}, err
	}
	_, err = e.Encode(id)
	return id, err
}

// render formats id for output,
// replacing its room with a bookmark handle if useHandle is set.
func (b *bookmarks) render(ctx context.Context, e *babel.Engine, id babel.Identifier, useHandle bool) (string, error) {
	if !useHandle {
		return e.FormatIdentifier(id), nil
	}
	bs, err := b.get(ctx)
	if err != nil {
		return "", err
	}
	_, h, err := bookmark.Resolve(ctx, bs, e.FormatRoom(id.Room))
	if err != nil {
		return "", err
	}
	return h.String() + "." + id.Tail(), nil
}
