//go:build mage
// +build mage

package main

import (
	"context"

	"github.com/bobg/mghash"
	"github.com/bobg/mghash/sqlite"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

var Default = Build

func Build() error {
	mg.Deps(Constants)
	return sh.Run(mg.GoCmd(), "build", "./cmd/babel")
}

// Test runs the tests with each sqlite driver.
func Test() error {
	args := []string{"test"}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	if err := sh.Run(mg.GoCmd(), append(args, "./...")...); err != nil {
		return err
	}
	return sh.Run(mg.GoCmd(), append(args, "-tags", "purego", "./store/sqlite3")...)
}

// Constants regenerates the constants file when the library configuration changes.
func Constants(ctx context.Context) error {
	db, err := sqlite.Open(ctx, "hashdb.sqlite")
	if err != nil {
		return errors.Wrap(err, "opening hashdb.sqlite")
	}
	defer db.Close()

	numbers := mghash.JRule{
		Sources: []string{"babel.json"},
		Targets: []string{"numbers"},
		Command: []string{mg.GoCmd(), "run", "./cmd/babel", "-config", "babel.json", "gen-constants", "-out", "numbers"},
	}

	mg.CtxDeps(ctx, &mghash.Fn{DB: db, Rule: numbers})
	return nil
}
