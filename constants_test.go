package babel

import (
	"bytes"
	"math/big"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestConstantsRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	consts, err := DeriveConstants(cfg, rand.New(rand.NewSource(20)))
	if err != nil {
		t.Fatal(err)
	}

	prod := new(big.Int).Mul(consts.C, consts.I)
	if prod.Mod(prod, consts.N).Cmp(one) != 0 {
		t.Fatal("C·I is not 1 mod N")
	}

	buf := new(bytes.Buffer)
	if err = WriteConstants(buf, consts); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Errorf("got %d lines, want 3", n)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "numbers")
	if err = os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConstants(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.N.Cmp(consts.N) != 0 || got.C.Cmp(consts.C) != 0 || got.I.Cmp(consts.I) != 0 {
		t.Error("loaded constants differ from written ones")
	}
}

func TestConstantsUnavailable(t *testing.T) {
	cfg := tinyConfig()
	good, err := DeriveConstants(cfg, rand.New(rand.NewSource(21)))
	if err != nil {
		t.Fatal(err)
	}

	var (
		n     = good.N.Text(36)
		c     = good.C.Text(36)
		i     = good.I.Text(36)
		wrong = new(big.Int).Add(good.I, one)
	)

	cases := []struct {
		name, text string
	}{
		{"empty", ""},
		{"two lines", n + "\n" + c + "\n"},
		{"bad digit", n + "\n" + c + "!\n" + i + "\n"},
		{"wrong N", "2s\n" + c + "\n" + i + "\n"},
		{"zero C", n + "\n0\n" + i + "\n"},
		{"wrong inverse", n + "\n" + c + "\n" + wrong.Text(36) + "\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadConstants(strings.NewReader(tc.text), cfg)
			if !errors.Is(err, ErrConstantsUnavailable) {
				t.Errorf("got %v, want ErrConstantsUnavailable", err)
			}
		})
	}

	_, err = LoadConstants(filepath.Join(t.TempDir(), "missing"), cfg)
	if !errors.Is(err, ErrConstantsUnavailable) {
		t.Errorf("got %v, want ErrConstantsUnavailable", err)
	}

	_, err = NewEngine(cfg, Constants{N: good.N, C: good.C, I: wrong})
	if !errors.Is(err, ErrConstantsUnavailable) {
		t.Errorf("got %v, want ErrConstantsUnavailable", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config: %s", err)
	}
	if err := BookConfig().Validate(); err != nil {
		t.Errorf("book config: %s", err)
	}
	if got := BookConfig().BlockLength(); got != 1312000 {
		t.Errorf("book block length %d, want 1312000", got)
	}
	if got := DefaultConfig().Span(); got != 4*5*32*410 {
		t.Errorf("page-level span %d", got)
	}

	bad := []func(*Config){
		func(c *Config) { c.Alphabet = "a" },
		func(c *Config) { c.Alphabet = "abca" },
		func(c *Config) { c.Walls = 0 },
		func(c *Config) { c.Chars = -1 },
		func(c *Config) { c.Granularity = "shelf" },
		func(c *Config) { c.RoomBase = 37 },
		func(c *Config) { c.Blank = "!" },
		func(c *Config) { c.Blank = "" },
	}
	for i, f := range bad {
		c := DefaultConfig()
		f(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: got no error", i+1)
		}
	}
}
