package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tdjsnelling/babel"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "babel.json")
	err := os.WriteFile(filename, []byte(`{
		"library": {"granularity": "book", "room_base": 16},
		"constants": "numbers.book",
		"bookmarks": {"type": "lru", "size": 100, "nested": {"type": "file", "root": "/tmp/bm"}}
	}`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	conf, err := loadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}

	wantLib := babel.BookConfig()
	wantLib.RoomBase = 16
	if diff := cmp.Diff(wantLib, conf.Library); diff != "" {
		t.Errorf("library mismatch (-want +got):\n%s", diff)
	}
	if conf.Constants != "numbers.book" {
		t.Errorf("got constants %s, want numbers.book", conf.Constants)
	}
	if conf.Addr != ":3000" {
		t.Errorf("got addr %s, want default :3000", conf.Addr)
	}
	if got := conf.Bookmarks["type"]; got != "lru" {
		t.Errorf("got bookmarks type %v, want lru", got)
	}
	if len(conf.Bookmarks) != 3 {
		t.Errorf("got bookmarks config %v, want exactly the file's three keys", conf.Bookmarks)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err = os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	conf, err := loadConfig(defaultConfigFile)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(defaultConfig(), conf); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err = loadConfig("other.json"); err == nil {
		t.Error("got no error for a missing non-default config file")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(filename, []byte(`{"library": {"alphabet": "aab"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(filename); err == nil {
		t.Error("got no error for a duplicate-symbol alphabet")
	}
}
