package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"

	"github.com/tdjsnelling/babel"
	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/export"
	"github.com/tdjsnelling/babel/store/mem"
)

func smallConfig() babel.Config {
	cfg := babel.DefaultConfig()
	cfg.Walls, cfg.Shelves, cfg.Books = 1, 2, 3
	cfg.Pages, cfg.Lines, cfg.Chars = 3, 4, 10
	return cfg
}

type fixture struct {
	e     *babel.Engine
	store *mem.Store
	h     http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := smallConfig()
	consts, err := babel.DeriveConstants(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	e, err := babel.NewEngine(cfg, consts)
	if err != nil {
		t.Fatal(err)
	}
	st := mem.New()
	s, err := New(e, st, 16, WithLogger(hclog.NewNullLogger()))
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{e: e, store: st, h: s.Handler()}
}

func (f *fixture) do(t *testing.T, method, target string, body interface{}, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()

	resp := APIResponse{Data: data}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("request failed: %+v", resp.Error)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *APIError {
	t.Helper()

	var resp APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Error == nil {
		t.Fatal("got success, want an error")
	}
	return resp.Error
}

func handleForm(room, tail string) string {
	return bookmark.Room(room).Handle().String() + "." + tail
}

func TestRef(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/ref/05.1.2.3.2", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusFound)
	}
	want := "/ref/" + handleForm("5", "1.2.3.2")
	if got := w.Header().Get("Location"); got != want {
		t.Errorf("got Location %s, want %s", got, want)
	}

	w = f.do(t, "GET", want, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	if got := w.Header().Get("Cache-Control"); got != cacheStatic {
		t.Errorf("got Cache-Control %q, want %q", got, cacheStatic)
	}
	var info PageInfo
	decodeData(t, w, &info)

	id := babel.Identifier{Room: big.NewInt(5), Wall: 1, Shelf: 2, Book: 3, Page: 2}
	page, err := f.e.Page(id)
	if err != nil {
		t.Fatal(err)
	}
	prev, _ := f.e.Prev(id)
	next, _ := f.e.Next(id)

	wantInfo := PageInfo{
		Identifier: handleForm("5", "1.2.3.2"),
		UID:        bookmark.Room("5").Handle().String(),
		Room:       "5",
		RoomShort:  "5",
		Wall:       1,
		Shelf:      2,
		Book:       3,
		Page:       2,
		Lines:      f.e.Lines(page),
		Prev:       handleForm(f.e.FormatRoom(prev.Room), prev.Tail()),
		Next:       handleForm(f.e.FormatRoom(next.Room), next.Tail()),
	}
	if diff := cmp.Diff(wantInfo, info); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag")
	}
	w = f.do(t, "GET", want, nil, "If-None-Match", etag)
	if w.Code != http.StatusNotModified {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNotModified)
	}
}

func TestRefErrors(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		target string
		status int
		code   string
		field  string
	}{
		{"/ref/5.2.1.1.1", http.StatusBadRequest, "OUT_OF_BOUNDS", "wall"},
		{"/ref/5.1.1.1.4", http.StatusBadRequest, "OUT_OF_BOUNDS", "page"},
		{"/ref/5.1.1.1", http.StatusBadRequest, "MALFORMED_IDENTIFIER", "identifier"},
		{"/ref/5!.1.1.1.1", http.StatusBadRequest, "MALFORMED_IDENTIFIER", "room"},
		{"/ref/" + handleForm("never stored", "1.1.1.1"), http.StatusNotFound, "NOT_FOUND", ""},
		{"/ref/@abc.1.1.1.1", http.StatusNotFound, "NOT_FOUND", ""},
	}
	for _, c := range cases {
		t.Run(c.target, func(t *testing.T) {
			w := f.do(t, "GET", c.target, nil)
			if w.Code != c.status {
				t.Fatalf("got status %d, want %d", w.Code, c.status)
			}
			apiErr := decodeError(t, w)
			if apiErr.Code != c.code {
				t.Errorf("got code %s, want %s", apiErr.Code, c.code)
			}
			if apiErr.Field != c.field {
				t.Errorf("got field %q, want %q", apiErr.Field, c.field)
			}
		})
	}

	// Rejected identifiers leave no bookmark behind.
	n, err := f.store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("got %d bookmarks, want 0", n)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/search", SearchRequest{Content: "Hello\nWorld", Mode: "empty"})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	if got := w.Header().Get("Cache-Control"); got != cacheDynamic {
		t.Errorf("got Cache-Control %q, want %q", got, cacheDynamic)
	}
	var res SearchResult
	decodeData(t, w, &res)
	if res.Highlight != "0:0:1:4" {
		t.Errorf("got highlight %s, want 0:0:1:4", res.Highlight)
	}

	w = f.do(t, "GET", "/fullref/"+res.Ref, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	var full IdentifierResult
	decodeData(t, w, &full)
	id, err := f.e.ParseIdentifier(full.Identifier)
	if err != nil {
		t.Fatal(err)
	}
	page, err := f.e.Page(id)
	if err != nil {
		t.Fatal(err)
	}
	lines := f.e.Lines(page)
	if lines[0] != "hello     " || lines[1] != "world     " {
		t.Errorf("got lines %q", lines)
	}

	w = f.do(t, "POST", "/search", SearchRequest{Content: strings.Repeat("a", 41), Mode: "chars"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d for overlong text, want %d", w.Code, http.StatusBadRequest)
	}
	w = f.do(t, "POST", "/search", SearchRequest{Content: "abc", Mode: "sideways"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d for unknown mode, want %d", w.Code, http.StatusBadRequest)
	}
	if apiErr := decodeError(t, w); apiErr.Code != "UNKNOWN_MODE" {
		t.Errorf("got code %s, want UNKNOWN_MODE", apiErr.Code)
	}
}

func TestGetUID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/get-uid", IdentifierRequest{Identifier: "z9.1.1.1.1"})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	var res IdentifierResult
	decodeData(t, w, &res)
	if want := handleForm("z9", "1.1.1.1"); res.Identifier != want {
		t.Errorf("got %s, want %s", res.Identifier, want)
	}

	room, err := f.store.Get(context.Background(), bookmark.Room("z9").Handle())
	if err != nil {
		t.Fatal(err)
	}
	if room != "z9" {
		t.Errorf("stored room %q, want z9", room)
	}

	w = f.do(t, "POST", "/get-uid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d for empty body, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRandom(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/random", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusFound)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/ref/"+bookmark.Prefix) {
		t.Fatalf("got Location %s", loc)
	}
	w = f.do(t, "GET", loc, nil)
	if w.Code != http.StatusOK {
		t.Errorf("following %s: got status %d, want %d", loc, w.Code, http.StatusOK)
	}
}

func TestBook(t *testing.T) {
	f := newFixture(t)

	id := babel.Identifier{Room: big.NewInt(7), Wall: 1, Shelf: 1, Book: 2, Page: 1}
	want := new(bytes.Buffer)
	if err := export.WriteBook(context.Background(), want, f.e, id); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, "GET", "/book/7.1.1.2.1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if diff := cmp.Diff(want.String(), w.Body.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	w = f.do(t, "GET", "/book/7.1.1.2.1", nil, "Accept-Encoding", "gzip, zstd")
	if got := w.Header().Get("Content-Encoding"); got != "zstd" {
		t.Fatalf("got Content-Encoding %q, want zstd", got)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	got, err := dec.DecodeAll(w.Body.Bytes(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want.String(), string(got)); diff != "" {
		t.Errorf("zstd mismatch (-want +got):\n%s", diff)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t)

	f.do(t, "GET", "/ref/1.1.1.1.1", nil)

	w := f.do(t, "GET", "/health", nil, requestIDHeader, "abc-123")
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("got request id %q, want abc-123", got)
	}
	var h Health
	decodeData(t, w, &h)
	if h.Status != "ok" || h.Granularity != "page" {
		t.Errorf("got %+v", h)
	}
	if h.Bookmarks == nil || *h.Bookmarks != 1 {
		t.Errorf("got bookmarks %v, want 1", h.Bookmarks)
	}

	w = f.do(t, "GET", "/health", nil)
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("no request id assigned")
	}
}
