package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/export"
	"github.com/tdjsnelling/babel/search"
)

// PageInfo is the response to /ref.
type PageInfo struct {
	Identifier string   `json:"identifier"`
	UID        string   `json:"uid"`
	Room       string   `json:"room"`
	RoomShort  string   `json:"room_short"`
	Wall       int      `json:"wall"`
	Shelf      int      `json:"shelf"`
	Book       int      `json:"book"`
	Page       int      `json:"page"`
	Lines      []string `json:"lines"`
	Prev       string   `json:"prev"`
	Next       string   `json:"next"`
}

// SearchRequest is the body of a /search request.
type SearchRequest struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

// SearchResult is the response to /search.
type SearchResult struct {
	Ref       string `json:"ref"`
	Page      int    `json:"page"`
	Highlight string `json:"highlight"`
}

// IdentifierRequest is the body of a /get-uid request.
type IdentifierRequest struct {
	Identifier string `json:"identifier"`
}

// IdentifierResult is the response to /fullref and /get-uid.
type IdentifierResult struct {
	Identifier string `json:"identifier"`
}

// Health is the response to /health.
type Health struct {
	Status      string `json:"status"`
	Granularity string `json:"granularity"`
	Bookmarks   *int64 `json:"bookmarks,omitempty"`
}

// located is an identifier whose room part may have been written as a handle.
type located struct {
	id      babel.Identifier
	handle  bookmark.Handle
	tail    string
	viaRoom bool // the room was given literally
}

func (l located) handleForm() string {
	return l.handle.String() + "." + l.tail
}

// locate parses s, whose room part is a room or a handle,
// and range-checks it before any bookmark is written.
func (s *Server) locate(ctx context.Context, str string) (located, error) {
	roomPart, tail, err := babel.SplitIdentifier(str)
	if err != nil {
		return located{}, err
	}

	l := located{tail: tail, viaRoom: !bookmark.IsHandle(roomPart)}
	roomText := roomPart
	if !l.viaRoom {
		room, h, err := bookmark.Resolve(ctx, s.store, roomPart)
		if err != nil {
			return located{}, err
		}
		roomText, l.handle = string(room), h
	}

	l.id, err = s.engine.ParseIdentifier(roomText + "." + tail)
	if err != nil {
		return located{}, err
	}
	if _, err = s.engine.Encode(l.id); err != nil {
		return located{}, err
	}

	if l.viaRoom {
		if _, l.handle, err = bookmark.Resolve(ctx, s.store, roomPart); err != nil {
			return located{}, err
		}
	}
	return l, nil
}

// handleFormOf stores the room of id and renders id with the room replaced by its handle.
func (s *Server) handleFormOf(ctx context.Context, id babel.Identifier) (string, error) {
	_, h, err := bookmark.Resolve(ctx, s.store, s.engine.FormatRoom(id.Room))
	if err != nil {
		return "", err
	}
	return h.String() + "." + id.Tail(), nil
}

func (s *Server) page(id babel.Identifier) (string, error) {
	key := s.engine.FormatIdentifier(id)
	if v, ok := s.pages.Get(key); ok {
		return v.(string), nil
	}
	page, err := s.engine.Page(id)
	if err != nil {
		return "", err
	}
	s.pages.Add(key, page)
	return page, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classify(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
	}
	respondError(w, status, apiErr)
}

func (s *Server) handleRef(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	l, err := s.locate(ctx, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if l.viaRoom {
		http.Redirect(w, r, "/ref/"+l.handleForm(), http.StatusFound)
		return
	}

	page, err := s.page(l.id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64String(page))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	prev, err := s.engine.Prev(l.id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	next, err := s.engine.Next(l.id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prevRef, err := s.handleFormOf(ctx, prev)
	if err != nil {
		s.fail(w, r, errors.Wrap(err, "bookmarking previous page"))
		return
	}
	nextRef, err := s.handleFormOf(ctx, next)
	if err != nil {
		s.fail(w, r, errors.Wrap(err, "bookmarking next page"))
		return
	}

	room := bookmark.Room(s.engine.FormatRoom(l.id.Room))
	respond(w, http.StatusOK, PageInfo{
		Identifier: l.handleForm(),
		UID:        l.handle.String(),
		Room:       string(room),
		RoomShort:  room.Short(),
		Wall:       l.id.Wall,
		Shelf:      l.id.Shelf,
		Book:       l.id.Book,
		Page:       l.id.Page,
		Lines:      s.engine.Lines(page),
		Prev:       prevRef,
		Next:       nextRef,
	})
}

func (s *Server) handleFullRef(w http.ResponseWriter, r *http.Request) {
	l, err := s.locate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if l.viaRoom {
		http.Redirect(w, r, "/fullref/"+l.handleForm(), http.StatusFound)
		return
	}
	respond(w, http.StatusOK, IdentifierResult{Identifier: s.engine.FormatIdentifier(l.id)})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	l, err := s.locate(ctx, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	write := export.WriteBook
	if strings.Contains(r.Header.Get("Accept-Encoding"), "zstd") {
		write = export.WriteBookZstd
		w.Header().Set("Content-Encoding", "zstd")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Add("Vary", "Accept-Encoding")

	// Headers are gone by the time an error can happen.
	if err := write(ctx, w, s.engine, l.id); err != nil {
		s.logger.Error("writing book", "identifier", l.handleForm(), "request_id", RequestID(ctx), "error", err)
	}
}

func (s *Server) handleGetUID(w http.ResponseWriter, r *http.Request) {
	var req IdentifierRequest
	if err := s.decode(w, r, &req); err != nil {
		return
	}
	l, err := s.locate(r.Context(), req.Identifier)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, IdentifierResult{Identifier: l.handleForm()})
}

// parseMode maps a requested mode to a search.Mode.
// No mode means EmptyPage, and "emptybook" is accepted for Empty.
func parseMode(s string) search.Mode {
	switch s {
	case "":
		return search.EmptyPage
	case "emptybook":
		return search.Empty
	}
	return search.Mode(s)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SearchRequest
	if err := s.decode(w, r, &req); err != nil {
		return
	}

	id, res, err := s.embedder.Search(s.engine, strings.ToLower(req.Content), parseMode(req.Mode), s.rng)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ref, err := s.handleFormOf(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, SearchResult{Ref: ref, Page: res.Page, Highlight: res.Highlight.String()})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	id, err := s.engine.Random(s.entropy)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ref, err := s.handleFormOf(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/ref/"+ref, http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := Health{
		Status:      "ok",
		Granularity: string(s.engine.Config().Granularity),
	}
	if c, ok := s.store.(bookmark.Counter); ok {
		n, err := c.Count(r.Context())
		if err != nil {
			s.fail(w, r, errors.Wrap(err, "counting bookmarks"))
			return
		}
		h.Bookmarks = &n
	}
	respond(w, http.StatusOK, h)
}

// decode reads a JSON request body into v.
// On failure it has already responded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	// A symbol is at most four bytes of UTF-8.
	limit := int64(4*s.engine.Config().BlockLength() + 4096)
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, &APIError{Code: "BAD_REQUEST", Message: errors.Wrap(err, "decoding request body").Error()})
		return err
	}
	return nil
}
