// Package search builds library blocks that contain a given text,
// so that inverting the block finds the text's location in the library.
package search

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
)

// Mode selects how the rest of a block is filled around the search text.
type Mode string

const (
	// Empty lays the text out from the top left of the first page, line breaks included,
	// and pads everything else with blanks.
	Empty Mode = "empty"

	// EmptyPage is Empty on a randomly chosen page of a book,
	// with every other page random.
	// At page granularity it is the same as Empty.
	EmptyPage Mode = "empty-page"

	// Chars places the text at a random offset among random symbols.
	Chars Mode = "chars"

	// Words places the text at a random offset among random words.
	Words Mode = "words"
)

// ErrUnknownMode is returned for a Mode not defined here.
var ErrUnknownMode = errors.New("unknown search mode")

//go:embed words.txt
var defaultWords string

// Rand is the source of randomness for embedding.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// DefaultRand draws from math/rand's shared source.
var DefaultRand Rand = globalRand{}

// Highlight is the position of the search text in its page.
// End is inclusive: the line and column of the text's last character.
// Lines are relative to the page the text starts on,
// so a text that runs across a page break has an EndLine past the last line.
type Highlight struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// String renders h as startLine:startCol:endLine:endCol.
func (h Highlight) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", h.StartLine, h.StartCol, h.EndLine, h.EndCol)
}

// ParseHighlight is the inverse of Highlight.String.
func ParseHighlight(s string) (Highlight, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Highlight{}, errors.Errorf("malformed highlight %q", s)
	}
	var (
		h    Highlight
		dsts = []*int{&h.StartLine, &h.StartCol, &h.EndLine, &h.EndCol}
	)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Highlight{}, errors.Wrapf(err, "parsing highlight %q", s)
		}
		*dsts[i] = n
	}
	return h, nil
}

// Result is a filled block.
type Result struct {
	// Block is exactly one block of symbols containing the text.
	Block string

	// Page is the 1-based page on which the text starts.
	// At page granularity it is always 1.
	Page int

	Highlight Highlight
}

// Embedder fills blocks for one library shape.
type Embedder struct {
	cfg     babel.Config
	symbols []rune
	allowed map[rune]bool
	blank   rune

	words []string // sorted by length, then lexically
	lens  []int    // lens[i] = rune count of words[i]
}

// NewEmbedder produces an Embedder for the library described by cfg.
// Filler words for Words mode come from words,
// or from a built-in list of common English words if words is nil.
// Words containing symbols outside the alphabet are dropped.
func NewEmbedder(cfg babel.Config, words []string) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	em := &Embedder{
		cfg:     cfg,
		symbols: []rune(cfg.Alphabet),
		allowed: make(map[rune]bool),
	}
	em.blank, _ = utf8.DecodeRuneInString(cfg.Blank)
	for _, r := range em.symbols {
		em.allowed[r] = true
	}

	if words == nil {
		words = strings.Fields(defaultWords)
	}
	for _, w := range words {
		if w != "" && em.valid(w) && !strings.ContainsRune(w, em.blank) {
			em.words = append(em.words, w)
		}
	}
	sort.Slice(em.words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(em.words[i]), utf8.RuneCountInString(em.words[j])
		if li != lj {
			return li < lj
		}
		return em.words[i] < em.words[j]
	})
	for _, w := range em.words {
		em.lens = append(em.lens, utf8.RuneCountInString(w))
	}
	return em, nil
}

func (em *Embedder) valid(s string) bool {
	for _, r := range s {
		if !em.allowed[r] {
			return false
		}
	}
	return true
}

// Embed builds a block containing text.
// Chars and Words modes ignore line breaks in text and reject symbols outside the alphabet;
// Empty and EmptyPage keep line breaks and blank out other symbols;
// the text must fit on one page of Lines rows of Chars symbols.
func (em *Embedder) Embed(text string, mode Mode, rng Rand) (Result, error) {
	if rng == nil {
		rng = DefaultRand
	}
	text = strings.ReplaceAll(text, "\r", "")

	budget := em.cfg.BlockLength()
	if n := utf8.RuneCountInString(strings.ReplaceAll(text, "\n", "")); n > budget {
		return Result{}, &babel.FieldError{Field: "text", Value: strconv.Itoa(n), Err: errors.Wrapf(babel.ErrOutOfBounds, "longer than %d", budget)}
	}

	switch mode {
	case Empty, EmptyPage:
		if err := em.fitsPage(text); err != nil {
			return Result{}, err
		}
		return em.empty(text, mode == EmptyPage && em.cfg.Granularity == babel.BookLevel, rng), nil
	case Chars, Words:
		flat := []rune(strings.ReplaceAll(text, "\n", ""))
		for i, r := range flat {
			if !em.allowed[r] {
				return Result{}, &babel.FieldError{Field: "text", Value: strconv.Itoa(i) + ":" + string(r), Err: babel.ErrInvalidSymbol}
			}
		}
		// An empty text still occupies one position, so its span stays inside the block.
		start := rng.Intn(budget - max(len(flat), 1) + 1)
		var block []rune
		if mode == Chars {
			block = em.randomChars(flat, start, rng)
		} else {
			block = em.randomWords(flat, start, rng)
		}
		page, h := em.highlight(start, len(flat))
		return Result{Block: string(block), Page: page, Highlight: h}, nil
	}
	return Result{}, errors.Wrapf(ErrUnknownMode, "%q", mode)
}

// fitsPage reports an error unless every line of text fits on one page,
// in which case layout places all of it.
func (em *Embedder) fitsPage(text string) error {
	for i, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if n == 0 {
			continue
		}
		if i >= em.cfg.Lines {
			return &babel.FieldError{Field: "text", Value: "line " + strconv.Itoa(i+1), Err: errors.Wrapf(babel.ErrOutOfBounds, "more than %d lines", em.cfg.Lines)}
		}
		if n > em.cfg.Chars {
			return &babel.FieldError{Field: "text", Value: "line " + strconv.Itoa(i+1), Err: errors.Wrapf(babel.ErrOutOfBounds, "line longer than %d", em.cfg.Chars)}
		}
	}
	return nil
}

// layout renders text as one page: Lines rows of Chars symbols.
// It returns the page and the inclusive end of the laid-out text.
func (em *Embedder) layout(text string) ([]rune, int, int) {
	var (
		cfg           = em.cfg
		page          = make([]rune, cfg.PageLength())
		lines         = strings.Split(text, "\n")
		endLine, endC = 0, -1
	)
	for i := range page {
		page[i] = em.blank
	}
	for li := 0; li < cfg.Lines && li < len(lines); li++ {
		col := 0
		for _, r := range lines[li] {
			if col >= cfg.Chars {
				break
			}
			if !em.allowed[r] {
				r = em.blank
			}
			page[li*cfg.Chars+col] = r
			col++
		}
		if col > 0 {
			endLine, endC = li, col-1
		}
	}
	if endC < 0 {
		endC = 0
	}
	return page, endLine, endC
}

func (em *Embedder) empty(text string, randomPage bool, rng Rand) Result {
	var (
		budget           = em.cfg.BlockLength()
		page, endL, endC = em.layout(text)
		block            = make([]rune, budget)
		pageNum          = 1
	)
	if randomPage {
		pageNum = rng.Intn(em.cfg.Pages) + 1
		for i := range block {
			block[i] = em.symbols[rng.Intn(len(em.symbols))]
		}
	} else {
		for i := range block {
			block[i] = em.blank
		}
	}
	copy(block[(pageNum-1)*len(page):], page)

	return Result{
		Block:     string(block),
		Page:      pageNum,
		Highlight: Highlight{EndLine: endL, EndCol: endC},
	}
}

func (em *Embedder) randomChars(text []rune, start int, rng Rand) []rune {
	block := make([]rune, em.cfg.BlockLength())
	for i := range block {
		block[i] = em.symbols[rng.Intn(len(em.symbols))]
	}
	copy(block[start:], text)
	return block
}

func (em *Embedder) randomWords(text []rune, start int, rng Rand) []rune {
	budget := em.cfg.BlockLength()
	block := make([]rune, 0, budget+1)

	block = em.fillWords(block, start, rng)
	block = append(block, text...)
	if len(block) < budget {
		block = append(block, em.blank)
	}
	block = em.fillWords(block, budget, rng)
	return block[:budget]
}

// fillWords appends random words, each followed by a blank, until block is limit long.
// Each word is short enough to leave room for its blank.
func (em *Embedder) fillWords(block []rune, limit int, rng Rand) []rune {
	for len(block) < limit {
		room := limit - len(block) - 1
		n := sort.SearchInts(em.lens, room+1)
		if n > 0 {
			block = append(block, []rune(em.words[rng.Intn(n)])...)
		}
		block = append(block, em.blank)
	}
	return block
}

// highlight locates a text of length n at block offset start,
// returning its page and page-relative span.
func (em *Embedder) highlight(start, n int) (int, Highlight) {
	var (
		cfg  = em.cfg
		page = 1
	)
	if cfg.Granularity == babel.BookLevel {
		page = start/cfg.PageLength() + 1
		start -= (page - 1) * cfg.PageLength()
	}
	end := start
	if n > 0 {
		end = start + n - 1
	}
	return page, Highlight{
		StartLine: start / cfg.Chars,
		StartCol:  start % cfg.Chars,
		EndLine:   end / cfg.Chars,
		EndCol:    end % cfg.Chars,
	}
}

// Search embeds text and looks up the resulting block in the library.
func (em *Embedder) Search(e *babel.Engine, text string, mode Mode, rng Rand) (babel.Identifier, Result, error) {
	res, err := em.Embed(text, mode, rng)
	if err != nil {
		return babel.Identifier{}, Result{}, err
	}
	id, err := e.Lookup(res.Block, res.Page)
	if err != nil {
		return babel.Identifier{}, Result{}, errors.Wrap(err, "inverting block")
	}
	return id, res, nil
}
