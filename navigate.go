package babel

// Next returns the identifier of the page after id.
// At book granularity,
// the page after a book's last page is the first page of the next book.
// The page after the library's last page is its first.
func (e *Engine) Next(id Identifier) (Identifier, error) {
	return e.step(id, 1)
}

// Prev returns the identifier of the page before id.
// It is the inverse of Next.
func (e *Engine) Prev(id Identifier) (Identifier, error) {
	return e.step(id, -1)
}

func (e *Engine) step(id Identifier, dir int) (Identifier, error) {
	index, err := e.Encode(id)
	if err != nil {
		return Identifier{}, err
	}

	if e.cfg.Granularity == BookLevel {
		switch {
		case dir > 0 && id.Page < e.cfg.Pages:
			return e.Decode(index, id.Page+1), nil
		case dir < 0 && id.Page > 1:
			return e.Decode(index, id.Page-1), nil
		}
	}

	if dir > 0 {
		index = e.mod.Add(index, one)
	} else {
		index = e.mod.Sub(index, one)
	}

	page := 1
	if dir < 0 {
		page = e.cfg.Pages
	}
	return e.Decode(index, page), nil
}
