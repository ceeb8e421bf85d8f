package views

import "fmt"

// Pager holds the rows of a list view with a cursor and the page of rows
// drawn around it
type Pager[T any] struct {
	items  []T
	cursor int
	offset int
	size   int
}

// NewPager creates a pager showing size rows at a time
func NewPager[T any](size int) *Pager[T] {
	if size <= 0 {
		size = 10
	}
	return &Pager[T]{size: size}
}

// SetItems replaces the rows. The cursor keeps its index, clamped to the
// new length.
func (p *Pager[T]) SetItems(items []T) {
	p.items = items
	p.Select(p.cursor)
}

// Items returns all rows
func (p *Pager[T]) Items() []T {
	return p.items
}

// Len returns the number of rows
func (p *Pager[T]) Len() int {
	return len(p.items)
}

// Cursor returns the absolute cursor index
func (p *Pager[T]) Cursor() int {
	return p.cursor
}

// Selected returns the row under the cursor
func (p *Pager[T]) Selected() (T, bool) {
	if p.cursor < len(p.items) {
		return p.items[p.cursor], true
	}
	var zero T
	return zero, false
}

// Select moves the cursor to index i
func (p *Pager[T]) Select(i int) {
	p.cursor = max(min(i, len(p.items)-1), 0)
	p.follow()
}

// SelectFunc moves the cursor to the first row match accepts
func (p *Pager[T]) SelectFunc(match func(T) bool) bool {
	for i, item := range p.items {
		if match(item) {
			p.Select(i)
			return true
		}
	}
	return false
}

// Up moves the cursor one row up
func (p *Pager[T]) Up() {
	p.Select(p.cursor - 1)
}

// Down moves the cursor one row down
func (p *Pager[T]) Down() {
	p.Select(p.cursor + 1)
}

// PageUp moves the cursor to the first row of the previous page
func (p *Pager[T]) PageUp() {
	p.offset = max(p.offset-p.size, 0)
	p.cursor = p.offset
}

// PageDown moves the cursor to the first row of the next page
func (p *Pager[T]) PageDown() {
	if p.offset+p.size < len(p.items) {
		p.offset += p.size
		p.cursor = p.offset
	}
}

// Resize changes the page height, keeping the cursor visible
func (p *Pager[T]) Resize(size int) {
	if size > 0 {
		p.size = size
		p.follow()
	}
}

// Visible returns the rows of the current page and the index of the first
func (p *Pager[T]) Visible() (start int, rows []T) {
	end := min(p.offset+p.size, len(p.items))
	return p.offset, p.items[p.offset:end]
}

// PageLabel renders "page n/m", or "" when everything fits on one page
func (p *Pager[T]) PageLabel() string {
	pages := (len(p.items) + p.size - 1) / p.size
	if pages <= 1 {
		return ""
	}
	return fmt.Sprintf("page %d/%d", p.offset/p.size+1, pages)
}

// Clear drops every row
func (p *Pager[T]) Clear() {
	p.items = nil
	p.cursor = 0
	p.offset = 0
}

func (p *Pager[T]) follow() {
	if p.cursor < p.offset || p.cursor >= p.offset+p.size {
		p.offset = (p.cursor / p.size) * p.size
	}
	if p.offset > len(p.items) {
		p.offset = 0
	}
}
