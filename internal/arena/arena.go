// Copyright (c) 2024 The ABLC Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package arena implements a bump allocator with chained pages, giving every
// compiler stage a single handle whose teardown is O(pages) instead of
// O(nodes). The x64 selector creates one arena per function and ties that
// function's instruction vectors to it; the AST and IR stages use ordinary Go
// allocation. Nothing allocated from an arena has a destructor to run, so
// dropping the arena's page list is enough.
package arena

import "unsafe"

const (
	// DefaultPageSize is the capacity of a freshly grown page.
	DefaultPageSize = 4096
	// DefaultAlignment is the alignment every allocation is rounded up to.
	DefaultAlignment = 16
)

type page struct {
	buf    []byte
	offset int
}

// Arena is a linked list of pages plus a bump offset into the current one.
type Arena struct {
	pageSize int
	pages    []*page
}

// New creates an arena that grows in DefaultPageSize increments.
func New() *Arena {
	return NewSized(DefaultPageSize)
}

// NewSized creates an arena whose pages are at least pageSize bytes, growing
// larger only when a single allocation does not fit in a fresh page of that
// size.
func NewSized(pageSize int) *Arena {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Arena{pageSize: pageSize}
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

func newPage(size int) *page {
	return &page{buf: make([]byte, size)}
}

// alloc reserves size bytes aligned to DefaultAlignment, growing a new page
// when the current one can't fit the request.
func (a *Arena) alloc(size int) unsafe.Pointer {
	if size <= 0 {
		size = 1
	}
	if n := len(a.pages); n > 0 {
		p := a.pages[n-1]
		off := alignUp(p.offset, DefaultAlignment)
		if off+size <= len(p.buf) {
			p.offset = off + size
			return unsafe.Pointer(&p.buf[off])
		}
	}
	sz := a.pageSize
	if size > sz {
		sz = size
	}
	p := newPage(sz)
	p.offset = size
	a.pages = append(a.pages, p)
	return unsafe.Pointer(&p.buf[0])
}

// Alloc returns a zeroed *T carved out of the arena. T must be trivially
// destructible (no finalizers are ever run on arena-backed values), and any
// pointer stored in a T must target the same arena or something otherwise
// kept alive: the collector does not scan arena pages for references.
func Alloc[T any](a *Arena) *T {
	var zero T
	ptr := a.alloc(int(unsafe.Sizeof(zero)))
	v := (*T)(ptr)
	*v = zero
	return v
}

// PageCount reports how many pages are currently chained, mostly useful for
// tests asserting the O(pages) teardown bound.
func (a *Arena) PageCount() int {
	return len(a.pages)
}

// Destroy drops every page. Values allocated from the arena become garbage
// the moment nothing else references them; Destroy itself is O(pages), never
// O(values).
func (a *Arena) Destroy() {
	a.pages = nil
}
