// Package admin backs the product and user management screens: searching,
// sorting and paging happen here over the full lists the backend returns.
package admin

import "errors"

// ErrNotConfirmed is returned by destructive actions called without the
// operator's confirmation. Nothing is sent to the backend.
var ErrNotConfirmed = errors.New("action requires confirmation")

// ActionError is a failed mutation with the message to show the operator.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string { return e.Message }
func (e *ActionError) Unwrap() error { return e.Err }

// Page is one slice of a filtered, sorted list. Page numbers start at 1.
type Page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	Matched int `json:"matched"`
	First   int `json:"first"`
	Last    int `json:"last"`
}

// paginate clamps page into [1, pages] and cuts out its items.
func paginate[T any](all []T, page, size int) Page[T] {
	n := len(all)
	pages := (n + size - 1) / size
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	lo := min((page-1)*size, n)
	hi := min(lo+size, n)
	p := Page[T]{Items: all[lo:hi], Page: page, Pages: pages, Matched: n}
	if hi > lo {
		p.First, p.Last = lo+1, hi
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p
}
