package models

import (
	"fmt"
	"strings"
)

// LinkBuilder renders absolute links to pages of one collection. It is
// constructed from configuration once per store and threaded explicitly
// into NewPagination, never read from a global.
type LinkBuilder struct {
	BaseURL string
	Path    string
}

func (lb LinkBuilder) PageLink(page, size int) string {
	base := strings.TrimRight(lb.BaseURL, "/")
	path := strings.Trim(lb.Path, "/")
	return fmt.Sprintf("%s/%s?page=%d&size=%d", base, path, page, size)
}

// Pagination describes the position of one page within a listing. PrevPage
// and NextPage always point at the adjacent page and are null on the wire
// when there is no such page.
type Pagination struct {
	Page     int     `json:"page"`
	Size     int     `json:"size"`
	Total    int64   `json:"total"`
	PrevPage *string `json:"prev_page"`
	NextPage *string `json:"next_page"`
}

// NewPagination builds the pagination block for one page of a listing.
// PrevPage is set iff page > 1; NextPage is set iff page*size < total.
func NewPagination(page, size int, total int64, links LinkBuilder) *Pagination {
	p := &Pagination{
		Page:  page,
		Size:  size,
		Total: total,
	}
	if page > 1 {
		prev := links.PageLink(page-1, size)
		p.PrevPage = &prev
	}
	if int64(page)*int64(size) < total {
		next := links.PageLink(page+1, size)
		p.NextPage = &next
	}
	return p
}
