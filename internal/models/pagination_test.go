package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageLink(t *testing.T) {
	lb := LinkBuilder{BaseURL: "http://localhost:8080/api", Path: "users"}
	assert.Equal(t, "http://localhost:8080/api/users?page=3&size=25", lb.PageLink(3, 25))

	// Stray slashes on either side collapse to a single separator.
	lb = LinkBuilder{BaseURL: "http://localhost:8080/api/", Path: "/users/"}
	assert.Equal(t, "http://localhost:8080/api/users?page=1&size=10", lb.PageLink(1, 10))
}

func TestNewPagination(t *testing.T) {
	links := LinkBuilder{BaseURL: "http://example.com/api", Path: "contents"}

	tests := []struct {
		name  string
		page  int
		size  int
		total int64
		prev  string // expected link, "" means null on the wire
		next  string
	}{
		{"EmptyListing", 1, 10, 0, "", ""},
		{"SingleRow", 1, 10, 1, "", ""},
		{"ExactlyOnePage", 1, 10, 10, "", ""},
		{"FirstOfMany", 1, 10, 11, "", "http://example.com/api/contents?page=2&size=10"},
		{"MiddlePage", 2, 10, 35, "http://example.com/api/contents?page=1&size=10", "http://example.com/api/contents?page=3&size=10"},
		{"LastPageExactFit", 2, 10, 20, "http://example.com/api/contents?page=1&size=10", ""},
		{"PastTheEnd", 9, 10, 20, "http://example.com/api/contents?page=8&size=10", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.size, tt.total, links)

			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.size, p.Size)
			assert.Equal(t, tt.total, p.Total)

			if tt.prev == "" {
				assert.Nil(t, p.PrevPage)
			} else {
				require.NotNil(t, p.PrevPage)
				assert.Equal(t, tt.prev, *p.PrevPage)
			}
			if tt.next == "" {
				assert.Nil(t, p.NextPage)
			} else {
				require.NotNil(t, p.NextPage)
				assert.Equal(t, tt.next, *p.NextPage)
			}
		})
	}
}
