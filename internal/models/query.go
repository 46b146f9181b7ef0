package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultPage = 1
	DefaultSize = 10

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Query is a client-supplied listing request. Unset fields fall back to
// defaults via the accessors; Filter narrows the listing to rows matching
// the entity-specific payload F and means "unrestricted" when nil.
type Query[F any] struct {
	Page   *int
	Size   *int
	Sort   *string
	Order  *string
	Filter *F
}

// DefaultQuery returns a Query with every field unset, listing the first
// page of DefaultSize rows in primary-key order.
func DefaultQuery[F any]() Query[F] {
	return Query[F]{}
}

func (q Query[F]) GetPage() int {
	if q.Page == nil || *q.Page < 1 {
		return DefaultPage
	}
	return *q.Page
}

func (q Query[F]) GetSize() int {
	if q.Size == nil || *q.Size < 1 {
		return DefaultSize
	}
	return *q.Size
}

// Offset is the zero-based row skip derived from page and size.
func (q Query[F]) Offset() int {
	return (q.GetPage() - 1) * q.GetSize()
}

func (q Query[F]) GetSort() string {
	if q.Sort == nil {
		return ""
	}
	return *q.Sort
}

// GetOrder normalizes the sort direction to OrderAsc or OrderDesc.
func (q Query[F]) GetOrder() string {
	if q.Order == nil {
		return OrderAsc
	}
	if strings.ToLower(*q.Order) == OrderDesc {
		return OrderDesc
	}
	return OrderAsc
}

// Validate rejects values the accessors would otherwise have to coerce.
// Callers should fail the request on error before touching the store.
func (q Query[F]) Validate() error {
	if q.Page != nil && *q.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", *q.Page)
	}
	if q.Size != nil && *q.Size < 1 {
		return fmt.Errorf("size must be >= 1, got %d", *q.Size)
	}
	if q.Order != nil {
		if o := strings.ToLower(*q.Order); o != OrderAsc && o != OrderDesc {
			return fmt.Errorf("order must be %q or %q, got %q", OrderAsc, OrderDesc, *q.Order)
		}
	}
	return nil
}

// Per-entity filter payloads. A nil field means no restriction on that
// column; a set field restricts the listing to exact matches.

type UserFilter struct {
	UserGroupID *uuid.UUID
}

type UserGroupFilter struct {
	GroupName *string
}

type PermissionFilter struct {
	Name *string
}

type GroupPermissionFilter struct {
	GroupID      *uuid.UUID
	PermissionID *uuid.UUID
}

type UserPermissionFilter struct {
	UserID       *uuid.UUID
	PermissionID *uuid.UUID
}

type ContentFilter struct {
	AuthorID *uuid.UUID
}
