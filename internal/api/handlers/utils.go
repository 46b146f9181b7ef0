package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roster/internal/models"
)

// ParseListQuery extracts page, size, sort and order from query parameters.
// Non-numeric or non-positive page/size values are an error; the caller maps
// it to a client-error response before touching the database. The filter
// field is left for the caller to populate.
func ParseListQuery[F any](c *gin.Context) (models.Query[F], error) {
	var q models.Query[F]

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return q, fmt.Errorf("invalid page %q", pageStr)
		}
		q.Page = &page
	}
	if sizeStr := c.Query("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return q, fmt.Errorf("invalid size %q", sizeStr)
		}
		q.Size = &size
	}
	if sort := c.Query("sort"); sort != "" {
		q.Sort = &sort
	}
	if order := c.Query("order"); order != "" {
		q.Order = &order
	}

	if err := q.Validate(); err != nil {
		return q, err
	}
	return q, nil
}

// ParseUUIDParam parses a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

// ParseUUIDQuery parses an optional query parameter as a UUID, returning nil
// when the parameter is absent.
func ParseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return &id, nil
}
