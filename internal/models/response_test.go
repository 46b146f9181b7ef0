package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseEnvelope(t *testing.T) {
	t.Run("PaginationNullForSingleEntity", func(t *testing.T) {
		resp := NewResponse(map[string]string{"k": "v"}, nil)
		b, err := json.Marshal(resp)
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(b, &raw))
		assert.JSONEq(t, `{"k":"v"}`, string(raw["data"]))
		assert.Equal(t, "null", string(raw["pagination"]))
	})

	t.Run("EmptyListStaysArray", func(t *testing.T) {
		pagination := NewPagination(1, 10, 0, LinkBuilder{BaseURL: "http://example.com/api", Path: "users"})
		resp := NewResponse([]UserResponse{}, pagination)
		b, err := json.Marshal(resp)
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(b, &raw))
		assert.Equal(t, "[]", string(raw["data"]))
	})

	t.Run("PaginationOnTheWire", func(t *testing.T) {
		pagination := NewPagination(2, 5, 12, LinkBuilder{BaseURL: "http://example.com/api", Path: "users"})
		resp := NewResponse([]int{6, 7, 8, 9, 10}, pagination)
		b, err := json.Marshal(resp)
		require.NoError(t, err)

		var decoded struct {
			Pagination Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, 2, decoded.Pagination.Page)
		assert.Equal(t, 5, decoded.Pagination.Size)
		assert.Equal(t, int64(12), decoded.Pagination.Total)
		require.NotNil(t, decoded.Pagination.PrevPage)
		assert.Equal(t, "http://example.com/api/users?page=1&size=5", *decoded.Pagination.PrevPage)
		require.NotNil(t, decoded.Pagination.NextPage)
		assert.Equal(t, "http://example.com/api/users?page=3&size=5", *decoded.Pagination.NextPage)
	})
}
