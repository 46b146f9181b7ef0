package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserResponseProjection(t *testing.T) {
	groupID := uuid.New()
	u := User{
		ID:           uuid.New(),
		Username:     "ripley",
		PasswordHash: "$2a$10$supersecret",
		CreatedAt:    time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		UserGroupID:  &groupID,
	}

	resp := u.Response()
	assert.Equal(t, u.ID, resp.ID)
	assert.Equal(t, "ripley", resp.Username)
	assert.Equal(t, "2025-03-14 09:26:53", resp.CreatedAt)
	assert.Equal(t, &groupID, resp.UserGroupID)

	// The hash must not leak into the wire projection.
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "supersecret")
	assert.NotContains(t, string(b), "password")
}

func TestTimestampsRenderInUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	g := UserGroup{
		ID:        uuid.New(),
		GroupName: "editors",
		CreatedAt: time.Date(2025, 6, 1, 14, 0, 0, 0, loc),
	}
	assert.Equal(t, "2025-06-01 12:00:00", g.Response().CreatedAt)
}

func TestNewUserGeneratesID(t *testing.T) {
	u := NewUser("hicks", "hash", nil)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Nil(t, u.UserGroupID)
}

func TestNewUserGroupIDHandling(t *testing.T) {
	supplied := uuid.New()
	g := NewUserGroup(&supplied, "admins")
	assert.Equal(t, supplied, g.ID)

	fresh := NewUserGroup(nil, "admins")
	assert.NotEqual(t, uuid.Nil, fresh.ID)
	assert.NotEqual(t, supplied, fresh.ID)
}

func TestContentResponseProjection(t *testing.T) {
	authorID := uuid.New()
	c := Content{
		ID:        uuid.New(),
		Body:      "release notes",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 3, 6, 7, 8, 0, time.UTC),
		AuthorID:  &authorID,
	}

	resp := c.Response()
	assert.Equal(t, "2025-01-02 03:04:05", resp.CreatedAt)
	assert.Equal(t, "2025-01-03 06:07:08", resp.UpdatedAt)
	assert.Equal(t, &authorID, resp.AuthorID)
}
