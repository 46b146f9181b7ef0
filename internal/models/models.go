package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeFormat is how timestamps are rendered in wire projections.
const TimeFormat = "2006-01-02 15:04:05"

// CreatedAt (and UpdatedAt on Content) are owned by the database: inserts
// omit them and read the generated value back via RETURNING.

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UserGroupID  *uuid.UUID `json:"user_group_id,omitempty"`
}

func NewUser(username, passwordHash string, userGroupID *uuid.UUID) *User {
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		UserGroupID:  userGroupID,
	}
}

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	CreatedAt   string     `json:"created_at"`
	UserGroupID *uuid.UUID `json:"user_group_id"`
}

func (u User) Response() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt.UTC().Format(TimeFormat),
		UserGroupID: u.UserGroupID,
	}
}

type UserGroup struct {
	ID        uuid.UUID `json:"id"`
	GroupName string    `json:"group_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserGroup honors a supplied id so callers can address the group before
// it exists; a fresh one is generated when id is nil.
func NewUserGroup(id *uuid.UUID, groupName string) *UserGroup {
	gid := uuid.New()
	if id != nil {
		gid = *id
	}
	return &UserGroup{ID: gid, GroupName: groupName}
}

type UserGroupResponse struct {
	ID        uuid.UUID `json:"id"`
	GroupName string    `json:"group_name"`
	CreatedAt string    `json:"created_at"`
}

func (g UserGroup) Response() UserGroupResponse {
	return UserGroupResponse{
		ID:        g.ID,
		GroupName: g.GroupName,
		CreatedAt: g.CreatedAt.UTC().Format(TimeFormat),
	}
}

type Permission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewPermission(name string, description *string) *Permission {
	return &Permission{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}
}

type PermissionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   string    `json:"created_at"`
}

func (p Permission) Response() PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC().Format(TimeFormat),
	}
}

// GroupPermission grants a permission to every member of a group. The pair
// (GroupID, PermissionID) is the primary key.
type GroupPermission struct {
	GroupID      uuid.UUID `json:"group_id"`
	PermissionID uuid.UUID `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type GroupPermissionResponse struct {
	GroupID      uuid.UUID `json:"group_id"`
	PermissionID uuid.UUID `json:"permission_id"`
	CreatedAt    string    `json:"created_at"`
}

func (gp GroupPermission) Response() GroupPermissionResponse {
	return GroupPermissionResponse{
		GroupID:      gp.GroupID,
		PermissionID: gp.PermissionID,
		CreatedAt:    gp.CreatedAt.UTC().Format(TimeFormat),
	}
}

// UserPermission grants a permission to a single user. The pair
// (UserID, PermissionID) is the primary key.
type UserPermission struct {
	UserID       uuid.UUID `json:"user_id"`
	PermissionID uuid.UUID `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserPermissionResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	PermissionID uuid.UUID `json:"permission_id"`
	CreatedAt    string    `json:"created_at"`
}

func (up UserPermission) Response() UserPermissionResponse {
	return UserPermissionResponse{
		UserID:       up.UserID,
		PermissionID: up.PermissionID,
		CreatedAt:    up.CreatedAt.UTC().Format(TimeFormat),
	}
}

type Content struct {
	ID        uuid.UUID  `json:"id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
}

func NewContent(body string, authorID *uuid.UUID) *Content {
	return &Content{
		ID:       uuid.New(),
		Body:     body,
		AuthorID: authorID,
	}
}

type ContentResponse struct {
	ID        uuid.UUID  `json:"id"`
	Body      string     `json:"body"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
	AuthorID  *uuid.UUID `json:"author_id"`
}

func (c Content) Response() ContentResponse {
	return ContentResponse{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt.UTC().Format(TimeFormat),
		UpdatedAt: c.UpdatedAt.UTC().Format(TimeFormat),
		AuthorID:  c.AuthorID,
	}
}

// OverviewStats is the aggregate snapshot behind GET /api/stats. The Change
// counters cover rows created in the last 30 days.
type OverviewStats struct {
	TotalUsers          int               `json:"total_users"`
	TotalUsersChange    int               `json:"total_users_change"`
	TotalUserGroups     int               `json:"total_user_groups"`
	TotalPermissions    int               `json:"total_permissions"`
	TotalGroupGrants    int               `json:"total_group_grants"`
	TotalUserGrants     int               `json:"total_user_grants"`
	TotalContents       int               `json:"total_contents"`
	TotalContentsChange int               `json:"total_contents_change"`
	RecentContents      []ContentResponse `json:"recent_contents"`
}
