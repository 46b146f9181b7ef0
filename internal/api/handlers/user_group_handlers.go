package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/database"
	"roster/internal/models"
	"roster/internal/store"
)

type createUserGroupRequest struct {
	GroupName string `json:"group_name" binding:"required"`
}

type putUserGroupRequest struct {
	ID        *uuid.UUID `json:"id"`
	GroupName string     `json:"group_name" binding:"required"`
}

// ListUserGroupsHandler handles GET /api/user-groups
func ListUserGroupsHandler(pool *pgxpool.Pool, groupStore store.UserGroupStore, links models.LinkBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := ParseListQuery[models.UserGroupFilter](c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if name := c.Query("group_name"); name != "" {
			q.Filter = &models.UserGroupFilter{GroupName: &name}
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		groups, total, err := groupStore.ListUserGroups(ctx, txn, q)
		if err != nil {
			if errors.Is(err, store.ErrInvalidSort) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
				return
			}
			slog.Error("Failed to list user groups", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list user groups"})
			return
		}

		data := make([]models.UserGroupResponse, 0, len(groups))
		for _, g := range groups {
			data = append(data, g.Response())
		}

		pagination := models.NewPagination(q.GetPage(), q.GetSize(), total, links)
		c.JSON(http.StatusOK, models.NewResponse(data, pagination))
	}
}

// GetUserGroupHandler handles GET /api/user-groups/:id
func GetUserGroupHandler(pool *pgxpool.Pool, groupStore store.UserGroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParseUUIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		group, err := groupStore.GetUserGroup(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User group not found"})
				return
			}
			slog.Error("Failed to get user group", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user group"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(group.Response(), nil))
	}
}

// CreateUserGroupHandler handles POST /api/user-groups
func CreateUserGroupHandler(pool *pgxpool.Pool, groupStore store.UserGroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		group := models.NewUserGroup(nil, req.GroupName)

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		created, err := groupStore.CreateUserGroup(ctx, txn, group)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "User group already exists"})
				return
			}
			slog.Error("Failed to create user group", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user group"})
			return
		}

		slog.Info("User group created", "id", created.ID, "group_name", created.GroupName)
		c.JSON(http.StatusCreated, models.NewResponse(created.Response(), nil))
	}
}

// PutUserGroupHandler handles PUT /api/user-groups. A body without a known id
// inserts a new group (the supplied id, when present, is kept); a body whose
// id matches an existing row replaces that row.
func PutUserGroupHandler(pool *pgxpool.Pool, groupStore store.UserGroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req putUserGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()

		var existing *models.UserGroup
		if req.ID != nil {
			txn, err := database.Begin(ctx, pool)
			if err != nil {
				slog.Error("Failed to begin transaction", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
				return
			}
			group, err := groupStore.GetUserGroup(ctx, txn, *req.ID)
			txn.Rollback(ctx)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				slog.Error("Failed to look up user group", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user group"})
				return
			}
			existing = group
		}

		if existing == nil {
			group := models.NewUserGroup(req.ID, req.GroupName)

			txn, err := database.Begin(ctx, pool)
			if err != nil {
				slog.Error("Failed to begin transaction", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
				return
			}
			defer txn.Rollback(ctx)

			created, err := groupStore.CreateUserGroup(ctx, txn, group)
			if err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					c.JSON(http.StatusConflict, gin.H{"error": "User group already exists"})
					return
				}
				slog.Error("Failed to create user group", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user group"})
				return
			}

			slog.Info("User group created", "id", created.ID, "group_name", created.GroupName)
			c.JSON(http.StatusCreated, models.NewResponse(created.Response(), nil))
			return
		}

		existing.GroupName = req.GroupName

		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		updated, err := groupStore.UpdateUserGroup(ctx, txn, existing)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User group not found"})
				return
			}
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "User group already exists"})
				return
			}
			slog.Error("Failed to update user group", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user group"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(updated.Response(), nil))
	}
}

// DeleteUserGroupHandler handles DELETE /api/user-groups/:id
func DeleteUserGroupHandler(pool *pgxpool.Pool, groupStore store.UserGroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParseUUIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		deleted, err := groupStore.DeleteUserGroup(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User group not found"})
				return
			}
			slog.Error("Failed to delete user group", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user group"})
			return
		}

		slog.Info("User group deleted", "id", deleted.ID)
		c.JSON(http.StatusOK, models.NewResponse(deleted.Response(), nil))
	}
}

// DeleteUserGroupsHandler handles DELETE /api/user-groups with a JSON body of ids.
func DeleteUserGroupsHandler(pool *pgxpool.Pool, groupStore store.UserGroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deleteManyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		deleted, err := groupStore.DeleteUserGroups(ctx, txn, req.IDs)
		if err != nil {
			slog.Error("Failed to delete user groups", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user groups"})
			return
		}

		data := make([]models.UserGroupResponse, 0, len(deleted))
		for _, g := range deleted {
			data = append(data, g.Response())
		}

		slog.Info("User groups deleted", "requested", len(req.IDs), "deleted", len(deleted))
		c.JSON(http.StatusOK, models.NewResponse(data, nil))
	}
}
