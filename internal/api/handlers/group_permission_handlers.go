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

type createGroupPermissionRequest struct {
	GroupID      uuid.UUID `json:"group_id" binding:"required"`
	PermissionID uuid.UUID `json:"permission_id" binding:"required"`
}

// ListGroupPermissionsHandler handles GET /api/group-permissions
func ListGroupPermissionsHandler(pool *pgxpool.Pool, gpStore store.GroupPermissionStore, links models.LinkBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := ParseListQuery[models.GroupPermissionFilter](c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		groupID, err := ParseUUIDQuery(c, "group_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		permissionID, err := ParseUUIDQuery(c, "permission_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if groupID != nil || permissionID != nil {
			q.Filter = &models.GroupPermissionFilter{GroupID: groupID, PermissionID: permissionID}
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		grants, total, err := gpStore.ListGroupPermissions(ctx, txn, q)
		if err != nil {
			if errors.Is(err, store.ErrInvalidSort) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
				return
			}
			slog.Error("Failed to list group permissions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list group permissions"})
			return
		}

		data := make([]models.GroupPermissionResponse, 0, len(grants))
		for _, gp := range grants {
			data = append(data, gp.Response())
		}

		pagination := models.NewPagination(q.GetPage(), q.GetSize(), total, links)
		c.JSON(http.StatusOK, models.NewResponse(data, pagination))
	}
}

// GetGroupPermissionHandler handles GET /api/group-permissions/:groupId/:permissionId
func GetGroupPermissionHandler(pool *pgxpool.Pool, gpStore store.GroupPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, err := ParseUUIDParam(c, "groupId")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		permissionID, err := ParseUUIDParam(c, "permissionId")
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

		grant, err := gpStore.GetGroupPermission(ctx, txn, groupID, permissionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Group permission not found"})
				return
			}
			slog.Error("Failed to get group permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get group permission"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(grant.Response(), nil))
	}
}

// CreateGroupPermissionHandler handles POST /api/group-permissions
func CreateGroupPermissionHandler(pool *pgxpool.Pool, gpStore store.GroupPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createGroupPermissionRequest
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

		exists, err := gpStore.GroupPermissionExists(ctx, txn, req.GroupID, req.PermissionID)
		if err != nil {
			slog.Error("Failed to check group permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group permission"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "Group permission already exists"})
			return
		}

		grant, err := gpStore.CreateGroupPermission(ctx, txn, req.GroupID, req.PermissionID)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Group permission already exists"})
				return
			}
			slog.Error("Failed to create group permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group permission"})
			return
		}

		slog.Info("Group permission created", "group_id", grant.GroupID, "permission_id", grant.PermissionID)
		c.JSON(http.StatusCreated, models.NewResponse(grant.Response(), nil))
	}
}

// DeleteGroupPermissionHandler handles DELETE /api/group-permissions/:groupId/:permissionId
func DeleteGroupPermissionHandler(pool *pgxpool.Pool, gpStore store.GroupPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, err := ParseUUIDParam(c, "groupId")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		permissionID, err := ParseUUIDParam(c, "permissionId")
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

		deleted, err := gpStore.DeleteGroupPermission(ctx, txn, groupID, permissionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Group permission not found"})
				return
			}
			slog.Error("Failed to delete group permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group permission"})
			return
		}

		slog.Info("Group permission deleted", "group_id", deleted.GroupID, "permission_id", deleted.PermissionID)
		c.JSON(http.StatusOK, models.NewResponse(deleted.Response(), nil))
	}
}

// DeleteGroupPermissionsHandler handles DELETE /api/group-permissions.
// Exactly one of the group_id and permission_id query parameters selects the
// owner whose grants are removed; the response carries the deleted rows.
func DeleteGroupPermissionsHandler(pool *pgxpool.Pool, gpStore store.GroupPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, err := ParseUUIDQuery(c, "group_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		permissionID, err := ParseUUIDQuery(c, "permission_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if (groupID == nil) == (permissionID == nil) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one of group_id and permission_id is required"})
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

		var deleted []models.GroupPermission
		if groupID != nil {
			deleted, err = gpStore.DeleteGroupPermissionsByGroup(ctx, txn, *groupID)
		} else {
			deleted, err = gpStore.DeleteGroupPermissionsByPermission(ctx, txn, *permissionID)
		}
		if err != nil {
			slog.Error("Failed to delete group permissions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group permissions"})
			return
		}

		data := make([]models.GroupPermissionResponse, 0, len(deleted))
		for _, gp := range deleted {
			data = append(data, gp.Response())
		}

		slog.Info("Group permissions deleted", "deleted", len(deleted))
		c.JSON(http.StatusOK, models.NewResponse(data, nil))
	}
}
