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

type createUserPermissionRequest struct {
	UserID       uuid.UUID `json:"user_id" binding:"required"`
	PermissionID uuid.UUID `json:"permission_id" binding:"required"`
}

// ListUserPermissionsHandler handles GET /api/user-permissions
func ListUserPermissionsHandler(pool *pgxpool.Pool, upStore store.UserPermissionStore, links models.LinkBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := ParseListQuery[models.UserPermissionFilter](c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		userID, err := ParseUUIDQuery(c, "user_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		permissionID, err := ParseUUIDQuery(c, "permission_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if userID != nil || permissionID != nil {
			q.Filter = &models.UserPermissionFilter{UserID: userID, PermissionID: permissionID}
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		grants, total, err := upStore.ListUserPermissions(ctx, txn, q)
		if err != nil {
			if errors.Is(err, store.ErrInvalidSort) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
				return
			}
			slog.Error("Failed to list user permissions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list user permissions"})
			return
		}

		data := make([]models.UserPermissionResponse, 0, len(grants))
		for _, up := range grants {
			data = append(data, up.Response())
		}

		pagination := models.NewPagination(q.GetPage(), q.GetSize(), total, links)
		c.JSON(http.StatusOK, models.NewResponse(data, pagination))
	}
}

// GetUserPermissionHandler handles GET /api/user-permissions/:userId/:permissionId
func GetUserPermissionHandler(pool *pgxpool.Pool, upStore store.UserPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ParseUUIDParam(c, "userId")
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

		grant, err := upStore.GetUserPermission(ctx, txn, userID, permissionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User permission not found"})
				return
			}
			slog.Error("Failed to get user permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user permission"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(grant.Response(), nil))
	}
}

// CreateUserPermissionHandler handles POST /api/user-permissions
func CreateUserPermissionHandler(pool *pgxpool.Pool, upStore store.UserPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserPermissionRequest
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

		exists, err := upStore.UserPermissionExists(ctx, txn, req.UserID, req.PermissionID)
		if err != nil {
			slog.Error("Failed to check user permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user permission"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "User permission already exists"})
			return
		}

		grant, err := upStore.CreateUserPermission(ctx, txn, req.UserID, req.PermissionID)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "User permission already exists"})
				return
			}
			slog.Error("Failed to create user permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user permission"})
			return
		}

		slog.Info("User permission created", "user_id", grant.UserID, "permission_id", grant.PermissionID)
		c.JSON(http.StatusCreated, models.NewResponse(grant.Response(), nil))
	}
}

// DeleteUserPermissionHandler handles DELETE /api/user-permissions/:userId/:permissionId
func DeleteUserPermissionHandler(pool *pgxpool.Pool, upStore store.UserPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ParseUUIDParam(c, "userId")
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

		deleted, err := upStore.DeleteUserPermission(ctx, txn, userID, permissionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User permission not found"})
				return
			}
			slog.Error("Failed to delete user permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user permission"})
			return
		}

		slog.Info("User permission deleted", "user_id", deleted.UserID, "permission_id", deleted.PermissionID)
		c.JSON(http.StatusOK, models.NewResponse(deleted.Response(), nil))
	}
}

// DeleteUserPermissionsHandler handles DELETE /api/user-permissions.
// Exactly one of the user_id and permission_id query parameters selects the
// owner whose grants are removed; the response carries the deleted rows.
func DeleteUserPermissionsHandler(pool *pgxpool.Pool, upStore store.UserPermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ParseUUIDQuery(c, "user_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		permissionID, err := ParseUUIDQuery(c, "permission_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if (userID == nil) == (permissionID == nil) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one of user_id and permission_id is required"})
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

		var deleted []models.UserPermission
		if userID != nil {
			deleted, err = upStore.DeleteUserPermissionsByUser(ctx, txn, *userID)
		} else {
			deleted, err = upStore.DeleteUserPermissionsByPermission(ctx, txn, *permissionID)
		}
		if err != nil {
			slog.Error("Failed to delete user permissions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user permissions"})
			return
		}

		data := make([]models.UserPermissionResponse, 0, len(deleted))
		for _, up := range deleted {
			data = append(data, up.Response())
		}

		slog.Info("User permissions deleted", "deleted", len(deleted))
		c.JSON(http.StatusOK, models.NewResponse(data, nil))
	}
}
