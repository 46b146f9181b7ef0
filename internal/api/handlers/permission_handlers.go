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

type createPermissionRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type putPermissionRequest struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description"`
}

// ListPermissionsHandler handles GET /api/permissions
func ListPermissionsHandler(pool *pgxpool.Pool, permStore store.PermissionStore, links models.LinkBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := ParseListQuery[models.PermissionFilter](c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if name := c.Query("name"); name != "" {
			q.Filter = &models.PermissionFilter{Name: &name}
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		permissions, total, err := permStore.ListPermissions(ctx, txn, q)
		if err != nil {
			if errors.Is(err, store.ErrInvalidSort) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
				return
			}
			slog.Error("Failed to list permissions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list permissions"})
			return
		}

		data := make([]models.PermissionResponse, 0, len(permissions))
		for _, p := range permissions {
			data = append(data, p.Response())
		}

		pagination := models.NewPagination(q.GetPage(), q.GetSize(), total, links)
		c.JSON(http.StatusOK, models.NewResponse(data, pagination))
	}
}

// GetPermissionHandler handles GET /api/permissions/:id
func GetPermissionHandler(pool *pgxpool.Pool, permStore store.PermissionStore) gin.HandlerFunc {
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

		perm, err := permStore.GetPermission(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
				return
			}
			slog.Error("Failed to get permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get permission"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(perm.Response(), nil))
	}
}

// CreatePermissionHandler handles POST /api/permissions
func CreatePermissionHandler(pool *pgxpool.Pool, permStore store.PermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPermissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		perm := models.NewPermission(req.Name, req.Description)

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		created, err := permStore.CreatePermission(ctx, txn, perm)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Permission already exists"})
				return
			}
			slog.Error("Failed to create permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create permission"})
			return
		}

		slog.Info("Permission created", "id", created.ID, "name", created.Name)
		c.JSON(http.StatusCreated, models.NewResponse(created.Response(), nil))
	}
}

// PutPermissionHandler handles PUT /api/permissions. A body without a known
// id inserts a new permission (the supplied id, when present, is kept); a
// body whose id matches an existing row replaces that row.
func PutPermissionHandler(pool *pgxpool.Pool, permStore store.PermissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req putPermissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()

		var existing *models.Permission
		if req.ID != nil {
			txn, err := database.Begin(ctx, pool)
			if err != nil {
				slog.Error("Failed to begin transaction", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
				return
			}
			perm, err := permStore.GetPermission(ctx, txn, *req.ID)
			txn.Rollback(ctx)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				slog.Error("Failed to look up permission", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up permission"})
				return
			}
			existing = perm
		}

		if existing == nil {
			perm := models.NewPermission(req.Name, req.Description)
			if req.ID != nil {
				perm.ID = *req.ID
			}

			txn, err := database.Begin(ctx, pool)
			if err != nil {
				slog.Error("Failed to begin transaction", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
				return
			}
			defer txn.Rollback(ctx)

			created, err := permStore.CreatePermission(ctx, txn, perm)
			if err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					c.JSON(http.StatusConflict, gin.H{"error": "Permission already exists"})
					return
				}
				slog.Error("Failed to create permission", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create permission"})
				return
			}

			slog.Info("Permission created", "id", created.ID, "name", created.Name)
			c.JSON(http.StatusCreated, models.NewResponse(created.Response(), nil))
			return
		}

		existing.Name = req.Name
		existing.Description = req.Description

		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		updated, err := permStore.UpdatePermission(ctx, txn, existing)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
				return
			}
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Permission already exists"})
				return
			}
			slog.Error("Failed to update permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update permission"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(updated.Response(), nil))
	}
}

// DeletePermissionHandler handles DELETE /api/permissions/:id
func DeletePermissionHandler(pool *pgxpool.Pool, permStore store.PermissionStore) gin.HandlerFunc {
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

		deleted, err := permStore.DeletePermission(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
				return
			}
			slog.Error("Failed to delete permission", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete permission"})
			return
		}

		slog.Info("Permission deleted", "id", deleted.ID)
		c.JSON(http.StatusOK, models.NewResponse(deleted.Response(), nil))
	}
}

// DeletePermissionsHandler handles DELETE /api/permissions with a JSON body of ids.
func DeletePermissionsHandler(pool *pgxpool.Pool, permStore store.PermissionStore) gin.HandlerFunc {
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

		deleted, err := permStore.DeletePermissions(ctx, txn, req.IDs)
		if err != nil {
			slog.Error("Failed to delete permissions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete permissions"})
			return
		}

		data := make([]models.PermissionResponse, 0, len(deleted))
		for _, p := range deleted {
			data = append(data, p.Response())
		}

		slog.Info("Permissions deleted", "requested", len(req.IDs), "deleted", len(deleted))
		c.JSON(http.StatusOK, models.NewResponse(data, nil))
	}
}
