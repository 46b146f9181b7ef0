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

type createContentRequest struct {
	Body     string     `json:"body" binding:"required"`
	AuthorID *uuid.UUID `json:"author_id"`
}

type updateContentRequest struct {
	Body     string     `json:"body" binding:"required"`
	AuthorID *uuid.UUID `json:"author_id"`
}

// ListContentsHandler handles GET /api/contents
func ListContentsHandler(pool *pgxpool.Pool, contentStore store.ContentStore, links models.LinkBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := ParseListQuery[models.ContentFilter](c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		authorID, err := ParseUUIDQuery(c, "author_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if authorID != nil {
			q.Filter = &models.ContentFilter{AuthorID: authorID}
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		contents, total, err := contentStore.ListContents(ctx, txn, q)
		if err != nil {
			if errors.Is(err, store.ErrInvalidSort) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
				return
			}
			slog.Error("Failed to list contents", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contents"})
			return
		}

		data := make([]models.ContentResponse, 0, len(contents))
		for _, item := range contents {
			data = append(data, item.Response())
		}

		pagination := models.NewPagination(q.GetPage(), q.GetSize(), total, links)
		c.JSON(http.StatusOK, models.NewResponse(data, pagination))
	}
}

// GetContentHandler handles GET /api/contents/:id
func GetContentHandler(pool *pgxpool.Pool, contentStore store.ContentStore) gin.HandlerFunc {
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

		content, err := contentStore.GetContent(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
				return
			}
			slog.Error("Failed to get content", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get content"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(content.Response(), nil))
	}
}

// CreateContentHandler handles POST /api/contents
func CreateContentHandler(pool *pgxpool.Pool, contentStore store.ContentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createContentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		content := models.NewContent(req.Body, req.AuthorID)

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		created, err := contentStore.CreateContent(ctx, txn, content)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Content already exists"})
				return
			}
			slog.Error("Failed to create content", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create content"})
			return
		}

		slog.Info("Content created", "id", created.ID)
		c.JSON(http.StatusCreated, models.NewResponse(created.Response(), nil))
	}
}

// UpdateContentHandler handles PUT /api/contents/:id
func UpdateContentHandler(pool *pgxpool.Pool, contentStore store.ContentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParseUUIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var req updateContentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		content := &models.Content{ID: id, Body: req.Body, AuthorID: req.AuthorID}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		updated, err := contentStore.UpdateContent(ctx, txn, content)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
				return
			}
			slog.Error("Failed to update content", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update content"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(updated.Response(), nil))
	}
}

// DeleteContentHandler handles DELETE /api/contents/:id
func DeleteContentHandler(pool *pgxpool.Pool, contentStore store.ContentStore) gin.HandlerFunc {
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

		deleted, err := contentStore.DeleteContent(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
				return
			}
			slog.Error("Failed to delete content", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete content"})
			return
		}

		slog.Info("Content deleted", "id", deleted.ID)
		c.JSON(http.StatusOK, models.NewResponse(deleted.Response(), nil))
	}
}

// DeleteContentsHandler handles DELETE /api/contents with a JSON body of ids.
func DeleteContentsHandler(pool *pgxpool.Pool, contentStore store.ContentStore) gin.HandlerFunc {
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

		deleted, err := contentStore.DeleteContents(ctx, txn, req.IDs)
		if err != nil {
			slog.Error("Failed to delete contents", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contents"})
			return
		}

		data := make([]models.ContentResponse, 0, len(deleted))
		for _, item := range deleted {
			data = append(data, item.Response())
		}

		slog.Info("Contents deleted", "requested", len(req.IDs), "deleted", len(deleted))
		c.JSON(http.StatusOK, models.NewResponse(data, nil))
	}
}
