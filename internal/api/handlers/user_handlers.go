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
	"roster/internal/service"
	"roster/internal/store"
)

type createUserRequest struct {
	Username    string     `json:"username" binding:"required"`
	Password    string     `json:"password" binding:"required"`
	UserGroupID *uuid.UUID `json:"user_group_id"`
}

type putUserRequest struct {
	ID          *uuid.UUID `json:"id"`
	Username    string     `json:"username" binding:"required"`
	Password    string     `json:"password"`
	UserGroupID *uuid.UUID `json:"user_group_id"`
}

type deleteManyRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// ListUsersHandler handles GET /api/users
func ListUsersHandler(pool *pgxpool.Pool, userStore store.UserStore, links models.LinkBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := ParseListQuery[models.UserFilter](c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		groupID, err := ParseUUIDQuery(c, "user_group_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if groupID != nil {
			q.Filter = &models.UserFilter{UserGroupID: groupID}
		}

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		users, total, err := userStore.ListUsers(ctx, txn, q)
		if err != nil {
			if errors.Is(err, store.ErrInvalidSort) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
				return
			}
			slog.Error("Failed to list users", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
			return
		}

		data := make([]models.UserResponse, 0, len(users))
		for _, u := range users {
			data = append(data, u.Response())
		}

		pagination := models.NewPagination(q.GetPage(), q.GetSize(), total, links)
		c.JSON(http.StatusOK, models.NewResponse(data, pagination))
	}
}

// GetUserHandler handles GET /api/users/:id
func GetUserHandler(pool *pgxpool.Pool, userStore store.UserStore) gin.HandlerFunc {
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

		user, err := userStore.GetUser(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			slog.Error("Failed to get user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(user.Response(), nil))
	}
}

// CreateUserHandler handles POST /api/users
func CreateUserHandler(pool *pgxpool.Pool, userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hash, err := service.HashPassword(req.Password)
		if err != nil {
			slog.Error("Failed to hash password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		user := models.NewUser(req.Username, hash, req.UserGroupID)

		ctx := c.Request.Context()
		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		created, err := userStore.CreateUser(ctx, txn, user)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
				return
			}
			slog.Error("Failed to create user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		slog.Info("User created", "id", created.ID, "username", created.Username)
		c.JSON(http.StatusCreated, models.NewResponse(created.Response(), nil))
	}
}

// PutUserHandler handles PUT /api/users. A body without a known id inserts a
// new user under a server-generated id; a body whose id matches an existing
// row replaces that row.
func PutUserHandler(pool *pgxpool.Pool, userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req putUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()

		var existing *models.User
		if req.ID != nil {
			txn, err := database.Begin(ctx, pool)
			if err != nil {
				slog.Error("Failed to begin transaction", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
				return
			}
			user, err := userStore.GetUser(ctx, txn, *req.ID)
			txn.Rollback(ctx)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				slog.Error("Failed to look up user", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
				return
			}
			existing = user
		}

		if existing == nil {
			if req.Password == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
				return
			}
			hash, err := service.HashPassword(req.Password)
			if err != nil {
				slog.Error("Failed to hash password", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
			user := models.NewUser(req.Username, hash, req.UserGroupID)

			txn, err := database.Begin(ctx, pool)
			if err != nil {
				slog.Error("Failed to begin transaction", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
				return
			}
			defer txn.Rollback(ctx)

			created, err := userStore.CreateUser(ctx, txn, user)
			if err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
					return
				}
				slog.Error("Failed to create user", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}

			slog.Info("User created", "id", created.ID, "username", created.Username)
			c.JSON(http.StatusCreated, models.NewResponse(created.Response(), nil))
			return
		}

		existing.Username = req.Username
		existing.UserGroupID = req.UserGroupID
		if req.Password != "" {
			hash, err := service.HashPassword(req.Password)
			if err != nil {
				slog.Error("Failed to hash password", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
				return
			}
			existing.PasswordHash = hash
		}

		txn, err := database.Begin(ctx, pool)
		if err != nil {
			slog.Error("Failed to begin transaction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction"})
			return
		}
		defer txn.Rollback(ctx)

		updated, err := userStore.UpdateUser(ctx, txn, existing)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
				return
			}
			slog.Error("Failed to update user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(updated.Response(), nil))
	}
}

// DeleteUserHandler handles DELETE /api/users/:id
func DeleteUserHandler(pool *pgxpool.Pool, userStore store.UserStore) gin.HandlerFunc {
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

		deleted, err := userStore.DeleteUser(ctx, txn, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			slog.Error("Failed to delete user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}

		slog.Info("User deleted", "id", deleted.ID)
		c.JSON(http.StatusOK, models.NewResponse(deleted.Response(), nil))
	}
}

// DeleteUsersHandler handles DELETE /api/users with a JSON body of ids.
// Ids with no matching row are skipped; the response carries the rows that
// were actually deleted.
func DeleteUsersHandler(pool *pgxpool.Pool, userStore store.UserStore) gin.HandlerFunc {
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

		deleted, err := userStore.DeleteUsers(ctx, txn, req.IDs)
		if err != nil {
			slog.Error("Failed to delete users", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete users"})
			return
		}

		data := make([]models.UserResponse, 0, len(deleted))
		for _, u := range deleted {
			data = append(data, u.Response())
		}

		slog.Info("Users deleted", "requested", len(req.IDs), "deleted", len(deleted))
		c.JSON(http.StatusOK, models.NewResponse(data, nil))
	}
}
