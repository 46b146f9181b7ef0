package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/api/middleware"
	"roster/internal/database"
	"roster/internal/models"
	"roster/internal/service"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler handles POST /api/auth/login. A successful check stores the
// user id and username in the session cookie.
func LoginHandler(pool *pgxpool.Pool, auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
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

		user, err := auth.Authenticate(ctx, txn, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidRequest) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			if errors.Is(err, service.ErrUnauthenticated) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
				return
			}
			slog.Error("Failed to authenticate", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}

		session := sessions.Default(c)
		session.Set(middleware.SessionUserIDKey, user.ID.String())
		session.Set(middleware.SessionUsernameKey, user.Username)
		if err := session.Save(); err != nil {
			slog.Error("Failed to save session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}

		slog.Info("User logged in", "id", user.ID, "username", user.Username)
		c.JSON(http.StatusOK, models.NewResponse(user.Response(), nil))
	}
}

// LogoutHandler handles POST /api/auth/logout
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Clear()
		session.Options(sessions.Options{Path: "/", MaxAge: -1})
		if err := session.Save(); err != nil {
			slog.Error("Failed to clear session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
