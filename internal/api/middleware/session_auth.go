package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys set by the login handler and read back by SessionAuth.
const (
	SessionUserIDKey   = "user_id"
	SessionUsernameKey = "username"
)

// SessionAuth rejects requests whose session carries no authenticated user.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(SessionUserIDKey) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthenticated",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
