package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/database"
	"roster/internal/models"
	"roster/internal/store"
)

// GetOverviewStatsHandler handles GET /api/stats. An optional user_group_id
// query narrows the user-side counts to one group.
func GetOverviewStatsHandler(pool *pgxpool.Pool, statsStore store.StatsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, err := ParseUUIDQuery(c, "user_group_id")
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

		stats, err := statsStore.GetOverviewStats(ctx, txn, groupID)
		if err != nil {
			slog.Error("Failed to get overview stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get overview stats"})
			return
		}

		c.JSON(http.StatusOK, models.NewResponse(stats, nil))
	}
}
