package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"roster/internal/api"
	"roster/internal/config"
	"roster/internal/database"
	"roster/internal/service"
	"roster/internal/store"
	"roster/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Migrate(cfg.DatabaseURL, "migrations"); err != nil {
		slog.Info("Migration error (may be safe if no changes)", "error", err)
	}

	ctx := context.Background()
	pool, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sessionStore, err := redis.NewStore(10, "tcp", cfg.RedisAddr, "", "", []byte(cfg.SessionSecret))
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}

	userStore := store.NewPostgresUserStore()
	userGroupStore := store.NewPostgresUserGroupStore()
	permissionStore := store.NewPostgresPermissionStore()
	groupPermissionStore := store.NewPostgresGroupPermissionStore()
	userPermissionStore := store.NewPostgresUserPermissionStore()
	contentStore := store.NewPostgresContentStore()
	statsStore := store.NewPostgresStatsStore()

	authService := service.NewAuthService(userStore)

	server := api.NewServer(cfg, pool, sessionStore, userStore, userGroupStore, permissionStore, groupPermissionStore, userPermissionStore, contentStore, statsStore, authService)

	slog.Info("Roster ("+version.Version+") is now on duty", "port", cfg.Port)
	if err := server.Router.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to run server", "error", err)
		os.Exit(1)
	}
}
