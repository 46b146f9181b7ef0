package api

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"roster/internal/api/handlers"
	"roster/internal/api/middleware"
	"roster/internal/config"
	"roster/internal/models"
	"roster/internal/service"
	"roster/internal/store"
)

type Server struct {
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config

	UserStore            store.UserStore
	UserGroupStore       store.UserGroupStore
	PermissionStore      store.PermissionStore
	GroupPermissionStore store.GroupPermissionStore
	UserPermissionStore  store.UserPermissionStore
	ContentStore         store.ContentStore
	StatsStore           store.StatsStore
	Auth                 *service.AuthService
}

func NewServer(cfg config.Config, db *pgxpool.Pool, sessionStore sessions.Store, us store.UserStore, ugs store.UserGroupStore, ps store.PermissionStore, gps store.GroupPermissionStore, ups store.UserPermissionStore, cs store.ContentStore, ss store.StatsStore, auth *service.AuthService) *Server {
	r := gin.Default()

	r.Use(sessions.Sessions("roster_session", sessionStore))
	if len(cfg.TrustedProxies) > 0 {
		r.SetTrustedProxies(cfg.TrustedProxies)
	}

	server := &Server{
		Router:               r,
		DB:                   db,
		Config:               cfg,
		UserStore:            us,
		UserGroupStore:       ugs,
		PermissionStore:      ps,
		GroupPermissionStore: gps,
		UserPermissionStore:  ups,
		ContentStore:         cs,
		StatsStore:           ss,
		Auth:                 auth,
	}

	server.setupRoutes()
	return server
}

// links builds the pagination link template for one collection path.
func (s *Server) links(path string) models.LinkBuilder {
	return models.LinkBuilder{BaseURL: s.Config.BaseURL, Path: path}
}

func (s *Server) setupRoutes() {
	// Initialize Rate Limiters
	apiRateLimiter := middleware.RateLimitMiddleware(s.Config.RateLimitAPI)
	authRateLimiter := middleware.RateLimitMiddleware(s.Config.RateLimitAuth)

	// Public routes
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Session Endpoints
	authRoutes := s.Router.Group("/api/auth")
	authRoutes.Use(authRateLimiter)
	{
		authRoutes.POST("/login", handlers.LoginHandler(s.DB, s.Auth))
		authRoutes.POST("/logout", handlers.LogoutHandler())
	}

	// Protected routes
	authorized := s.Router.Group("/api")
	authorized.Use(apiRateLimiter)
	authorized.Use(middleware.SessionAuth())
	{
		// User Management
		users := authorized.Group("/" + s.Config.Routes.Users)
		users.GET("", handlers.ListUsersHandler(s.DB, s.UserStore, s.links(s.Config.Routes.Users)))
		users.GET("/:id", handlers.GetUserHandler(s.DB, s.UserStore))
		users.POST("", handlers.CreateUserHandler(s.DB, s.UserStore))
		users.PUT("", handlers.PutUserHandler(s.DB, s.UserStore))
		users.DELETE("/:id", handlers.DeleteUserHandler(s.DB, s.UserStore))
		users.DELETE("", handlers.DeleteUsersHandler(s.DB, s.UserStore))

		// User Group Management
		groups := authorized.Group("/" + s.Config.Routes.UserGroups)
		groups.GET("", handlers.ListUserGroupsHandler(s.DB, s.UserGroupStore, s.links(s.Config.Routes.UserGroups)))
		groups.GET("/:id", handlers.GetUserGroupHandler(s.DB, s.UserGroupStore))
		groups.POST("", handlers.CreateUserGroupHandler(s.DB, s.UserGroupStore))
		groups.PUT("", handlers.PutUserGroupHandler(s.DB, s.UserGroupStore))
		groups.DELETE("/:id", handlers.DeleteUserGroupHandler(s.DB, s.UserGroupStore))
		groups.DELETE("", handlers.DeleteUserGroupsHandler(s.DB, s.UserGroupStore))

		// Permission Management
		permissions := authorized.Group("/" + s.Config.Routes.Permissions)
		permissions.GET("", handlers.ListPermissionsHandler(s.DB, s.PermissionStore, s.links(s.Config.Routes.Permissions)))
		permissions.GET("/:id", handlers.GetPermissionHandler(s.DB, s.PermissionStore))
		permissions.POST("", handlers.CreatePermissionHandler(s.DB, s.PermissionStore))
		permissions.PUT("", handlers.PutPermissionHandler(s.DB, s.PermissionStore))
		permissions.DELETE("/:id", handlers.DeletePermissionHandler(s.DB, s.PermissionStore))
		permissions.DELETE("", handlers.DeletePermissionsHandler(s.DB, s.PermissionStore))

		// Group Permission Grants
		groupPerms := authorized.Group("/" + s.Config.Routes.GroupPermissions)
		groupPerms.GET("", handlers.ListGroupPermissionsHandler(s.DB, s.GroupPermissionStore, s.links(s.Config.Routes.GroupPermissions)))
		groupPerms.GET("/:groupId/:permissionId", handlers.GetGroupPermissionHandler(s.DB, s.GroupPermissionStore))
		groupPerms.POST("", handlers.CreateGroupPermissionHandler(s.DB, s.GroupPermissionStore))
		groupPerms.DELETE("/:groupId/:permissionId", handlers.DeleteGroupPermissionHandler(s.DB, s.GroupPermissionStore))
		groupPerms.DELETE("", handlers.DeleteGroupPermissionsHandler(s.DB, s.GroupPermissionStore))

		// User Permission Grants
		userPerms := authorized.Group("/" + s.Config.Routes.UserPermissions)
		userPerms.GET("", handlers.ListUserPermissionsHandler(s.DB, s.UserPermissionStore, s.links(s.Config.Routes.UserPermissions)))
		userPerms.GET("/:userId/:permissionId", handlers.GetUserPermissionHandler(s.DB, s.UserPermissionStore))
		userPerms.POST("", handlers.CreateUserPermissionHandler(s.DB, s.UserPermissionStore))
		userPerms.DELETE("/:userId/:permissionId", handlers.DeleteUserPermissionHandler(s.DB, s.UserPermissionStore))
		userPerms.DELETE("", handlers.DeleteUserPermissionsHandler(s.DB, s.UserPermissionStore))

		// Content Management
		contents := authorized.Group("/" + s.Config.Routes.Contents)
		contents.GET("", handlers.ListContentsHandler(s.DB, s.ContentStore, s.links(s.Config.Routes.Contents)))
		contents.GET("/:id", handlers.GetContentHandler(s.DB, s.ContentStore))
		contents.POST("", handlers.CreateContentHandler(s.DB, s.ContentStore))
		contents.PUT("/:id", handlers.UpdateContentHandler(s.DB, s.ContentStore))
		contents.DELETE("/:id", handlers.DeleteContentHandler(s.DB, s.ContentStore))
		contents.DELETE("", handlers.DeleteContentsHandler(s.DB, s.ContentStore))

		// Overview
		authorized.GET("/stats", handlers.GetOverviewStatsHandler(s.DB, s.StatsStore))
	}
}
