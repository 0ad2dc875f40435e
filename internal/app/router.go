package app

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pinpoint.dev/pinpoint/internal/api/handlers"
	"pinpoint.dev/pinpoint/internal/api/middleware"
	"pinpoint.dev/pinpoint/internal/config"
	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/infrastructure"
)

// Public routes that do NOT require JWT authentication. The /public tree
// serves anonymous issue reporting (e.g. QR codes on machines).
var publicPrefixes = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/health/",
	"/api/v1/public/",
}

func newRouter(cfg *config.Config, server *handlers.Server, db *infrastructure.DatabaseClients, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	router.Use(jwtSkipPublic(jwtCfg.SigningKey))

	v1 := router.Group("/api/v1")

	v1.GET("/health/live", server.GetLiveness)
	v1.GET("/health/ready", server.GetReadiness)

	v1.POST("/auth/register", server.Register)
	v1.POST("/auth/login", server.Login)
	v1.GET("/auth/me", server.GetCurrentUser)

	v1.POST("/public/orgs/:orgId/issues", server.ReportIssue)

	v1.GET("/notifications", server.ListNotifications)
	v1.GET("/notifications/unread-count", server.GetUnreadCount)
	v1.POST("/notifications/:notificationId/read", server.MarkNotificationRead)
	v1.POST("/notifications/read-all", server.MarkAllNotificationsRead)
	v1.GET("/preferences", server.GetPreferences)
	v1.PUT("/preferences", server.SavePreferences)

	v1.POST("/orgs", server.CreateOrganization)

	org := v1.Group("/orgs/:orgId", middleware.OrgMember(db.Queries))
	org.GET("", server.GetOrganization)
	org.POST("/members", middleware.RequireRole(domain.RoleAdmin), server.AddMember)

	org.GET("/locations", server.ListLocations)
	org.POST("/locations", middleware.RequireRole(domain.RoleAdmin), server.CreateLocation)

	org.GET("/machines", server.ListMachines)
	org.POST("/machines", middleware.RequireRole(domain.RoleAdmin), server.CreateMachine)
	org.GET("/machines/:machineId", server.GetMachine)
	org.PUT("/machines/:machineId/owner", middleware.RequireRole(domain.RoleAdmin), server.TransferOwnership)
	org.PUT("/machines/:machineId/watch", server.WatchMachine)
	org.DELETE("/machines/:machineId/watch", server.UnwatchMachine)

	org.GET("/issues", server.ListIssues)
	org.POST("/issues", server.CreateIssue)
	org.GET("/issues/:issueId", server.GetIssue)
	org.PUT("/issues/:issueId/status", middleware.RequireRole(domain.RoleTechnician), server.UpdateIssueStatus)
	org.PUT("/issues/:issueId/assignee", middleware.RequireRole(domain.RoleTechnician), server.AssignIssue)
	org.POST("/issues/:issueId/comments", server.AddComment)
	org.PUT("/issues/:issueId/watch", server.WatchIssue)
	org.DELETE("/issues/:issueId/watch", server.UnwatchIssue)

	return router
}

// jwtSkipPublic returns middleware that applies JWT auth only on non-public routes.
func jwtSkipPublic(signingKey []byte) gin.HandlerFunc {
	jwtMw := middleware.JWTAuth(signingKey)
	return func(c *gin.Context) {
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		jwtMw(c)
	}
}
