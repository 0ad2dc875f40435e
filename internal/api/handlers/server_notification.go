package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pinpoint.dev/pinpoint/internal/api/middleware"
)

// ListNotifications handles GET /notifications.
func (s *Server) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	unreadOnly := c.Query("unread_only") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := s.inbox.List(ctx, middleware.GetUserID(ctx), unreadOnly, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetUnreadCount handles GET /notifications/unread-count.
func (s *Server) GetUnreadCount(c *gin.Context) {
	count, err := s.inbox.UnreadCount(c.Request.Context(), middleware.GetUserID(c.Request.Context()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead handles POST /notifications/:notificationId/read.
func (s *Server) MarkNotificationRead(c *gin.Context) {
	ctx := c.Request.Context()
	err := s.inbox.MarkRead(ctx, middleware.GetUserID(ctx), c.Param("notificationId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /notifications/read-all.
func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.inbox.MarkAllRead(ctx, middleware.GetUserID(ctx)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
