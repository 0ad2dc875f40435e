package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pinpoint.dev/pinpoint/internal/api/middleware"
	"pinpoint.dev/pinpoint/internal/domain"
)

// WatchIssue handles PUT /orgs/:orgId/issues/:issueId/watch.
func (s *Server) WatchIssue(c *gin.Context) {
	ctx := c.Request.Context()
	err := s.inbox.WatchIssue(ctx, middleware.GetOrgID(ctx), c.Param("issueId"), middleware.GetUserID(ctx))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnwatchIssue handles DELETE /orgs/:orgId/issues/:issueId/watch.
func (s *Server) UnwatchIssue(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.inbox.UnwatchIssue(ctx, c.Param("issueId"), middleware.GetUserID(ctx)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

type watchMachineRequest struct {
	Mode domain.WatchMode `json:"mode" binding:"required,oneof=watch subscribe"`
}

// WatchMachine handles PUT /orgs/:orgId/machines/:machineId/watch.
func (s *Server) WatchMachine(c *gin.Context) {
	var req watchMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	err := s.inbox.WatchMachine(ctx,
		middleware.GetOrgID(ctx), c.Param("machineId"), middleware.GetUserID(ctx), req.Mode)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnwatchMachine handles DELETE /orgs/:orgId/machines/:machineId/watch.
func (s *Server) UnwatchMachine(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.inbox.UnwatchMachine(ctx, c.Param("machineId"), middleware.GetUserID(ctx)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPreferences handles GET /preferences. A user who never saved returns
// the documented defaults.
func (s *Server) GetPreferences(c *gin.Context) {
	prefs, err := s.inbox.GetPreferences(c.Request.Context(), middleware.GetUserID(c.Request.Context()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// SavePreferences handles PUT /preferences. The full row is replaced;
// partial updates are a client concern.
func (s *Server) SavePreferences(c *gin.Context) {
	var prefs domain.Preference
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}
	prefs.UserID = middleware.GetUserID(c.Request.Context())

	if err := s.inbox.SavePreferences(c.Request.Context(), prefs); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
