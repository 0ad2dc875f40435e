package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pinpoint.dev/pinpoint/internal/api/middleware"
	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/usecase"
)

type createIssueRequest struct {
	MachineID   string `json:"machine_id" binding:"required"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

// CreateIssue handles POST /orgs/:orgId/issues for authenticated members.
func (s *Server) CreateIssue(c *gin.Context) {
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	issue, err := s.issues.CreateIssue(ctx, usecase.CreateIssueInput{
		OrgID:       middleware.GetOrgID(ctx),
		MachineID:   req.MachineID,
		Title:       req.Title,
		Description: req.Description,
		ReporterID:  middleware.GetUserID(ctx),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

// ReportIssue handles POST /public/orgs/:orgId/issues: anonymous issue
// reporting with no authentication, e.g. from a QR code on the machine.
// The event carries no actor, so nobody is excluded from fan-out.
func (s *Server) ReportIssue(c *gin.Context) {
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	issue, err := s.issues.CreateIssue(c.Request.Context(), usecase.CreateIssueInput{
		OrgID:       c.Param("orgId"),
		MachineID:   req.MachineID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

// ListIssues handles GET /orgs/:orgId/issues with optional machine_id and
// status filters.
func (s *Server) ListIssues(c *gin.Context) {
	ctx := c.Request.Context()
	issues, err := s.queries.ListIssues(ctx,
		middleware.GetOrgID(ctx), c.Query("machine_id"), domain.IssueStatus(c.Query("status")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// GetIssue handles GET /orgs/:orgId/issues/:issueId.
func (s *Server) GetIssue(c *gin.Context) {
	ctx := c.Request.Context()
	issue, err := s.queries.GetIssueByID(ctx, c.Param("issueId"))
	if err != nil || issue.OrgID != middleware.GetOrgID(ctx) {
		c.JSON(http.StatusNotFound, gin.H{"code": "ISSUE_NOT_FOUND"})
		return
	}

	comments, err := s.queries.ListComments(ctx, issue.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue, "comments": comments})
}

type updateStatusRequest struct {
	Status domain.IssueStatus `json:"status" binding:"required,oneof=new in_progress resolved closed"`
}

// UpdateIssueStatus handles PUT /orgs/:orgId/issues/:issueId/status.
// Technician or admin only.
func (s *Server) UpdateIssueStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	issue, err := s.issues.UpdateStatus(ctx,
		middleware.GetOrgID(ctx), c.Param("issueId"), req.Status, middleware.GetUserID(ctx))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

type assignIssueRequest struct {
	AssigneeID string `json:"assignee_id" binding:"required"`
}

// AssignIssue handles PUT /orgs/:orgId/issues/:issueId/assignee.
// Technician or admin only.
func (s *Server) AssignIssue(c *gin.Context) {
	var req assignIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	issue, err := s.issues.Assign(ctx,
		middleware.GetOrgID(ctx), c.Param("issueId"), req.AssigneeID, middleware.GetUserID(ctx))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

type addCommentRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// AddComment handles POST /orgs/:orgId/issues/:issueId/comments.
func (s *Server) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	comment, err := s.issues.AddComment(ctx,
		middleware.GetOrgID(ctx), c.Param("issueId"), middleware.GetUserID(ctx), req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
