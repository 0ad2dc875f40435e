package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pinpoint.dev/pinpoint/internal/api/middleware"
	"pinpoint.dev/pinpoint/internal/domain"
)

type createOrgRequest struct {
	Name      string `json:"name" binding:"required"`
	Subdomain string `json:"subdomain" binding:"required,alphanum,lowercase"`
}

// CreateOrganization handles POST /orgs. The creator becomes the first
// admin.
func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	org, err := s.queries.CreateOrganization(ctx, domain.Organization{
		Name:      req.Name,
		Subdomain: strings.ToLower(req.Subdomain),
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"code": "ORGANIZATION_EXISTS", "message": "subdomain already taken"})
		return
	}

	membership := domain.Membership{
		OrgID:  org.ID,
		UserID: middleware.GetUserID(ctx),
		Role:   domain.RoleAdmin,
	}
	if err := s.queries.UpsertMembership(ctx, membership); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// GetOrganization handles GET /orgs/:orgId.
func (s *Server) GetOrganization(c *gin.Context) {
	org, err := s.queries.GetOrganization(c.Request.Context(), middleware.GetOrgID(c.Request.Context()))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "ORGANIZATION_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, org)
}

type addMemberRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Role  domain.Role `json:"role" binding:"required,oneof=admin technician member"`
}

// AddMember handles POST /orgs/:orgId/members. Admin only; re-adding an
// existing member updates their role.
func (s *Server) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := s.queries.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "USER_NOT_FOUND", "message": "no account with that email"})
		return
	}

	membership := domain.Membership{
		OrgID:  middleware.GetOrgID(ctx),
		UserID: user.ID,
		Role:   req.Role,
	}
	if err := s.queries.UpsertMembership(ctx, membership); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, membership)
}
