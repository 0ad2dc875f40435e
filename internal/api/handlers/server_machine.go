package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pinpoint.dev/pinpoint/internal/api/middleware"
	"pinpoint.dev/pinpoint/internal/domain"
)

type createLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// CreateLocation handles POST /orgs/:orgId/locations.
func (s *Server) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	loc, err := s.queries.CreateLocation(c.Request.Context(), domain.Location{
		OrgID:   middleware.GetOrgID(c.Request.Context()),
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

// ListLocations handles GET /orgs/:orgId/locations.
func (s *Server) ListLocations(c *gin.Context) {
	locations, err := s.queries.ListLocations(c.Request.Context(), middleware.GetOrgID(c.Request.Context()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if locations == nil {
		locations = []domain.Location{}
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

type createMachineRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	OwnerID    string `json:"owner_id"`
}

// CreateMachine handles POST /orgs/:orgId/machines. An empty owner means
// the machine is collectively owned.
func (s *Server) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	machine, err := s.machines.CreateMachine(c.Request.Context(), domain.Machine{
		OrgID:      middleware.GetOrgID(c.Request.Context()),
		LocationID: req.LocationID,
		Name:       req.Name,
		OwnerID:    req.OwnerID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// ListMachines handles GET /orgs/:orgId/machines.
func (s *Server) ListMachines(c *gin.Context) {
	machines, err := s.queries.ListMachines(c.Request.Context(), middleware.GetOrgID(c.Request.Context()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if machines == nil {
		machines = []domain.Machine{}
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

// GetMachine handles GET /orgs/:orgId/machines/:machineId.
func (s *Server) GetMachine(c *gin.Context) {
	machine, err := s.queries.GetMachineByID(c.Request.Context(), c.Param("machineId"))
	if err != nil || machine.OrgID != middleware.GetOrgID(c.Request.Context()) {
		c.JSON(http.StatusNotFound, gin.H{"code": "MACHINE_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, machine)
}

type transferOwnershipRequest struct {
	// OwnerID empty returns the machine to collective ownership.
	OwnerID string `json:"owner_id"`
}

// TransferOwnership handles PUT /orgs/:orgId/machines/:machineId/owner.
// Admin only; notifies watchers of each open issue on the machine.
func (s *Server) TransferOwnership(c *gin.Context) {
	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	err := s.machines.TransferOwnership(ctx,
		middleware.GetOrgID(ctx), c.Param("machineId"), req.OwnerID, middleware.GetUserID(ctx))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
