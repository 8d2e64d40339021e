package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type LocationHandler struct {
	locationService service.LocationService
}

func NewLocationHandler(locationService service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// RegisterRoutes exposes reads to every tenant member for the location picker;
// writes need master_files.
func (h *LocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/locations", middleware.RequireAuth())
	{
		locations.GET("", h.ListLocations)
		locations.GET("/:id", h.GetLocation)
		locations.POST("", middleware.RequirePermission(permission.MasterFiles), h.CreateLocation)
		locations.PUT("/:id", middleware.RequirePermission(permission.MasterFiles), h.UpdateLocation)
		locations.DELETE("/:id", middleware.RequirePermission(permission.MasterFiles), h.DeleteLocation)
	}
}

// ListLocations godoc
// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Security     BearerAuth
// @Param        active  query  bool  false  "Only active locations"
// @Success      200  {object}  response.Response{data=[]service.LocationResponse}
// @Router       /api/locations [get]
func (h *LocationHandler) ListLocations(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	list, err := h.locationService.ListLocations(c.Request.Context(), sess, c.Query("active") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// GetLocation godoc
// @Summary      Get a location
// @Tags         locations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Location ID"
// @Success      200  {object}  response.Response{data=service.LocationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetLocation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	loc, err := h.locationService.GetLocation(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loc))
}

// CreateLocation godoc
// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.LocationRequest  true  "Location"
// @Success      201      {object}  response.Response{data=service.LocationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/locations [post]
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	loc, err := h.locationService.CreateLocation(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, loc))
}

// UpdateLocation godoc
// @Summary      Update a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Location ID"
// @Param        payload  body      service.LocationRequest  true  "Location"
// @Success      200      {object}  response.Response{data=service.LocationResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/locations/{id} [put]
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	loc, err := h.locationService.UpdateLocation(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loc))
}

// DeleteLocation godoc
// @Summary      Delete a location
// @Description  Deletes the location, or deactivates it while it still has active reservations
// @Tags         locations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Location ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id} [delete]
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	deactivated, err := h.locationService.DeleteLocation(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": deactivated}))
}
