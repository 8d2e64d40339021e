package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/middleware"
	"stayhub/internal/model"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type AvailabilityHandler struct {
	availabilityService service.AvailabilityService
}

func NewAvailabilityHandler(availabilityService service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

func (h *AvailabilityHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/availability", middleware.RequireAuth(), middleware.RequirePermission(permission.Bookings))
	{
		group.GET("", h.GetAvailableRooms)
		group.GET("/rooms/:id", h.CheckRoom)
		group.GET("/rooms/:id/alternatives", h.SuggestAlternatives)
	}
}

// CheckRoom godoc
// @Summary      Check room availability
// @Description  Reports whether a room is free for [check_in, check_out). A failed lookup answers available with degraded=true.
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Param        id                      path   string  true   "Room ID"
// @Param        check_in                query  string  true   "Check-in date (YYYY-MM-DD)"
// @Param        check_out               query  string  true   "Check-out date (YYYY-MM-DD)"
// @Param        exclude_reservation_id  query  string  false  "Reservation being edited"
// @Success      200  {object}  response.Response{data=service.AvailabilityResult}
// @Failure      400  {object}  response.Response
// @Router       /api/availability/rooms/{id} [get]
func (h *AvailabilityHandler) CheckRoom(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}
	checkIn, checkOut, ok := stayDates(c)
	if !ok {
		return
	}

	var excludeID *uuid.UUID
	if raw := c.Query("exclude_reservation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid exclude_reservation_id")
			return
		}
		excludeID = &id
	}

	result, err := h.availabilityService.CheckAvailability(c.Request.Context(), sess, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetAvailableRooms godoc
// @Summary      Availability of every active room
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Param        check_in     query  string  true   "Check-in date (YYYY-MM-DD)"
// @Param        check_out    query  string  true   "Check-out date (YYYY-MM-DD)"
// @Param        location_id  query  string  false  "Location filter"
// @Success      200  {object}  response.Response{data=[]service.RoomAvailability}
// @Failure      400  {object}  response.Response
// @Router       /api/availability [get]
func (h *AvailabilityHandler) GetAvailableRooms(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	checkIn, checkOut, ok := stayDates(c)
	if !ok {
		return
	}

	rooms, err := h.availabilityService.GetAvailableRooms(c.Request.Context(), sess, checkIn, checkOut, sess.LocationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rooms))
}

// SuggestAlternatives godoc
// @Summary      Alternative rooms
// @Description  Free rooms in the same location and in other locations for the requested stay
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Param        id         path   string  true  "Room ID"
// @Param        check_in   query  string  true  "Check-in date (YYYY-MM-DD)"
// @Param        check_out  query  string  true  "Check-out date (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=service.AlternativesResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/availability/rooms/{id}/alternatives [get]
func (h *AvailabilityHandler) SuggestAlternatives(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}
	checkIn, checkOut, ok := stayDates(c)
	if !ok {
		return
	}

	alts, err := h.availabilityService.SuggestAlternatives(c.Request.Context(), sess, roomID, checkIn, checkOut)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, alts))
}

func stayDates(c *gin.Context) (time.Time, time.Time, bool) {
	checkIn, err := model.ParseDate(c.Query("check_in"))
	if err != nil {
		badRequest(c, "invalid check_in, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	checkOut, err := model.ParseDate(c.Query("check_out"))
	if err != nil {
		badRequest(c, "invalid check_out, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return checkIn, checkOut, true
}
