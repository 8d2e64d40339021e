package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/pagination"
	"stayhub/pkg/response"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

func (h *ReservationHandler) RegisterRoutes(router *gin.RouterGroup) {
	reservations := router.Group("/reservations", middleware.RequireAuth(), middleware.RequirePermission(permission.Bookings))
	{
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.POST("", h.CreateReservation)
		reservations.PUT("/:id", h.UpdateReservation)
		reservations.PATCH("/:id/status", h.UpdateStatus)
		reservations.POST("/:id/cancel", h.CancelReservation)
	}

	router.GET("/calendar", middleware.RequireAuth(), middleware.RequirePermission(permission.Calendar), h.GetCalendar)
}

// CreateReservation godoc
// @Summary      Create a reservation
// @Description  Books a room. The room is locked and re-checked for overlaps inside the transaction; a clash answers 409 with the conflicting reservations.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateReservationRequest  true  "Reservation"
// @Success      201      {object}  response.Response{data=service.ReservationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.reservationService.CreateReservation(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// UpdateReservation godoc
// @Summary      Update a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Reservation ID"
// @Param        payload  body      service.UpdateReservationRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.ReservationResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/reservations/{id} [put]
func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.reservationService.UpdateReservation(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// UpdateStatus godoc
// @Summary      Change reservation status
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Reservation ID"
// @Param        payload  body      service.UpdateStatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=service.ReservationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/reservations/{id}/status [patch]
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.reservationService.UpdateStatus(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// CancelReservation godoc
// @Summary      Cancel a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  response.Response{data=service.ReservationResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := h.reservationService.CancelReservation(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetReservation godoc
// @Summary      Get a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  response.Response{data=service.ReservationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := h.reservationService.GetReservation(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListReservations godoc
// @Summary      List reservations
// @Description  Filters by stay overlap with [from, to), location, room, status and guest search
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        location_id  query  string  false  "Location"
// @Param        room_id      query  string  false  "Room"
// @Param        status       query  string  false  "Status"
// @Param        from         query  string  false  "Range start (YYYY-MM-DD)"
// @Param        to           query  string  false  "Range end (YYYY-MM-DD)"
// @Param        search       query  string  false  "Guest name, email, phone or reservation number"
// @Param        page         query  int     false  "Page"
// @Param        limit        query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Router       /api/reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var q service.ListReservationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}
	p := pagination.New(q.Page, q.Limit)
	q.Page, q.Limit = p.Page, p.Limit

	items, total, err := h.reservationService.ListReservations(c.Request.Context(), sess, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(items, total)))
}

// GetCalendar godoc
// @Summary      Reservation calendar
// @Description  Reservations overlapping [from, to) grouped by room
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        from         query  string  true   "Range start (YYYY-MM-DD)"
// @Param        to           query  string  true   "Range end (YYYY-MM-DD)"
// @Param        location_id  query  string  false  "Location"
// @Success      200  {object}  response.Response{data=service.CalendarResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/calendar [get]
func (h *ReservationHandler) GetCalendar(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	cal, err := h.reservationService.GetCalendar(c.Request.Context(), sess, c.Query("from"), c.Query("to"), c.Query("location_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cal))
}
