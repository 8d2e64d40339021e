package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type RoomHandler struct {
	roomService service.RoomService
}

func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// RegisterRoutes exposes reads to every tenant member since booking forms list
// rooms; writes need the rooms capability.
func (h *RoomHandler) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms", middleware.RequireAuth())
	{
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id", h.GetRoom)
		rooms.POST("", middleware.RequirePermission(permission.Rooms), h.CreateRoom)
		rooms.PUT("/:id", middleware.RequirePermission(permission.Rooms), h.UpdateRoom)
		rooms.DELETE("/:id", middleware.RequirePermission(permission.Rooms), h.DeleteRoom)
	}
}

// ListRooms godoc
// @Summary      List rooms
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        location_id  query  string  false  "Location"
// @Param        active       query  bool    false  "Only active rooms"
// @Success      200  {object}  response.Response{data=[]service.RoomResponse}
// @Router       /api/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	list, err := h.roomService.ListRooms(c.Request.Context(), sess, c.Query("location_id"), c.Query("active") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// GetRoom godoc
// @Summary      Get a room
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  response.Response{data=service.RoomResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	room, err := h.roomService.GetRoom(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, room))
}

// CreateRoom godoc
// @Summary      Create a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RoomRequest  true  "Room"
// @Success      201      {object}  response.Response{data=service.RoomResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	room, err := h.roomService.CreateRoom(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, room))
}

// UpdateRoom godoc
// @Summary      Update a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Room ID"
// @Param        payload  body      service.RoomRequest  true  "Room"
// @Success      200      {object}  response.Response{data=service.RoomResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/rooms/{id} [put]
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	room, err := h.roomService.UpdateRoom(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, room))
}

// DeleteRoom godoc
// @Summary      Delete a room
// @Description  Deletes the room, or deactivates it while it still has active reservations
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/rooms/{id} [delete]
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	deactivated, err := h.roomService.DeleteRoom(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": deactivated}))
}
