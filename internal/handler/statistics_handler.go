package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	revenueService    service.RevenueService
}

func NewStatisticsHandler(statisticsService service.StatisticsService, revenueService service.RevenueService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, revenueService: revenueService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", middleware.RequireAuth(), middleware.RequirePermission(permission.Dashboard), h.GetDashboard)

	statsGroup := router.Group("/statistics", middleware.RequireAuth())
	{
		statsGroup.GET("/revenue", middleware.RequirePermission(permission.Reports), h.GetRevenue)
	}
}

// @Summary      Get Dashboard
// @Description  Income, expense and profit totals, reservation counts, occupancy and today's arrivals and departures
// @Tags         Statistics
// @Produce      json
// @Param        from         query string false "From date (YYYY-MM-DD), defaults to the first of this month"
// @Param        to           query string false "To date (YYYY-MM-DD, exclusive)"
// @Param        location_id  query string false "Location"
// @Success      200 {object} response.Response{data=service.DashboardResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      500 {object} response.Response "Internal server error"
// @Security     BearerAuth
// @Router       /api/dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var q service.DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	stats, err := h.statisticsService.GetDashboard(c.Request.Context(), sess, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// @Summary      Revenue series
// @Description  Income, expense and profit grouped by day, week or month
// @Tags         Statistics
// @Produce      json
// @Param        group_by     query string false "day, week or month"
// @Param        start_date   query string false "Start date (YYYY-MM-DD)"
// @Param        end_date     query string false "End date (YYYY-MM-DD, exclusive)"
// @Param        location_id  query string false "Location"
// @Success      200 {object} response.Response{data=[]service.RevenueDataPoint}
// @Failure      400 {object} response.Response
// @Security     BearerAuth
// @Router       /api/statistics/revenue [get]
func (h *StatisticsHandler) GetRevenue(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var filter service.RevenueFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	points, err := h.revenueService.GetRevenueStatistics(c.Request.Context(), sess, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, points))
}
