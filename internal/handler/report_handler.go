package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports", middleware.RequireAuth(), middleware.RequirePermission(permission.Reports))
	{
		reports.GET("/reservations.xlsx", h.ExportReservations)
		reports.GET("/finance.xlsx", h.ExportFinance)
	}
}

// ExportReservations godoc
// @Summary      Export reservations
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        location_id  query  string  false  "Location"
// @Param        status       query  string  false  "Status"
// @Param        from         query  string  false  "Range start (YYYY-MM-DD)"
// @Param        to           query  string  false  "Range end (YYYY-MM-DD)"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Router       /api/reports/reservations.xlsx [get]
func (h *ReportHandler) ExportReservations(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var q service.ListReservationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	// Buffered so a failure halfway still answers with a JSON error.
	var buf bytes.Buffer
	if err := h.reportService.ExportReservations(c.Request.Context(), sess, q, &buf); err != nil {
		writeError(c, err)
		return
	}
	sendWorkbook(c, "reservations", buf.Bytes())
}

// ExportFinance godoc
// @Summary      Export finance report
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        group_by     query  string  false  "day, week or month"
// @Param        start_date   query  string  false  "Start date (YYYY-MM-DD)"
// @Param        end_date     query  string  false  "End date (YYYY-MM-DD, exclusive)"
// @Param        location_id  query  string  false  "Location"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Router       /api/reports/finance.xlsx [get]
func (h *ReportHandler) ExportFinance(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var filter service.RevenueFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportFinance(c.Request.Context(), sess, filter, &buf); err != nil {
		writeError(c, err)
		return
	}
	sendWorkbook(c, "finance", buf.Bytes())
}

func sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
