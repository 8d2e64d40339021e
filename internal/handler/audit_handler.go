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

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs")
	group.Use(middleware.RequireAuth(), middleware.RequirePermission(permission.Settings))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists the tenant's audit trail, newest first
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action     query     string  false  "Action code, e.g. CANCEL_RESERVATION"
// @Param        entity_id  query     string  false  "Affected entity id"
// @Param        user_id    query     string  false  "Acting user id"
// @Param        from       query     string  false  "First day (YYYY-MM-DD)"
// @Param        to         query     string  false  "Last day, inclusive (YYYY-MM-DD)"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=response.Paged}
// @Failure      400        {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var q service.AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}
	p := pagination.New(q.Page, q.Limit)
	q.Page, q.Limit = p.Page, p.Limit

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), sess, q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(logs, total)))
}
