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

type IncomeHandler struct {
	incomeService service.IncomeService
}

func NewIncomeHandler(incomeService service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

func (h *IncomeHandler) RegisterRoutes(router *gin.RouterGroup) {
	income := router.Group("/income", middleware.RequireAuth(), middleware.RequirePermission(permission.Income))
	{
		income.GET("", h.ListIncome)
		income.POST("", h.CreateIncome)
		income.DELETE("/:id", h.DeleteIncome)
	}
}

// ListIncome godoc
// @Summary      List income
// @Tags         income
// @Produce      json
// @Security     BearerAuth
// @Param        location_id  query  string  false  "Location"
// @Param        account_id   query  string  false  "Account"
// @Param        category     query  string  false  "Category"
// @Param        from         query  string  false  "From date (YYYY-MM-DD)"
// @Param        to           query  string  false  "To date (YYYY-MM-DD)"
// @Param        page         query  int     false  "Page"
// @Param        limit        query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Router       /api/income [get]
func (h *IncomeHandler) ListIncome(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	q, ok := bindLedgerQuery(c)
	if !ok {
		return
	}

	items, total, err := h.incomeService.ListIncome(c.Request.Context(), sess, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.New(q.Page, q.Limit).Wrap(items, total)))
}

// CreateIncome godoc
// @Summary      Record income
// @Description  Income linked to a reservation raises its paid amount in the same transaction
// @Tags         income
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateIncomeRequest  true  "Income"
// @Success      201      {object}  response.Response{data=service.IncomeResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/income [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	inc, err := h.incomeService.CreateIncome(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, inc))
}

// DeleteIncome godoc
// @Summary      Delete income
// @Tags         income
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Income ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/income/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.incomeService.DeleteIncome(c.Request.Context(), sess, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Income deleted successfully"}))
}
