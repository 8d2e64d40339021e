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

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/expenses", middleware.RequireAuth(), middleware.RequirePermission(permission.Expenses))
	{
		expenses.GET("", h.GetExpenses)
		expenses.POST("", h.CreateExpense)
		expenses.DELETE("/:id", h.DeleteExpense)
	}
}

// GetExpenses godoc
// @Summary      List expenses
// @Tags         expenses
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
// @Router       /api/expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	q, ok := bindLedgerQuery(c)
	if !ok {
		return
	}

	items, total, err := h.expenseService.GetExpenses(c.Request.Context(), sess, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.New(q.Page, q.Limit).Wrap(items, total)))
}

// CreateExpense godoc
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// DeleteExpense godoc
// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.expenseService.DeleteExpense(c.Request.Context(), sess, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Expense deleted successfully"}))
}

func bindLedgerQuery(c *gin.Context) (service.LedgerQuery, bool) {
	var q service.LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return q, false
	}
	p := pagination.New(q.Page, q.Limit)
	q.Page, q.Limit = p.Page, p.Limit
	return q, true
}
