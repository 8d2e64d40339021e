package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounts := router.Group("/accounts", middleware.RequireAuth(), middleware.RequirePermission(permission.Accounts))
	{
		accounts.GET("", h.ListAccounts)
		accounts.GET("/:id", h.GetAccount)
		accounts.POST("", h.CreateAccount)
		accounts.PUT("/:id", h.UpdateAccount)
	}
}

// ListAccounts godoc
// @Summary      List accounts with balances
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        location_id  query  string  false  "Location"
// @Success      200  {object}  response.Response{data=[]service.AccountResponse}
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	list, err := h.accountService.ListAccounts(c.Request.Context(), sess, c.Query("location_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// GetAccount godoc
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response{data=service.AccountResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	acc, err := h.accountService.GetAccount(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, acc))
}

// CreateAccount godoc
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AccountRequest  true  "Account"
// @Success      201      {object}  response.Response{data=service.AccountResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	acc, err := h.accountService.CreateAccount(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, acc))
}

// UpdateAccount godoc
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Account ID"
// @Param        payload  body      service.AccountRequest  true  "Account"
// @Success      200      {object}  response.Response{data=service.AccountResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	acc, err := h.accountService.UpdateAccount(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, acc))
}
