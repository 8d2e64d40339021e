package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type CurrencyHandler struct {
	currencyService service.CurrencyService
}

func NewCurrencyHandler(currencyService service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService}
}

func (h *CurrencyHandler) RegisterRoutes(router *gin.RouterGroup) {
	currency := router.Group("/currency", middleware.RequireAuth())
	{
		currency.GET("/rates", h.ListRates)
		currency.PUT("/rates", middleware.RequirePermission(permission.Settings), h.UpsertRate)
		currency.GET("/convert", h.Convert)
	}
}

// ListRates godoc
// @Summary      List exchange rates
// @Tags         currency
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RateResponse}
// @Router       /api/currency/rates [get]
func (h *CurrencyHandler) ListRates(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	rates, err := h.currencyService.ListRates(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rates))
}

// UpsertRate godoc
// @Summary      Set an exchange rate
// @Description  Creates or replaces the rate for a currency pair on its effective date
// @Tags         currency
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpsertRateRequest  true  "Rate"
// @Success      200      {object}  response.Response{data=service.RateResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/currency/rates [put]
func (h *CurrencyHandler) UpsertRate(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	rate, err := h.currencyService.UpsertRate(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// Convert godoc
// @Summary      Convert an amount
// @Tags         currency
// @Produce      json
// @Security     BearerAuth
// @Param        amount  query  string  true   "Amount"
// @Param        from    query  string  true   "Source currency"
// @Param        to      query  string  true   "Target currency"
// @Param        date    query  string  false  "Rate date (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=service.ConvertResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/currency/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := h.currencyService.Convert(c.Request.Context(), sess, c.Query("amount"), c.Query("from"), c.Query("to"), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
