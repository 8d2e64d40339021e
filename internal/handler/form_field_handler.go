package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type FormFieldHandler struct {
	formFieldService service.FormFieldService
}

func NewFormFieldHandler(formFieldService service.FormFieldService) *FormFieldHandler {
	return &FormFieldHandler{formFieldService: formFieldService}
}

func (h *FormFieldHandler) RegisterRoutes(router *gin.RouterGroup) {
	forms := router.Group("/form-fields", middleware.RequireAuth())
	{
		forms.GET("/:form", h.GetFormFields)
		forms.PUT("/:form", middleware.RequirePermission(permission.Settings), h.UpdateFormFields)
	}
}

// GetFormFields godoc
// @Summary      Form field preferences
// @Description  Visibility and required flags of each configurable field of a form
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Param        form  path  string  true  "reservation, income, expense, room or guest"
// @Success      200  {object}  response.Response{data=[]service.FormFieldSetting}
// @Failure      400  {object}  response.Response
// @Router       /api/form-fields/{form} [get]
func (h *FormFieldHandler) GetFormFields(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	fields, err := h.formFieldService.GetFormFields(c.Request.Context(), sess, c.Param("form"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, fields))
}

// UpdateFormFields godoc
// @Summary      Update form field preferences
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        form     path  string                           true  "Form name"
// @Param        payload  body  service.UpdateFormFieldsRequest  true  "Field settings"
// @Success      200  {object}  response.Response{data=[]service.FormFieldSetting}
// @Failure      400  {object}  response.Response
// @Router       /api/form-fields/{form} [put]
func (h *FormFieldHandler) UpdateFormFields(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.UpdateFormFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	fields, err := h.formFieldService.UpdateFormFields(c.Request.Context(), sess, c.Param("form"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, fields))
}
