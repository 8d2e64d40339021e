package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

// FunctionsHandler serves the integration endpoints under /functions. Every
// route needs a bearer token: the shared functions token or a user access token.
type FunctionsHandler struct {
	channelService      service.ChannelService
	otpService          service.OTPService
	notificationService service.NotificationService
	sharedToken         string
	otpLimiter          gin.HandlerFunc
}

func NewFunctionsHandler(
	channelService service.ChannelService,
	otpService service.OTPService,
	notificationService service.NotificationService,
	sharedToken string,
	otpLimiter gin.HandlerFunc,
) *FunctionsHandler {
	if otpLimiter == nil {
		otpLimiter = func(c *gin.Context) { c.Next() }
	}
	return &FunctionsHandler{
		channelService:      channelService,
		otpService:          otpService,
		notificationService: notificationService,
		sharedToken:         sharedToken,
		otpLimiter:          otpLimiter,
	}
}

func (h *FunctionsHandler) RegisterRoutes(router *gin.RouterGroup) {
	fn := router.Group("/functions", middleware.RequireFunctionAuth(h.sharedToken))
	{
		fn.POST("/beds24/token", h.Beds24Token)
		fn.POST("/otp/send", h.otpLimiter, h.SendOTP)
		fn.POST("/otp/verify", h.otpLimiter, h.VerifyOTP)
		fn.POST("/email/credentials", h.SendCredentials)
		fn.POST("/email/invitation", h.SendInvitation)
	}
}

// Beds24Token godoc
// @Summary      Beds24 token exchange
// @Description  Exchanges an invite code for a refresh token, or a refresh token for a cached access token
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.Beds24TokenRequest  true  "Code or refresh token"
// @Success      200      {object}  response.Response{data=service.Beds24TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /functions/beds24/token [post]
func (h *FunctionsHandler) Beds24Token(c *gin.Context) {
	var req service.Beds24TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.channelService.ExchangeBeds24Token(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SendOTP godoc
// @Summary      Send phone OTP
// @Description  Texts a 6-digit code to the phone. Requires a user token.
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SendOTPRequest  true  "Phone"
// @Success      200      {object}  response.Response{data=service.SendOTPResponse}
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /functions/otp/send [post]
func (h *FunctionsHandler) SendOTP(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.otpService.Send(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// VerifyOTP godoc
// @Summary      Verify phone OTP
// @Description  Checks the code and marks the caller's phone as verified
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.VerifyOTPRequest  true  "Phone and code"
// @Success      200      {object}  response.Response{data=service.VerifyOTPResponse}
// @Failure      400      {object}  response.Response
// @Router       /functions/otp/verify [post]
func (h *FunctionsHandler) VerifyOTP(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req service.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.otpService.Verify(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SendCredentials godoc
// @Summary      Email login credentials
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CredentialsEmailRequest  true  "Recipient and credentials"
// @Success      200      {object}  response.Response{data=service.EmailSentResponse}
// @Failure      502      {object}  response.Response
// @Router       /functions/email/credentials [post]
func (h *FunctionsHandler) SendCredentials(c *gin.Context) {
	var req service.CredentialsEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.notificationService.SendCredentialsEmail(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SendInvitation godoc
// @Summary      Email a tenant invitation
// @Tags         functions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.InvitationEmailRequest  true  "Invitation"
// @Success      200      {object}  response.Response{data=service.EmailSentResponse}
// @Failure      502      {object}  response.Response
// @Router       /functions/email/invitation [post]
func (h *FunctionsHandler) SendInvitation(c *gin.Context) {
	var req service.InvitationEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.notificationService.SendInvitation(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
