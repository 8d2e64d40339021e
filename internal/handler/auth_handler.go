package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/permission"
	"stayhub/internal/service"
	"stayhub/pkg/response"
)

type AuthHandler struct {
	userService       service.UserService
	permissionService service.PermissionService
	loginLimiter      gin.HandlerFunc
}

// NewAuthHandler wires login, token refresh and the caller's own profile.
// loginLimiter guards POST /auth/login; pass nil for none.
func NewAuthHandler(userService service.UserService, permissionService service.PermissionService, loginLimiter gin.HandlerFunc) *AuthHandler {
	if loginLimiter == nil {
		loginLimiter = func(c *gin.Context) { c.Next() }
	}
	return &AuthHandler{userService: userService, permissionService: permissionService, loginLimiter: loginLimiter}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.loginLimiter, h.Login)
		authGroup.POST("/refresh", h.RefreshToken)
		authGroup.POST("/logout", h.Logout)
	}

	me := router.Group("/me", middleware.RequireAuth())
	{
		me.GET("", h.GetMe)
		me.GET("/navigation", h.GetNavigation)
	}
}

type MeResponse struct {
	User         service.UserResponse    `json:"user"`
	Capabilities []permission.Capability `json:"capabilities"`
	Landing      string                  `json:"landing"`
}

// Signup godoc
// @Summary      Register a tenant
// @Description  Creates a tenant together with its first administrator and logs them in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SignupRequest  true  "Signup Payload"
// @Success      201      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	tokenRes, err := h.userService.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tokenRes))
}

// Login godoc
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload")
		return
	}

	tokenRes, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Rotates the refresh token (cookie first, then body) and issues a new access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  false  "Refresh Token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	req := service.RefreshTokenRequest{RefreshToken: middleware.RefreshCookie(c)}
	if req.RefreshToken == "" {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Refresh token is missing"))
			return
		}
	}

	tokenRes, err := h.userService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		middleware.ClearTokenCookies(c)
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the refresh token and clears the auth cookies
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh := middleware.RefreshCookie(c)
	if refresh == "" {
		var req service.RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		refresh = req.RefreshToken
	}
	if refresh != "" {
		if err := h.userService.Logout(c.Request.Context(), refresh); err != nil {
			writeError(c, err)
			return
		}
	}

	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// GetMe godoc
// @Summary      Get current user
// @Description  Returns the caller's profile and the capabilities granted at the selected location
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        X-Location-ID  header  string  false  "Selected location"
// @Success      200  {object}  response.Response{data=MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), sess, sess.UserID.String())
	if err != nil {
		writeError(c, err)
		return
	}

	set, err := h.permissionService.Effective(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, MeResponse{
		User:         *user,
		Capabilities: set.Granted(),
		Landing:      permission.LandingRoute(set, sess.IsTenantAdmin()),
	}))
}

// GetNavigation godoc
// @Summary      Navigation menu
// @Description  Landing route and visible navigation items for the caller
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        X-Location-ID  header  string  false  "Selected location"
// @Success      200  {object}  response.Response{data=service.NavigationResponse}
// @Router       /api/me/navigation [get]
func (h *AuthHandler) GetNavigation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	nav, err := h.permissionService.Navigation(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nav))
}
