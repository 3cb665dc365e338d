package handler

import (
	"net/http"

	"donation-api/internal/middleware"
	"donation-api/internal/service"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	gate        *middleware.Gate
	allowDebug  bool
}

// NewAuthHandler wires the auth endpoints. allowDebug routes the debug admin bootstrap.
func NewAuthHandler(authService service.AuthService, gate *middleware.Gate, allowDebug bool) *AuthHandler {
	return &AuthHandler{authService: authService, gate: gate, allowDebug: allowDebug}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/admin/login", h.AdminLogin)
		auth.POST("/refresh", h.Refresh)

		auth.GET("/me", h.gate.RequireAny(), h.Me)
		auth.GET("/verify-token", h.gate.RequireAny(), h.VerifyToken)
		auth.POST("/verify-token", h.gate.RequireAny(), h.VerifyToken)

		if h.allowDebug {
			auth.POST("/debug/admin", h.CreateDebugAdmin)
		}
	}
}

// Register creates a donor account
// @Summary      Register user
// @Description  Creates a user with the base role and returns an access/refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration"
// @Success      201      {object}  response.Response{data=service.UserAuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success("User registered successfully", res))
}

// Login authenticates a user by email and password
// @Summary      Login user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.UserAuthResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Login successful", res))
}

// AdminLogin authenticates an admin by username or email
// @Summary      Login admin
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AdminLoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.AdminAuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req service.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.authService.AdminLogin(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Admin login successful", res))
}

// Refresh exchanges a refresh token for a new pair
// @Summary      Refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  response.Response{data=service.TokenPair}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Token refreshed successfully", pair))
}

// Me describes the authenticated principal
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	res := h.authService.Me(middleware.CurrentUser(c), middleware.CurrentAdmin(c))
	c.JSON(http.StatusOK, response.Success("Current user retrieved successfully", res))
}

// VerifyToken confirms the bearer token is still accepted
// @Summary      Verify token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.VerifyTokenResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/verify-token [post]
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	res := h.authService.VerifyToken(middleware.CurrentUser(c), middleware.CurrentAdmin(c))
	c.JSON(http.StatusOK, response.Success("Token is valid", res))
}

// CreateDebugAdmin provisions the fixed development super admin
// @Summary      Create debug admin
// @Description  FOR DEVELOPMENT ONLY. Not routed in production.
// @Tags         auth
// @Produce      json
// @Success      201  {object}  response.Response{data=service.DebugAdminResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/auth/debug/admin [post]
func (h *AuthHandler) CreateDebugAdmin(c *gin.Context) {
	res, err := h.authService.CreateDebugAdmin(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success("Debug admin created successfully", res))
}
