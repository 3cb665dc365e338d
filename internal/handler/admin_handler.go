package handler

import (
	"net/http"

	"donation-api/internal/middleware"
	"donation-api/internal/model"
	"donation-api/internal/service"
	"donation-api/pkg/pagination"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService     service.AdminService
	campaignService  service.CampaignService
	communityService service.CommunityService
	gate             *middleware.Gate
}

func NewAdminHandler(
	adminService service.AdminService,
	campaignService service.CampaignService,
	communityService service.CommunityService,
	gate *middleware.Gate,
) *AdminHandler {
	return &AdminHandler{
		adminService:     adminService,
		campaignService:  campaignService,
		communityService: communityService,
		gate:             gate,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/v1/admin")
	admin.Use(h.gate.RequireAdmin())
	{
		admin.GET("/dashboard", h.Dashboard)

		admin.GET("/community-requests", h.ListCommunityRequests)
		admin.PUT("/community-requests/:requestId", h.ReviewCommunityRequest)

		admin.GET("/campaigns", h.ListCampaigns)
		admin.PUT("/campaigns/:campaignId/review", h.ReviewCampaign)

		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/status", h.UpdateUserStatus)
		admin.PUT("/users/:id/role", h.UpdateUserRole)

		admins := admin.Group("/admins")
		admins.Use(middleware.RequireAdminRole(model.AdminRoleSuperAdmin))
		{
			admins.GET("", h.ListAdmins)
			admins.GET("/:id", h.GetAdmin)
			admins.POST("", h.CreateAdmin)
			admins.PUT("/:id", h.UpdateAdmin)
		}
	}
}

// Dashboard returns the platform counters
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=repository.DashboardCounters}
// @Router       /api/v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	counters, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Dashboard data retrieved successfully", counters))
}

// ListCommunityRequests lists requests by status, pending by default
// @Summary      Community requests
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending (default), approved, rejected or all"
// @Success      200     {object}  response.Response{data=response.Paginated}
// @Router       /api/v1/admin/community-requests [get]
func (h *AdminHandler) ListCommunityRequests(c *gin.Context) {
	p := pagination.Parse(c)
	status := c.DefaultQuery("status", model.CommunityStatusPending)
	if status == "all" {
		status = ""
	}

	items, total, err := h.communityService.List(c.Request.Context(), status, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "Community requests retrieved", items, total, p)
}

// ReviewCommunityRequest approves or rejects a pending request
// @Summary      Review community request
// @Description  Approval promotes the requester to community_member and marks them verified
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        requestId  path      string                          true  "Request ID"
// @Param        payload    body      service.ReviewCommunityRequest  true  "Decision"
// @Success      200        {object}  response.Response{data=model.CommunityRequest}
// @Failure      404        {object}  response.Response
// @Router       /api/v1/admin/community-requests/{requestId} [put]
func (h *AdminHandler) ReviewCommunityRequest(c *gin.Context) {
	id, ok := uuidParam(c, "requestId")
	if !ok {
		return
	}
	var req service.ReviewCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	request, err := h.communityService.Review(c.Request.Context(), id, currentAdminID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Community request "+request.Status+" successfully", request))
}

// ListCampaigns lists campaigns in any status
// @Summary      Admin campaign list
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Success      200     {object}  response.Response{data=response.Paginated}
// @Router       /api/v1/admin/campaigns [get]
func (h *AdminHandler) ListCampaigns(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.campaignService.AdminList(c.Request.Context(), c.Query("status"), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "Campaigns retrieved successfully", items, total, p)
}

// ReviewCampaign activates or rejects a pending campaign
// @Summary      Review campaign
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        campaignId  path      string                         true  "Campaign ID"
// @Param        payload     body      service.ReviewCampaignRequest  true  "Decision"
// @Success      200         {object}  response.Response{data=service.CampaignResponse}
// @Failure      404         {object}  response.Response
// @Failure      409         {object}  response.Response
// @Router       /api/v1/admin/campaigns/{campaignId}/review [put]
func (h *AdminHandler) ReviewCampaign(c *gin.Context) {
	id, ok := uuidParam(c, "campaignId")
	if !ok {
		return
	}
	var req service.ReviewCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	campaign, err := h.campaignService.Review(c.Request.Context(), id, currentAdminID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Campaign reviewed successfully", campaign))
}

// ListUsers lists users with optional role and search filters
// @Summary      User directory
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "user or community_member"
// @Param        search  query     string  false  "Matches name or email"
// @Success      200     {object}  response.Response{data=response.Paginated}
// @Router       /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.UserListFilter{Role: c.Query("role"), Search: c.Query("search")}

	users, total, err := h.adminService.ListUsers(c.Request.Context(), filter, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "Users retrieved successfully", users, total, p)
}

// UpdateUserStatus sets a user's verification flag
// @Summary      Update user verification
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "User ID"
// @Param        payload  body      service.UpdateUserStatusRequest  true  "Verification"
// @Success      200      {object}  response.Response{data=model.User}
// @Router       /api/v1/admin/users/{id}/status [put]
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.adminService.UpdateUserStatus(c.Request.Context(), currentAdminID(c), id, *req.IsVerified)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("User status updated successfully", user))
}

// UpdateUserRole overrides a user's role
// @Summary      Update user role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "User ID"
// @Param        payload  body      service.UpdateUserRoleRequest  true  "Role"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/admin/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.adminService.UpdateUserRole(c.Request.Context(), currentAdminID(c), id, req.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("User role updated successfully", user))
}

// ListAdmins lists admin accounts
// @Summary      Admin directory
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Failure      403  {object}  response.Response
// @Router       /api/v1/admin/admins [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	p := pagination.Parse(c)
	admins, total, err := h.adminService.ListAdmins(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "Admins retrieved successfully", admins, total, p)
}

// GetAdmin returns one admin account
// @Summary      Get admin
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Admin ID"
// @Success      200  {object}  response.Response{data=model.AdminUser}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/admin/admins/{id} [get]
func (h *AdminHandler) GetAdmin(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	admin, err := h.adminService.GetAdmin(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Admin retrieved successfully", admin))
}

// CreateAdmin adds an admin account
// @Summary      Create admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAdminRequest  true  "Admin"
// @Success      201      {object}  response.Response{data=model.AdminUser}
// @Failure      409      {object}  response.Response
// @Router       /api/v1/admin/admins [post]
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req service.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	admin, err := h.adminService.CreateAdmin(c.Request.Context(), currentAdminID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success("Admin created successfully", admin))
}

// UpdateAdmin changes an admin account
// @Summary      Update admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Admin ID"
// @Param        payload  body      service.UpdateAdminRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.AdminUser}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/v1/admin/admins/{id} [put]
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	admin, err := h.adminService.UpdateAdmin(c.Request.Context(), currentAdminID(c), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Admin updated successfully", admin))
}
