package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"donation-api/internal/apperror"
	"donation-api/internal/middleware"
	"donation-api/internal/model"
	"donation-api/internal/service"
	"donation-api/pkg/pagination"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CampaignHandler struct {
	campaignService service.CampaignService
	gate            *middleware.Gate
}

func NewCampaignHandler(campaignService service.CampaignService, gate *middleware.Gate) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, gate: gate}
}

func (h *CampaignHandler) RegisterRoutes(router *gin.RouterGroup) {
	campaigns := router.Group("/campaigns")
	{
		campaigns.GET("", h.gate.OptionalAuth(), h.List)
		campaigns.GET("/featured", h.Featured)
		campaigns.GET("/my/campaigns", h.gate.RequireUser(), h.MyCampaigns)
		campaigns.GET("/:id", h.gate.OptionalAuth(), h.GetByID)
		campaigns.POST("", h.gate.RequireUser(), middleware.RequireRole(model.UserRoleCommunityMember), h.Create)
		campaigns.PUT("/:id", h.gate.RequireUser(), middleware.RequireRole(model.UserRoleCommunityMember), h.Update)
	}

	router.GET("/v1/users/:user_id/campaigns", h.gate.RequireUser(), middleware.RequireOwnership("user_id"), h.ListByUser)
}

// formFile returns nil when the field is absent so the service can answer with its own message.
func formFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	switch {
	case err == nil:
		return file, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	default:
		return nil, apperror.BadRequest("File upload error").Wrap(err)
	}
}

func viewerOf(c *gin.Context) service.Viewer {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		return service.Viewer{}
	}
	if p.Kind == middleware.PrincipalAdmin {
		return service.Viewer{Admin: true}
	}
	id := p.ID()
	return service.Viewer{UserID: &id}
}

// List returns active campaigns
// @Summary      List campaigns
// @Tags         campaigns
// @Produce      json
// @Param        category  query     string  false  "Category filter"
// @Param        search    query     string  false  "Matches title, description or location"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 10)"
// @Success      200       {object}  response.Response{data=response.Paginated}
// @Router       /api/campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.CampaignListFilter{Category: c.Query("category"), Search: c.Query("search")}

	items, total, err := h.campaignService.List(c.Request.Context(), filter, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "Campaigns retrieved successfully", items, total, p)
}

// Featured returns the active campaigns that raised the most
// @Summary      Featured campaigns
// @Tags         campaigns
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CampaignResponse}
// @Router       /api/campaigns/featured [get]
func (h *CampaignHandler) Featured(c *gin.Context) {
	items, err := h.campaignService.Featured(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Featured campaigns retrieved successfully", items))
}

// GetByID returns one campaign. Pending and rejected ones are only shown to the owner and admins.
// @Summary      Get campaign
// @Tags         campaigns
// @Produce      json
// @Param        id   path      string  true  "Campaign ID"
// @Success      200  {object}  response.Response{data=service.CampaignResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/campaigns/{id} [get]
func (h *CampaignHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetByID(c.Request.Context(), id, viewerOf(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Campaign retrieved successfully", campaign))
}

// MyCampaigns lists every campaign owned by the caller, whatever its status
// @Summary      My campaigns
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /api/campaigns/my/campaigns [get]
func (h *CampaignHandler) MyCampaigns(c *gin.Context) {
	h.listOwned(c, currentUserID(c))
}

// ListByUser lists a user's campaigns; only that user may call it
// @Summary      User campaigns
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  response.Response{data=response.Paginated}
// @Failure      403      {object}  response.Response
// @Router       /api/v1/users/{user_id}/campaigns [get]
func (h *CampaignHandler) ListByUser(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	h.listOwned(c, id)
}

func (h *CampaignHandler) listOwned(c *gin.Context, ownerID uuid.UUID) {
	p := pagination.Parse(c)
	items, total, err := h.campaignService.ListByOwner(c.Request.Context(), ownerID, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "User campaigns retrieved successfully", items, total, p)
}

// Create submits a campaign for review
// @Summary      Create campaign
// @Description  Multipart form with an `image` file. Requires a verified community member.
// @Tags         campaigns
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title          formData  string  true  "Title"
// @Param        description    formData  string  true  "Description"
// @Param        location       formData  string  true  "Location"
// @Param        category       formData  string  true  "medical, food, rescue, shelter, other or adoption"
// @Param        target_amount  formData  string  true  "Target amount"
// @Param        deadline       formData  string  true  "Deadline (YYYY-MM-DD or RFC3339)"
// @Param        bank_account   formData  string  true  "Bank account"
// @Param        image          formData  file    true  "Campaign image"
// @Success      201            {object}  response.Response{data=service.CampaignResponse}
// @Failure      400            {object}  response.Response
// @Failure      403            {object}  response.Response
// @Router       /api/campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	var req service.CreateCampaignRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err)
		return
	}
	image, err := formFile(c, "image")
	if err != nil {
		_ = c.Error(err)
		return
	}

	campaign, err := h.campaignService.Create(c.Request.Context(), middleware.CurrentUser(c), req, image)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success("Campaign created successfully and is pending review.", campaign))
}

// Update changes an owned campaign
// @Summary      Update campaign
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Campaign ID"
// @Param        payload  body      service.UpdateCampaignRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.CampaignResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/campaigns/{id} [put]
func (h *CampaignHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	campaign, err := h.campaignService.Update(c.Request.Context(), id, currentUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Campaign updated successfully", campaign))
}
