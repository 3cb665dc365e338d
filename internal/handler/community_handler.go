package handler

import (
	"net/http"

	"donation-api/internal/middleware"
	"donation-api/internal/service"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	communityService service.CommunityService
	gate             *middleware.Gate
}

func NewCommunityHandler(communityService service.CommunityService, gate *middleware.Gate) *CommunityHandler {
	return &CommunityHandler{communityService: communityService, gate: gate}
}

func (h *CommunityHandler) RegisterRoutes(router *gin.RouterGroup) {
	community := router.Group("/v1/community")
	community.Use(h.gate.RequireUser())
	{
		community.POST("/join", h.Join)
		community.GET("/status", h.Status)
		community.GET("/my-request", h.MyRequest)
	}
}

// Join submits a community membership request
// @Summary      Join community
// @Description  Multipart form with a `ktp_photo` file
// @Tags         community
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        full_name       formData  string  true  "Full name"
// @Param        gender          formData  string  true  "male or female"
// @Param        birth_place     formData  string  true  "Birth place"
// @Param        birth_date      formData  string  true  "YYYY-MM-DD"
// @Param        ktp_number      formData  string  true  "16 digit KTP number"
// @Param        reason          formData  string  true  "Why you want to join"
// @Param        data_agreement  formData  string  true  "Must be true"
// @Param        ktp_photo       formData  file    true  "KTP photo"
// @Success      201             {object}  response.Response{data=model.CommunityRequest}
// @Failure      400             {object}  response.Response
// @Failure      409             {object}  response.Response
// @Router       /api/v1/community/join [post]
func (h *CommunityHandler) Join(c *gin.Context) {
	var req service.JoinCommunityRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err)
		return
	}
	photo, err := formFile(c, "ktp_photo")
	if err != nil {
		_ = c.Error(err)
		return
	}

	request, err := h.communityService.Join(c.Request.Context(), middleware.CurrentUser(c), req, photo)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success("Community join request submitted successfully", request))
}

// Status reports the caller's role and latest request
// @Summary      Community status
// @Tags         community
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.CommunityStatus}
// @Router       /api/v1/community/status [get]
func (h *CommunityHandler) Status(c *gin.Context) {
	status, err := h.communityService.Status(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Community status retrieved successfully", status))
}

// MyRequest returns the caller's latest request
// @Summary      My community request
// @Tags         community
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.CommunityRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/community/my-request [get]
func (h *CommunityHandler) MyRequest(c *gin.Context) {
	request, err := h.communityService.MyRequest(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Community request retrieved successfully", request))
}
