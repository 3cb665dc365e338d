package handler

import (
	"net/http"

	"donation-api/internal/middleware"
	"donation-api/internal/model"
	"donation-api/internal/service"
	"donation-api/pkg/pagination"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DonationHandler struct {
	donationService service.DonationService
	gate            *middleware.Gate
}

func NewDonationHandler(donationService service.DonationService, gate *middleware.Gate) *DonationHandler {
	return &DonationHandler{donationService: donationService, gate: gate}
}

func (h *DonationHandler) RegisterRoutes(router *gin.RouterGroup) {
	donations := router.Group("/donations")
	donations.Use(h.gate.RequireUser())
	{
		donations.POST("", middleware.RequireRole(model.UserRoleUser, model.UserRoleCommunityMember), h.Create)
		donations.GET("/my", h.MyDonations)
		donations.GET("/:id", h.GetByID)
		donations.PUT("/:id/payment", h.UpdatePayment)
	}

	router.GET("/v1/users/:user_id/donations", h.gate.RequireAny(), middleware.RequireAdminOrOwner("user_id"), h.ListByUser)
}

// Create records a donation and adds it to the campaign total
// @Summary      Donate
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDonationRequest  true  "Donation"
// @Success      201      {object}  response.Response{data=service.DonationResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/donations [post]
func (h *DonationHandler) Create(c *gin.Context) {
	var req service.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	donation, err := h.donationService.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Success("Donation created successfully", donation))
}

// MyDonations lists the caller's donations, newest first
// @Summary      My donations
// @Tags         donations
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 10)"
// @Success      200    {object}  response.Response{data=response.Paginated}
// @Router       /api/donations/my [get]
func (h *DonationHandler) MyDonations(c *gin.Context) {
	h.list(c, currentUserID(c))
}

// ListByUser lists a user's donations for that user or an admin
// @Summary      User donations
// @Tags         donations
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  response.Response{data=response.Paginated}
// @Failure      403      {object}  response.Response
// @Router       /api/v1/users/{user_id}/donations [get]
func (h *DonationHandler) ListByUser(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	h.list(c, id)
}

func (h *DonationHandler) list(c *gin.Context, userID uuid.UUID) {
	p := pagination.Parse(c)
	items, total, err := h.donationService.ListByUser(c.Request.Context(), userID, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "User donations retrieved successfully", items, total, p)
}

// GetByID returns one of the caller's donations
// @Summary      Get donation
// @Tags         donations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Donation ID"
// @Success      200  {object}  response.Response{data=service.DonationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/donations/{id} [get]
func (h *DonationHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	donation, err := h.donationService.GetForUser(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Donation retrieved successfully", donation))
}

// UpdatePayment sets the payment status of one of the caller's donations
// @Summary      Update payment status
// @Description  Does not adjust the campaign total
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Donation ID"
// @Param        payload  body      service.UpdatePaymentRequest  true  "Payment status"
// @Success      200      {object}  response.Response{data=service.DonationResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/donations/{id}/payment [put]
func (h *DonationHandler) UpdatePayment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	donation, err := h.donationService.UpdatePayment(c.Request.Context(), id, currentUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Payment status updated successfully", donation))
}
