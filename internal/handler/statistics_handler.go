package handler

import (
	"net/http"

	"donation-api/internal/service"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statsService service.StatsService
}

func NewStatisticsHandler(statsService service.StatsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/v1/stats", h.GetImpact)
}

// GetImpact returns the public impact counters
// @Summary      Impact statistics
// @Description  Active campaigns and distinct donors with at least one successful donation
// @Tags         stats
// @Produce      json
// @Success      200  {object}  response.Response{data=repository.ImpactCounters}
// @Router       /api/v1/stats [get]
func (h *StatisticsHandler) GetImpact(c *gin.Context) {
	stats, err := h.statsService.Impact(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Impact stats retrieved successfully", stats))
}
