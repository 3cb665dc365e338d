package handler

import (
	"donation-api/internal/middleware"
	"donation-api/internal/service"
	"donation-api/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	gate         *middleware.Gate
}

func NewAuditHandler(auditService service.AuditService, gate *middleware.Gate) *AuditHandler {
	return &AuditHandler{auditService: auditService, gate: gate}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/v1/admin/audit-logs")
	group.Use(h.gate.RequireAdmin())
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs pages through the audit trail, newest first
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action      query     string  false  "Action filter, e.g. REVIEW_CAMPAIGN"
// @Param        actor_type  query     string  false  "user, admin or system"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 10)"
// @Success      200         {object}  response.Response{data=response.Paginated}
// @Router       /api/v1/admin/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.AuditLogFilter{Action: c.Query("action"), ActorType: c.Query("actor_type")}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), filter, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paginated(c, "Audit logs retrieved successfully", logs, total, p)
}
