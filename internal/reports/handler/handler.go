// Package handler exposes the reports HTTP endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm_portal_backend/internal/exports"
	"crm_portal_backend/internal/reports/service"
	"crm_portal_backend/platform/httpkit"
)

// Handler handles HTTP requests for reports.
type Handler struct {
	svc *service.Service
}

// New creates a new reports handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetFunnel returns the lifecycle funnel.
// GET /api/v1/reports/funnel
func (h *Handler) GetFunnel(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.GetFunnel(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Drilldown returns the records behind a funnel stage.
// GET /api/v1/reports/funnel/stages/:stage
func (h *Handler) Drilldown(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Drilldown(c.Request.Context(), tenantID, c.Param("stage"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ExportFunnel streams the funnel as a CSV download.
// GET /api/v1/reports/funnel/export
func (h *Handler) ExportFunnel(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	rows, err := h.svc.ExportFunnelCSV(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	filename := "funnel-" + time.Now().Format("2006-01-02") + ".csv"
	if err := exports.StreamAttachment(c, filename, rows); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "export failed", nil)
	}
}

func requireTenant(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.UUID{}, false
	}
	tenantID := identity.TenantID()
	if tenantID == nil {
		httpkit.Error(c, http.StatusBadRequest, "tenant ID is required", nil)
		return uuid.UUID{}, false
	}
	return *tenantID, true
}
