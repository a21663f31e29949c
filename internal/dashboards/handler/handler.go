// Package handler exposes the dashboards HTTP endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm_portal_backend/internal/dashboards/service"
	"crm_portal_backend/internal/exports"
	"crm_portal_backend/platform/httpkit"
)

// Handler handles HTTP requests for dashboards.
type Handler struct {
	svc *service.Service
}

// New creates a new dashboards handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Executive returns the executive overview.
// GET /api/v1/dashboards/executive
func (h *Handler) Executive(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Executive(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Receivables returns the receivables overview with aging buckets.
// GET /api/v1/dashboards/receivables
func (h *Handler) Receivables(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Receivables(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// BucketInvoices returns the invoices behind one aging bucket.
// GET /api/v1/dashboards/receivables/buckets/:bucket
func (h *Handler) BucketInvoices(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.BucketInvoices(c.Request.Context(), tenantID, c.Param("bucket"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ExportReceivables streams the aging buckets as a CSV download.
// GET /api/v1/dashboards/receivables/export
func (h *Handler) ExportReceivables(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	rows, err := h.svc.ExportReceivablesCSV(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	filename := "receivables-" + time.Now().Format("2006-01-02") + ".csv"
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
