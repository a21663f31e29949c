// Package handler exposes the compliance HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm_portal_backend/internal/compliance/service"
	"crm_portal_backend/internal/compliance/transport"
	"crm_portal_backend/platform/httpkit"
	"crm_portal_backend/platform/validator"
)

// Handler handles HTTP requests for the compliance context.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid connection ID"
)

// New creates a new compliance handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListAudit returns a page of audit events.
// GET /api/v1/admin/audit-events
func (h *Handler) ListAudit(c *gin.Context) {
	var req transport.ListAuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListAudit(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListSSOConnections returns the tenant's SSO connections.
// GET /api/v1/admin/sso-connections
func (h *Handler) ListSSOConnections(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListSSOConnections(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetSSOConnection returns one SSO connection.
// GET /api/v1/admin/sso-connections/:id
func (h *Handler) GetSSOConnection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.GetSSOConnection(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateSSOConnection registers an identity provider connection.
// POST /api/v1/admin/sso-connections
func (h *Handler) CreateSSOConnection(c *gin.Context) {
	var req transport.CreateSSORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.CreateSSOConnection(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// UpdateSSOConnection patches an SSO connection.
// PATCH /api/v1/admin/sso-connections/:id
func (h *Handler) UpdateSSOConnection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateSSORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateSSOConnection(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteSSOConnection removes an SSO connection.
// DELETE /api/v1/admin/sso-connections/:id
func (h *Handler) DeleteSSOConnection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteSSOConnection(c.Request.Context(), tenantID, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

// ListRoles returns the permission matrix rows.
// GET /api/v1/admin/roles
func (h *Handler) ListRoles(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListRoles(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
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
