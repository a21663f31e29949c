// Package handler exposes the integrations HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm_portal_backend/internal/integrations/service"
	"crm_portal_backend/internal/integrations/transport"
	"crm_portal_backend/platform/httpkit"
	"crm_portal_backend/platform/validator"
)

// Handler handles HTTP requests for the integrations context.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new integrations handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListIntegrations returns the integrations list page rows.
// GET /api/v1/integrations
func (h *Handler) ListIntegrations(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListIntegrations(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ToggleIntegration flips the enable switch on an integration.
// PATCH /api/v1/integrations/:id/toggle
func (h *Handler) ToggleIntegration(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid integration ID", nil)
		return
	}
	var req transport.ToggleIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ToggleIntegration(c.Request.Context(), tenantID, id, req.Enabled)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListEndpoints returns the tenant's webhook endpoints.
// GET /api/v1/webhooks
func (h *Handler) ListEndpoints(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListEndpoints(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateEndpoint registers a new webhook endpoint.
// POST /api/v1/webhooks
func (h *Handler) CreateEndpoint(c *gin.Context) {
	var req transport.CreateEndpointRequest
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

	result, err := h.svc.CreateEndpoint(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ToggleEndpoint flips the endpoint's active switch.
// PATCH /api/v1/webhooks/:id/toggle
func (h *Handler) ToggleEndpoint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid endpoint ID", nil)
		return
	}
	var req transport.ToggleEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ToggleEndpoint(c.Request.Context(), tenantID, id, req.Active)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListDeliveries returns the delivery history rows for an endpoint.
// GET /api/v1/webhooks/:id/deliveries
func (h *Handler) ListDeliveries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid endpoint ID", nil)
		return
	}
	var req transport.ListDeliveriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListDeliveries(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RetryDelivery enqueues a manual redelivery of a failed delivery.
// POST /api/v1/webhooks/:id/deliveries/:deliveryId/retry
func (h *Handler) RetryDelivery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid endpoint ID", nil)
		return
	}
	deliveryID, err := uuid.Parse(c.Param("deliveryId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid delivery ID", nil)
		return
	}
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.RetryDelivery(c.Request.Context(), tenantID, id, deliveryID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ListGateways returns the payment gateways list page rows.
// GET /api/v1/gateways
func (h *Handler) ListGateways(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListGateways(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateGateway registers a payment gateway.
// POST /api/v1/gateways
func (h *Handler) CreateGateway(c *gin.Context) {
	var req transport.CreateGatewayRequest
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

	result, err := h.svc.CreateGateway(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// GatewayCallback accepts an inbound payment provider callback. The
// provider authenticates with the shared signing secret in the
// X-Gateway-Secret header; the route sits outside JWT auth.
// POST /api/v1/gateways/:id/callback
func (h *Handler) GatewayCallback(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusUnauthorized, "invalid gateway callback", nil)
		return
	}

	gateway, err := h.svc.VerifyCallback(c.Request.Context(), id, c.GetHeader("X-Gateway-Secret"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"provider": gateway.Provider, "accepted": true})
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
